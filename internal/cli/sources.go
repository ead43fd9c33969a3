package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s21toolkit/s21introspector/internal/crawler"
	"github.com/s21toolkit/s21introspector/internal/jsmodule"
	"github.com/s21toolkit/s21introspector/internal/output"
)

func newSourcesCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Download every script module reachable from the base page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSources(cmd, outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "edu-src", "directory to write sources to")
	return cmd
}

func (a *app) runSources(cmd *cobra.Command, outDir string) error {
	w := output.NewWriter(a.fs)
	c := crawler.New(crawler.WithLoader(a.newLoader(nil)), crawler.WithLogger(a.logger))

	var (
		written  int
		writeErr error
	)
	visit := func(_ *jsmodule.Module, text, source string) {
		if writeErr != nil {
			return
		}
		name, err := w.WriteModule(outDir, source, text)
		if err != nil {
			writeErr = err
			return
		}
		written++
		a.logger.WithField("source", source).WithField("file", name).Debug("Source written")
	}

	visited, err := c.FromPage(cmd.Context(), a.endpoint("/"), visit)
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d modules from %d sources written to %s\n",
		okMark("✓"), written, visited.Len(), outDir)
	return nil
}
