package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s21toolkit/s21introspector/internal/crawler"
	"github.com/s21toolkit/s21introspector/internal/harvest"
	"github.com/s21toolkit/s21introspector/internal/introspect"
	"github.com/s21toolkit/s21introspector/internal/loader"
	"github.com/s21toolkit/s21introspector/internal/output"
	"github.com/s21toolkit/s21introspector/internal/registry"
	"github.com/s21toolkit/s21introspector/internal/staticprops"
	"github.com/s21toolkit/s21introspector/pkg/clients"
	"github.com/s21toolkit/s21introspector/pkg/logging"
)

const defaultOutFile = "schema_{PRODUCT_VERSION}.gql"

type introspectOptions struct {
	outFile string
	harFile string
	pages   []string
	mode    output.Mode
}

func newIntrospectCmd(a *app) *cobra.Command {
	var opts introspectOptions

	cmd := &cobra.Command{
		Use:   "introspect [har-file]",
		Short: "Write the type schema and every operation the web client ships",
		Long: `Introspects the GraphQL endpoint, crawls the web client starting at the
base page (and every page or script recorded in an optional HAR capture) and
writes the recovered schema and operations.

{NAME} placeholders in --out-file expand to values from the platform static.js.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.mode.Validate(); err != nil {
				return err
			}
			if len(args) == 1 {
				opts.harFile = args[0]
			}
			return a.runIntrospect(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringP("token", "t", "", "bearer token for the GraphQL endpoint (env S21_TOKEN)")
	_ = a.v.BindPFlag("token", f.Lookup("token"))
	f.StringVarP(&opts.outFile, "out-file", "o", defaultOutFile, "output file, or directory with --split-operations")
	f.BoolVarP(&opts.mode.TypesOnly, "types-only", "s", false, "write only the type schema")
	f.BoolVarP(&opts.mode.Split, "split-operations", "p", false, "write schema.gql and one file per operation")
	f.StringArrayVar(&opts.pages, "page", nil, "additional page to crawl (repeatable)")

	return cmd
}

func (a *app) runIntrospect(cmd *cobra.Command, opts introspectOptions) error {
	token := a.v.GetString("token")
	if token == "" {
		return errors.New("token is required (--token or S21_TOKEN)")
	}

	entries := harvest.Entries{Pages: append([]string{a.endpoint("/")}, opts.pages...)}
	var preloaded loader.Table
	if opts.harFile != "" {
		har, err := loader.ReadHARFile(a.fs, opts.harFile)
		if err != nil {
			return err
		}
		entries, preloaded = harvest.FromHAR(har, entries.Pages...)
		a.logger.WithFields(logging.Fields{
			"har":     opts.harFile,
			"pages":   len(entries.Pages),
			"scripts": len(entries.Scripts),
		}).Info("Loaded HAR capture")
	}
	load := a.newLoader(preloaded)

	netCfg := networkConfigFromEnv("introspect", a.logger)
	client := introspect.NewClient(a.endpoint(graphQLPath),
		introspect.WithToken(token),
		introspect.WithHTTPClient(clients.NewHTTPClient(netCfg.Timeout)),
		introspect.WithHTTPExecutorConfig(netCfg.Executor),
		introspect.WithLogger(a.logger),
	)
	reg := registry.New(registry.WithLogger(a.logger))
	harvester := &harvest.Harvester{
		Crawler:   crawler.New(crawler.WithLoader(load), crawler.WithLogger(a.logger)),
		Registry:  reg,
		Logger:    a.logger,
		Preloaded: preloaded,
	}

	var (
		schema *introspect.Schema
		props  *staticprops.Properties
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		s, err := client.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("introspect schema: %w", err)
		}
		schema = s
		return nil
	})
	if len(output.Placeholders(opts.outFile)) > 0 {
		g.Go(func() error {
			p, err := staticprops.Fetch(ctx, load, a.endpoint(staticPath))
			if err != nil {
				return err
			}
			props = p
			return nil
		})
	}
	if !opts.mode.TypesOnly {
		g.Go(func() error {
			_, err := harvester.Run(ctx, entries)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	outPath, err := output.ResolvePath(opts.outFile, props)
	if err != nil {
		return err
	}
	return a.writeIntrospection(cmd, outPath, opts.mode, schema, reg)
}

func (a *app) writeIntrospection(cmd *cobra.Command, outPath string, mode output.Mode, schema *introspect.Schema, reg *registry.Registry) error {
	w := output.NewWriter(a.fs)
	if err := w.CheckParentDir(outPath); err != nil {
		return err
	}

	sdl := introspect.PrintSDL(schema)
	out := cmd.OutOrStdout()

	switch {
	case mode.Split:
		n, err := w.SplitLayout(outPath, sdl, reg.Operations(mode.AllowFragmentReuse()))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s schema and %d operations written to %s\n", okMark("✓"), n, outPath)
	case mode.TypesOnly:
		if err := w.WriteFile(outPath, sdl); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s schema written to %s\n", okMark("✓"), outPath)
	default:
		ops := reg.Operations(mode.AllowFragmentReuse())
		if err := w.WriteFile(outPath, output.CombinedDocument(sdl, ops)); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s schema and %d operations written to %s\n", okMark("✓"), len(ops), outPath)
	}

	if !mode.TypesOnly {
		stats := reg.Stats()
		if stats.Operations == 0 {
			fmt.Fprintf(out, "%s no operations found\n", warnMark("!"))
		}
		fmt.Fprintln(out, faint(fmt.Sprintf("  literals: %d, discarded: %d, fragments: %d",
			stats.Literals, stats.DiscardedLiterals, stats.Fragments)))
	}
	return nil
}
