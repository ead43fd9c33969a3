// Package cli wires the s21introspector command tree.
package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/s21toolkit/s21introspector/internal/loader"
	"github.com/s21toolkit/s21introspector/pkg/clients"
	"github.com/s21toolkit/s21introspector/pkg/logging"
	"github.com/s21toolkit/s21introspector/pkg/version"
)

const (
	DefaultBaseURL = "https://edu.21-school.ru"

	graphQLPath = "/services/graphql"
	staticPath  = "/static.js"
)

var (
	okMark   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnMark = color.New(color.FgYellow, color.Bold).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
)

// app carries what every subcommand shares: configuration, the output
// filesystem and the logger built once flags are parsed.
type app struct {
	v      *viper.Viper
	fs     afero.Fs
	logger logging.Logger
}

// NewRootCmd returns the root command writing to the OS filesystem.
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{v: viper.New(), fs: fs}

	rootCmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Recover the GraphQL surface of the School 21 platform",
		Long:          "s21introspector crawls the platform web client, extracts every GraphQL operation it ships and pairs them with the introspected type schema.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = logging.NewCLILogger(cmd.ErrOrStderr(), version.Name, a.v.GetBool("verbose"))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.writeMetrics()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "enable verbose logging")
	pf.String("base-url", DefaultBaseURL, "platform base URL (env S21_BASE_URL)")
	pf.String("metrics-out", "", "write Prometheus text exposition to this file on exit")
	_ = a.v.BindPFlags(pf)

	a.v.SetEnvPrefix("S21")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(newIntrospectCmd(a))
	rootCmd.AddCommand(newSourcesCmd(a))
	rootCmd.AddCommand(newStaticCmd(a))
	rootCmd.AddCommand(newUseAuthCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// endpoint joins the configured base URL with p.
func (a *app) endpoint(p string) string {
	return strings.TrimRight(a.v.GetString("base-url"), "/") + p
}

// newLoader builds the shared source loader: preloaded capture first, then
// the network, with every answer memoized for the run.
func (a *app) newLoader(preloaded loader.Table) loader.Loader {
	cfg := networkConfigFromEnv("loader", a.logger)
	opts := []loader.HTTPOption{
		loader.WithHTTPLogger(a.logger),
		loader.WithClient(clients.NewHTTPClient(cfg.Timeout)),
		loader.WithExecutorConfig(cfg.Executor),
	}
	for _, h := range cfg.Headers {
		opts = append(opts, loader.WithHeader(h[0], h[1]))
	}
	network := loader.NewHTTP(opts...)
	if len(preloaded) == 0 {
		return loader.Cached(network, nil)
	}
	return loader.Cached(loader.Chain(preloaded, network), nil)
}

func (a *app) writeMetrics() error {
	path := a.v.GetString("metrics-out")
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.logger.WithField("path", path).Debug("Metrics written")
	return nil
}
