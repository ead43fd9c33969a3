package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/s21toolkit/s21introspector/internal/cli"
	"github.com/s21toolkit/s21introspector/pkg/config"
	"github.com/s21toolkit/s21introspector/pkg/logging"
	"github.com/s21toolkit/s21introspector/pkg/version"
)

func main() {
	config.LoadEnv(logging.NewCLILogger(os.Stderr, version.Name, false))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		stop()
		os.Exit(1)
	}
}
