package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cabinrent/internal/infra/config"
)

var envFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cabins",
		Short:        "Cabin rental availability and pricing service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default .env)")

	root.AddCommand(serveCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(quoteCmd())
	root.AddCommand(dayCmd())
	root.AddCommand(hashPasswordCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
