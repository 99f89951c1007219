package main

import (
	"context"
	"fmt"
	"os"

	"taskilo/app"
	"taskilo/config"
	"taskilo/services/quote"
	"taskilo/services/transfer"
	"taskilo/utils"

	"github.com/spf13/cobra"
)

var Version = "dev"

type reconciler interface {
	Reconcile(ctx context.Context) (*quote.ReconcileResult, error)
}

// services is what the commands need from a wired app.
type services struct {
	transfers transfer.TransferService
	quotes    reconciler
	close     func()
}

type loader func(ctx context.Context) (*services, error)

func loadApp(ctx context.Context) (*services, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := utils.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &services{
		transfers: a.Transfers,
		quotes:    a.Quotes,
		close: func() {
			a.Close(context.Background())
			_ = logger.Sync()
		},
	}, nil
}

func newRootCmd(load loader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskilo-admin",
		Short:         "Operator tasks for the Taskilo quote service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(transfersCmd(load))
	rootCmd.AddCommand(quotesCmd(load))
	return rootCmd
}

func main() {
	if err := newRootCmd(loadApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
