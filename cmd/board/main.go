// cmd/board/main.go
package main

import (
	"log/slog"
	"os"

	"bulletin-board/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "board",
		Short:        "Bulletin board job type service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: ./configs/config.yaml or ./config.yaml)")

	loadConfig := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		slog.SetDefault(logger)
		return cfg, logger, nil
	}

	root.AddCommand(newServeCmd(loadConfig), newMigrateCmd(loadConfig))
	return root
}

type configLoader func() (*config.Config, *slog.Logger, error)
