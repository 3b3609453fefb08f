package main

import (
	"github.com/spf13/cobra"

	"github.com/feng001-8/work/pkg/config"
	"github.com/feng001-8/work/pkg/logger"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

var configFile = ""

// RootCommand will setup and return the root command
func RootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "permitd",
		Short:         "EIP-712 typed-data hashing, permit signing and signature recovery",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "the .env file to load")
	rootCmd.AddCommand(serveCmd(), mcpCmd(), hashCmd(), recoverCmd(), permitCmd())
	return rootCmd
}

// loadConfig loads configuration and initializes the global logger
func loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "permitd",
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}
