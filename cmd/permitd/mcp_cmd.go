package main

import (
	"os/signal"
	"syscall"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/feng001-8/work/mcp"
	"github.com/feng001-8/work/pkg/logger"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the codec tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.L().Info("permitd MCP server on stdio")
			return mcp.NewServer(Version).Run(ctx, &mcpsdk.StdioTransport{})
		},
	}
}
