package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	permitgin "github.com/feng001-8/work/pkg/gin"
	"github.com/feng001-8/work/pkg/logger"
	signers "github.com/feng001-8/work/signers/evm"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()
			log := logger.L()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gin.SetMode(gin.ReleaseMode)
			opts := []permitgin.Options{
				permitgin.WithRequestIDHeader(cfg.RequestIDHeader),
				permitgin.WithLogger(log),
			}
			if cfg.RPCURL != "" {
				chain, err := signers.DialChainClient(ctx, cfg.RPCURL)
				if err != nil {
					return err
				}
				defer chain.Close()
				if id, err := chain.ChainID(ctx); err != nil {
					log.Warn("could not read chain id", zap.Error(err))
				} else if id.Cmp(cfg.ChainIDInt()) != 0 {
					log.Warn("rpc chain id differs from configured chain id",
						zap.String("rpc", id.String()), zap.String("configured", cfg.ChainIDInt().String()))
				}
				opts = append(opts, permitgin.WithChainReader(chain))
			}

			server := &http.Server{
				Addr:    cfg.HTTPAddr,
				Handler: permitgin.NewRouter(opts...),
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("permitd API listening", zap.String("addr", cfg.HTTPAddr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}
}
