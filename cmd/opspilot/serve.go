package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/infra/transport/rest"
	"github.com/mark47B/opspilot/internal/infra/transport/ws"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := build(ctx)
			if err != nil {
				return err
			}
			defer c.close()

			router, err := rest.NewRouter(rest.RouterConfig{
				Service:     c.service,
				Logger:      c.logger.Named("http"),
				CORSOrigins: c.cfg.CORSOrigins,
				Metrics:     c.metrics.Handler(),
				WebSocket:   ws.NewHandler(c.service, c.logger.Named("ws")),
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + c.cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.logger.Info("server starting", zap.String("port", c.cfg.Port), zap.String("store", c.cfg.Store.Driver))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			c.logger.Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				return err
			}
			c.logger.Info("server exited")
			return nil
		},
	}
	cmd.Flags().String("port", "", "listen port")
	_ = v.BindPFlag("PORT", cmd.Flags().Lookup("port"))
	return cmd
}
