package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/router"
	"github.com/florax/florax-dashboard/internal/pkg/presentation/api"
	"github.com/spf13/cobra"
)

func (c *cli) serveCmd() *cobra.Command {
	var listenAddress, port string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard sections as json on a local address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.app.Config.Server
			if listenAddress != "" {
				cfg.ListenAddress = listenAddress
			}
			if port != "" {
				cfg.Port = port
			}

			ctx, logger := logging.NewLogger(cmd.Context(), serviceName, version())
			addr := net.JoinHostPort(cfg.ListenAddress, cfg.Port)

			if len(origins) == 0 {
				origins = []string{"http://" + addr}
			}

			r := router.New(serviceName, origins...)
			api.RegisterHandlers(ctx, r, c.app.Dashboard, c.app.Dashboard.Alerts, c.app.Auth, c.app.Session)

			srv := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.app.Start(ctx)
			defer c.app.Stop()

			errs := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Msg("starting to listen for connections")
				errs <- srv.ListenAndServe()
			}()

			select {
			case err := <-errs:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to start web server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&listenAddress, "listen", "", "address to listen on, overrides server.listenAddress")
	cmd.Flags().StringVar(&port, "port", "", "port to listen on, overrides server.port")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", nil, "origins allowed to call the api, defaults to the listen address")

	return cmd
}
