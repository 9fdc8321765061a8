package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/notepid/skillsync/internal/api"
	"github.com/notepid/skillsync/internal/app"
	"github.com/notepid/skillsync/internal/relay"
)

var serveNoRelay bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the discussion API and the collaboration relay",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoRelay, "no-relay", false, "serve only the HTTP API")
	rootCmd.AddCommand(serveCmd)
}

func newRelayServer() *relay.Server {
	log := appLog.With("component", "relay")
	return relay.NewServer(
		fmt.Sprintf(":%d", cfg.Server.RelayPort),
		relay.NewHub(cfg.Relay.OutboxSize, log),
		relay.NewPeers(cfg.Relay.MaxPeers),
		log,
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := app.Open(cfg, configPath, appLog)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	var relaySrv *relay.Server
	if !serveNoRelay {
		relaySrv = newRelayServer()
		if err := relaySrv.Listen(); err != nil {
			return err
		}
		go func() {
			if err := relaySrv.Serve(); err != nil {
				errCh <- fmt.Errorf("relay server: %w", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: api.NewRouter(a.Store, api.Config{
			WriteRate:  cfg.Server.WriteRate,
			WriteBurst: cfg.Server.WriteBurst,
			TrustProxy: cfg.Server.TrustProxy,
			Log:        appLog.With("component", "api"),
		}),
		ReadHeaderTimeout: 2 * time.Second,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	appLog.Info("skillsync running",
		"http_port", cfg.Server.HTTPPort,
		"relay", !serveNoRelay,
		"relay_port", cfg.Server.RelayPort,
		"storage", cfg.Storage.Backend,
	)

	var runErr error
	select {
	case <-ctx.Done():
		appLog.Info("shutting down")
	case runErr = <-errCh:
		appLog.Error("server failed, shutting down", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("http shutdown", "error", err)
	}
	if relaySrv != nil {
		if err := relaySrv.Close(); err != nil {
			appLog.Warn("relay shutdown", "error", err)
		}
	}

	appLog.Info("shutdown complete")
	return runErr
}
