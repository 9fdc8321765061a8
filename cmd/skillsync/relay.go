package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run only the collaboration relay",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := newRelayServer()
		if err := srv.Listen(); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve() }()

		select {
		case <-ctx.Done():
			appLog.Info("shutting down relay")
			return srv.Close()
		case err := <-errCh:
			_ = srv.Close()
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
}
