package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/notepid/skillsync/internal/collab"
	"github.com/notepid/skillsync/internal/copilot"
)

var (
	collabRoom string
	collabUser string
	collabAddr string
)

var collabCmd = &cobra.Command{
	Use:   "collab",
	Short: "Join a collaboration room from the terminal",
	RunE:  runCollab,
}

func init() {
	collabCmd.Flags().StringVar(&collabRoom, "room", "", "room to join (required)")
	collabCmd.Flags().StringVar(&collabUser, "user", "", "display name")
	collabCmd.Flags().StringVar(&collabAddr, "addr", "", "relay address, defaults to relay.addr from the config")
	_ = collabCmd.MarkFlagRequired("room")
	rootCmd.AddCommand(collabCmd)
}

func runCollab(cmd *cobra.Command, _ []string) error {
	addr := collabAddr
	if addr == "" {
		addr = cfg.Relay.Addr
	}

	cp, err := copilot.New(cfg.Copilot.Script)
	if err != nil {
		return err
	}
	defer cp.Close()

	out := collab.NewSyncWriter(os.Stdout)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	s, err := collab.Dial(ctx, addr, collab.SessionConfig{
		Room:     collabRoom,
		User:     collabUser,
		Debounce: cfg.Editor.Debounce,
		Copilot:  cp,
		Log:      appLog.With("component", "collab"),
		OnRemote: func(doc, _, from string) {
			out.Println(fmt.Sprintf("  [%s updated %s]", from, doc))
		},
		OnPresence: func(members []string) {
			out.Println("  Members: " + strings.Join(members, ", "))
		},
	})
	if err != nil {
		return err
	}
	defer s.Close()

	return collab.RunRoom(s, os.Stdin, out)
}
