package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/notepid/skillsync/internal/admin/ui"
	"github.com/notepid/skillsync/internal/app"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Browse and moderate discussions in a terminal UI",
	Long: `Open the admin console over the configured storage backend.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open
  /        - Search discussions
  r        - Reply to the open thread
  Esc      - Back
  Ctrl+C   - Quit`,
	RunE: func(_ *cobra.Command, _ []string) error {
		a, cleanup, err := app.Open(cfg, configPath, appLog)
		if err != nil {
			return err
		}
		defer cleanup()

		p := tea.NewProgram(ui.NewRootModel(a), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
}
