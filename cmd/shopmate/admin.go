package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"shopmate/internal/apiclient"
	"shopmate/internal/tui"
)

const apiURLFlag = "api-url"

var adminFlags = map[string]cobraflags.Flag{
	apiURLFlag: &cobraflags.StringFlag{
		Name:  apiURLFlag,
		Value: "http://localhost:3001/api",
		Usage: "Base URL of the product API",
	},
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Open the terminal admin console against a running API",
		RunE: func(_ *cobra.Command, _ []string) error {
			timeout := 90 * time.Second
			client := apiclient.New(apiclient.Config{BaseURL: adminFlags[apiURLFlag].GetString(), Timeout: timeout})
			_, err := tea.NewProgram(tui.New(client, timeout), tea.WithAltScreen()).Run()
			return err
		},
	}
	cobraflags.RegisterMap(cmd, adminFlags)
	return cmd
}
