// Package cli defines the cobra command tree for medicall.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/client"
)

var (
	flagFormat string
	flagServer string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "medicall",
		Short:         "Track visits to doctors and hospital procedures",
		Long:          "A CRM for medical sales executives. Plan and report visits to doctors, record procedures, and review team performance from the CLI or over the HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "API server URL (default: $MEDICALL_SERVER_URL, config, or http://localhost:8080)")

	root.AddCommand(
		newDoctorsCmd(),
		newPlanCmd(),
		newReportCmd(),
		newUnplanCmd(),
		newProceduresCmd(),
		newTimeOffCmd(),
		newStatsCmd(),
		newCalendarCmd(),
		newSeedCmd(),
		newExportCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newConfigCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the CRM API.
func newAPIClient() *client.Client {
	if flagServer != "" {
		return client.New(flagServer)
	}
	return client.New(getServerURL())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
