// Command forgebridge runs the design host with its task bridge and
// loopback listener, and the agent clients that drive it.
//
// Usage:
//
//	forgebridge host            start the host, bridge, and listener
//	forgebridge chat            interactive agent session against a host
//	forgebridge run "goal"      one-shot agent run against a host
//	forgebridge sessions        list or replay recorded agent sessions
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/draftsmith/forgebridge/internal/config"
	"github.com/draftsmith/forgebridge/internal/version"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "forgebridge",
		Short:         "Cross-thread execution bridge for a single-threaded design host",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config")

	root.AddCommand(newHostCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newSessionsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
