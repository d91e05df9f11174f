package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftsmith/forgebridge/kernel/transcript"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions [session-id]",
		Short: "List recorded agent sessions, or replay one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.TranscriptDB == "" {
				return fmt.Errorf("sessions: no transcript_db configured")
			}
			store, err := transcript.NewSQLiteStore(cfg.TranscriptDB)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				ids, err := store.Sessions(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			entries, err := store.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(out, "[%s] %s\n", e.Role, e.Text)
			}
			return nil
		},
	}
}
