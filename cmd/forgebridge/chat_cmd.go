package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive agent session against a running host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			session, err := newAgentSession(cfg)
			if err != nil {
				return err
			}
			defer session.Close()
			return runChat(cmd, session)
		},
	}
}

func runChat(cmd *cobra.Command, session *agentSession) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          color.New(color.FgGreen, color.Bold).Sprint("you> "),
		InterruptPrompt: "^C",
	})
	if err != nil {
		return fmt.Errorf("chat: init readline: %w", err)
	}
	defer rl.Close()

	agentColor := color.New(color.FgCyan)
	errColor := color.New(color.FgRed)
	fmt.Fprintln(cmd.OutOrStdout(), "Type a goal, or exit/quit to leave.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		answer, err := session.Run(cmd.Context(), line)
		if err != nil {
			errColor.Fprintf(cmd.OutOrStdout(), "run failed: %v\n", err)
			continue
		}
		agentColor.Fprintf(cmd.OutOrStdout(), "agent> %s\n", answer)
	}
}
