package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/draftsmith/forgebridge/internal/config"
	"github.com/draftsmith/forgebridge/kernel/bridge"
	"github.com/draftsmith/forgebridge/kernel/hostapi"
	"github.com/draftsmith/forgebridge/kernel/studio"
	"github.com/draftsmith/forgebridge/kernel/tool"
)

func newHostCmd() *cobra.Command {
	var designName string
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Start the design host, task bridge, and loopback listener",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runHost(cmd, cfg, designName)
		},
	}
	cmd.Flags().StringVar(&designName, "design", "Design1", "name of the document to open")
	return cmd
}

func runHost(cmd *cobra.Command, cfg *config.Config, designName string) error {
	if cfg.Token == "" {
		return fmt.Errorf("host: a shared token is required (set %s or token in the config)", config.EnvToken)
	}
	logger := newLogger(cfg.LogLevel)

	host := studio.NewHost()
	host.Open(studio.NewDocument(designName))

	tools, err := studio.Tools(host)
	if err != nil {
		return fmt.Errorf("host: build tools: %w", err)
	}
	registry, err := tool.NewRegistry(tools)
	if err != nil {
		return fmt.Errorf("host: build registry: %w", err)
	}

	b := bridge.New(bridge.Config{
		SubmitTimeout: time.Duration(cfg.SubmitTimeout),
		Logger:        logger,
	})
	if err := b.Start(); err != nil {
		return fmt.Errorf("host: start bridge: %w", err)
	}
	defer b.Stop()

	server, err := hostapi.NewServer(hostapi.ServerConfig{
		Addr:     cfg.ListenAddr,
		Token:    cfg.Token,
		Registry: registry,
		Bridge:   b,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("host: build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("host ready", "design", designName, "tools", len(tools), "addr", cfg.ListenAddr)
	return server.ListenAndServe(ctx)
}
