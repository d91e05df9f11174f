package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/draftsmith/forgebridge/internal/config"
	"github.com/draftsmith/forgebridge/kernel/agentloop"
	"github.com/draftsmith/forgebridge/kernel/hostapi"
	"github.com/draftsmith/forgebridge/kernel/model"
	"github.com/draftsmith/forgebridge/kernel/model/providers"
	"github.com/draftsmith/forgebridge/kernel/studio"
	"github.com/draftsmith/forgebridge/kernel/tool"
	"github.com/draftsmith/forgebridge/kernel/transcript"
)

// agentSession bundles everything one agent run needs.
type agentSession struct {
	id       string
	loop     *agentloop.Loop
	store    transcript.Store
	logger   *slog.Logger
	recorded int
}

func newAgentSession(cfg *config.Config) (*agentSession, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("agent: a shared token is required (set %s or token in the config)", config.EnvToken)
	}
	logger := newLogger(cfg.LogLevel)

	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	// A throwaway host supplies the argument schemas for the system prompt;
	// the real host lives behind the listener.
	decls, err := localDeclarations()
	if err != nil {
		return nil, err
	}

	client := hostapi.NewClient(cfg.BridgeURL, cfg.Token, nil)
	loop, err := agentloop.New(agentloop.Config{
		LLM:          llm,
		Dispatcher:   client,
		Declarations: decls,
		MaxSteps:     cfg.Agent.MaxSteps,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	var store transcript.Store
	if cfg.TranscriptDB != "" {
		store, err = transcript.NewSQLiteStore(cfg.TranscriptDB)
		if err != nil {
			return nil, err
		}
	} else {
		store = transcript.NewMemoryStore()
	}

	return &agentSession{
		id:     uuid.NewString(),
		loop:   loop,
		store:  store,
		logger: logger,
	}, nil
}

func (s *agentSession) Close() error {
	return s.store.Close()
}

// Run executes one agent turn and persists the new conversation entries.
func (s *agentSession) Run(ctx context.Context, goal string) (string, error) {
	answer, runErr := s.loop.Run(ctx, goal)

	msgs := s.loop.Messages()
	for ; s.recorded < len(msgs); s.recorded++ {
		m := msgs[s.recorded]
		if err := s.store.Append(ctx, s.id, string(m.Role), m.Text); err != nil {
			s.logger.Warn("transcript append failed", "err", err)
			break
		}
	}
	return answer, runErr
}

func buildLLM(cfg *config.Config) (model.LLM, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("agent: no models configured")
	}
	factory := providers.NewFactory()
	for _, m := range cfg.Models {
		err := factory.Register(providers.Config{
			Alias:        m.Alias,
			Provider:     m.Provider,
			API:          providers.APIType(m.API),
			Model:        m.Model,
			BaseURL:      m.BaseURL,
			Timeout:      time.Duration(m.Timeout),
			MaxOutputTok: m.MaxOutputTok,
			Auth: providers.AuthConfig{
				Token:    m.Token,
				TokenEnv: m.TokenEnv,
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return factory.NewByAlias(cfg.Agent.Model)
}

func localDeclarations() ([]tool.Declaration, error) {
	tools, err := studio.Tools(studio.NewHost())
	if err != nil {
		return nil, err
	}
	registry, err := tool.NewRegistry(tools)
	if err != nil {
		return nil, err
	}
	return registry.Declarations(), nil
}
