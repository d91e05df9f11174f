package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/draftsmith/forgebridge/kernel/model"
)

type openAICompatLLM struct {
	name     string
	provider string
	baseURL  string
	token    string
	client   *http.Client
	options  openAICompatOptions
}

type openAICompatOptions struct {
	// DisableThinking requests plain completions from dialects that default
	// to a reasoning mode (for example DeepSeek).
	DisableThinking bool
}

func newOpenAICompat(cfg Config, token string) *openAICompatLLM {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &openAICompatLLM{
		name:     cfg.Model,
		provider: cfg.Provider,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

func (l *openAICompatLLM) Name() string {
	return l.name
}

func (l *openAICompatLLM) Complete(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("model: request is nil")
	}
	payload := openAICompatRequest{
		Model:    l.name,
		Messages: fromKernelMessages(req.Messages),
		Stream:   false,
	}
	if l.options.DisableThinking {
		payload.Thinking = &openAIThinking{Type: "disabled"}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var out openAICompatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("model: empty choices")
	}
	msg := out.Choices[0].Message
	return &model.Response{
		Message: model.Message{
			Role: model.Role(msg.Role),
			Text: msg.Content,
		},
		Model:    out.Model,
		Provider: l.provider,
		Usage: model.Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

type openAICompatRequest struct {
	Model    string            `json:"model"`
	Messages []openAICompatMsg `json:"messages"`
	Stream   bool              `json:"stream"`
	Thinking *openAIThinking   `json:"thinking,omitempty"`
}

type openAICompatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIThinking struct {
	Type string `json:"type"`
}

type openAICompatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAICompatMsg `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func fromKernelMessages(messages []model.Message) []openAICompatMsg {
	out := make([]openAICompatMsg, 0, len(messages))
	for _, m := range messages {
		out = append(out, openAICompatMsg{
			Role:    string(m.Role),
			Content: m.Text,
		})
	}
	return out
}
