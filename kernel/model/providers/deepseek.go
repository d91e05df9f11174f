package providers

import (
	"github.com/draftsmith/forgebridge/kernel/model"
)

// DeepSeek speaks the OpenAI-compatible dialect with thinking disabled, so
// the action protocol gets a plain completion back.
func newDeepSeek(cfg Config, token string) model.LLM {
	llm := newOpenAICompat(cfg, token)
	llm.options.DisableThinking = true
	return llm
}
