// Package model is the provider-agnostic language model abstraction. Tool
// use is carried inside message text as a structured action protocol, so the
// contract is a plain text completion: full conversation in, one assistant
// message out.
package model

import (
	"context"
)

// Role identifies message author type.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn element in model context.
type Message struct {
	Role Role
	Text string
}

// Request is a provider-agnostic model request.
type Request struct {
	Messages []Message
}

// Usage reports model token usage (best-effort).
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is a provider-agnostic model response.
type Response struct {
	Message  Message
	Usage    Usage
	Model    string
	Provider string
}

// LLM is the model abstraction used by the kernel.
type LLM interface {
	Name() string
	Complete(context.Context, *Request) (*Response, error)
}
