// Package agentloop runs the bounded tool-calling conversation loop. The
// model speaks a strict JSON action protocol; the loop validates each action,
// dispatches tools through the listener client, and feeds results back.
package agentloop

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Action kinds the model may emit.
const (
	ActionTool  = "tool"
	ActionFinal = "final"
)

// Action is one structured model instruction.
type Action struct {
	Action   string         `json:"action"`
	ToolName string         `json:"tool_name,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// ParseError reports model output that could not be recovered into an
// Action. It ends the current run, not the process.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("agentloop: model did not return valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseAction decodes model output into an Action. Strict parse first; if
// the model wrapped the object in prose, retry on the substring between the
// first '{' and the last '}'; as a last resort run the candidate through a
// JSON repairer. Failure after all three is terminal for the run.
func ParseAction(text string) (Action, error) {
	trimmed := strings.TrimSpace(text)

	var act Action
	strictErr := json.Unmarshal([]byte(trimmed), &act)
	if strictErr == nil {
		return act, nil
	}

	candidate := trimmed
	if i, j := strings.Index(trimmed, "{"), strings.LastIndex(trimmed, "}"); i != -1 && j > i {
		candidate = trimmed[i : j+1]
		if err := json.Unmarshal([]byte(candidate), &act); err == nil {
			return act, nil
		}
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return Action{}, &ParseError{Raw: text, Err: strictErr}
	}
	if err := json.Unmarshal([]byte(repaired), &act); err != nil {
		return Action{}, &ParseError{Raw: text, Err: strictErr}
	}
	return act, nil
}
