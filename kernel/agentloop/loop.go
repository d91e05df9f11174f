package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/draftsmith/forgebridge/kernel/bridge"
	"github.com/draftsmith/forgebridge/kernel/hostapi"
	"github.com/draftsmith/forgebridge/kernel/model"
	"github.com/draftsmith/forgebridge/kernel/tool"
)

// DefaultMaxSteps bounds the cycles of one run.
const DefaultMaxSteps = 12

// maxStepsMessage is the fixed answer when the budget runs out.
const maxStepsMessage = "Max steps reached without finishing."

// Dispatcher is the listener client surface the loop needs. Implemented by
// hostapi.Client.
type Dispatcher interface {
	Ping(context.Context) (bridge.Outcome, error)
	State(context.Context) (bridge.Outcome, error)
	CallTool(context.Context, string, map[string]any) (hostapi.ToolResponse, error)
}

// Config configures one loop.
type Config struct {
	LLM        model.LLM
	Dispatcher Dispatcher
	Router     Router
	// Declarations enriches the system prompt with argument schemas.
	Declarations []tool.Declaration
	MaxSteps     int
	Logger       *slog.Logger
}

// Loop owns one conversation. It is single-threaded: one model call and at
// most one tool dispatch outstanding at a time.
type Loop struct {
	cfg      Config
	logger   *slog.Logger
	messages []model.Message
}

// New seeds a loop with the protocol system prompt.
func New(cfg Config) (*Loop, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("agentloop: llm is nil")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("agentloop: dispatcher is nil")
	}
	if cfg.Router == nil {
		cfg.Router = DefaultRouter()
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:    cfg,
		logger: logger,
		messages: []model.Message{
			{Role: model.RoleSystem, Text: SystemPrompt(cfg.Router, cfg.Declarations)},
		},
	}, nil
}

// Messages returns the conversation so far.
func (l *Loop) Messages() []model.Message {
	return append([]model.Message(nil), l.messages...)
}

// Run appends one user message and cycles until a final action, a terminal
// failure, or the step budget. Tool failures are not terminal: they are fed
// back into the conversation for the model to recover from.
func (l *Loop) Run(ctx context.Context, userText string) (string, error) {
	l.messages = append(l.messages, model.Message{Role: model.RoleUser, Text: userText})

	for step := 0; step < l.cfg.MaxSteps; step++ {
		resp, err := l.cfg.LLM.Complete(ctx, &model.Request{Messages: l.messages})
		if err != nil {
			return "", fmt.Errorf("agentloop: model call: %w", err)
		}
		raw := resp.Message.Text

		act, err := ParseAction(raw)
		if err != nil {
			// Keep the unparseable text for auditability, then end the run.
			l.messages = append(l.messages, model.Message{Role: model.RoleAssistant, Text: raw})
			return "", err
		}

		// Re-serialize so the transcript holds the normalized action.
		normalized, marshalErr := json.Marshal(act)
		if marshalErr != nil {
			return "", fmt.Errorf("agentloop: normalize action: %w", marshalErr)
		}
		l.messages = append(l.messages, model.Message{Role: model.RoleAssistant, Text: string(normalized)})

		switch act.Action {
		case ActionFinal:
			return act.Message, nil
		case ActionTool:
		default:
			return "", fmt.Errorf("agentloop: unknown action %q", act.Action)
		}
		if act.ToolName == "" {
			return "", fmt.Errorf("agentloop: action is missing tool_name")
		}

		result := l.dispatch(ctx, act.ToolName, act.Args)
		l.logger.Debug("tool step", "step", step+1, "tool", act.ToolName, "ok", result["ok"])

		feedback, marshalErr := json.MarshalIndent(map[string]any{
			"tool_result": map[string]any{
				"tool_name": act.ToolName,
				"args":      act.Args,
				"result":    result,
			},
		}, "", "  ")
		if marshalErr != nil {
			return "", fmt.Errorf("agentloop: encode tool result: %w", marshalErr)
		}
		l.messages = append(l.messages, model.Message{Role: model.RoleUser, Text: string(feedback)})
	}

	return maxStepsMessage, nil
}

// dispatch resolves a public tool name and executes it. Every failure mode
// becomes an ok:false result map; nothing here is terminal for the run.
func (l *Loop) dispatch(ctx context.Context, name string, args map[string]any) map[string]any {
	route, ok := l.cfg.Router[name]
	if !ok {
		// Not in the vocabulary: never touches the network.
		return failureResult(fmt.Sprintf("Tool not allowed: %s", name))
	}

	if route.Verb == VerbGet {
		var out bridge.Outcome
		var err error
		switch route.Remote {
		case "/ping":
			out, err = l.cfg.Dispatcher.Ping(ctx)
		case "/state":
			out, err = l.cfg.Dispatcher.State(ctx)
		default:
			err = fmt.Errorf("agentloop: unroutable GET %q", route.Remote)
		}
		if err != nil {
			return failureResult(err.Error())
		}
		return outcomeResult(out, nil)
	}

	res, err := l.cfg.Dispatcher.CallTool(ctx, route.Remote, args)
	if err != nil {
		return failureResult(err.Error())
	}
	return outcomeResult(res.Outcome, res.Available)
}

func failureResult(message string) map[string]any {
	return map[string]any{"ok": false, "error": message}
}

func outcomeResult(out bridge.Outcome, available []string) map[string]any {
	result := map[string]any{"ok": out.OK}
	if out.Result != nil {
		result["result"] = out.Result
	}
	if out.Error != "" {
		result["error"] = out.Error
	}
	if out.Trace != "" {
		result["trace"] = out.Trace
	}
	if len(available) > 0 {
		result["available"] = available
	}
	return result
}
