package agentloop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/draftsmith/forgebridge/kernel/bridge"
	"github.com/draftsmith/forgebridge/kernel/hostapi"
	"github.com/draftsmith/forgebridge/kernel/model"
)

// stubLLM replays canned assistant texts, repeating the last one forever.
type stubLLM struct {
	replies []string
	calls   int
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Complete(_ context.Context, req *model.Request) (*model.Response, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("stub: empty request")
	}
	idx := s.calls
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.calls++
	return &model.Response{
		Message: model.Message{Role: model.RoleAssistant, Text: s.replies[idx]},
	}, nil
}

type dispatchedCall struct {
	name string
	args map[string]any
}

type stubDispatcher struct {
	pings   int
	states  int
	calls   []dispatchedCall
	outcome bridge.Outcome
	err     error
}

func (s *stubDispatcher) Ping(context.Context) (bridge.Outcome, error) {
	s.pings++
	return s.outcome, s.err
}

func (s *stubDispatcher) State(context.Context) (bridge.Outcome, error) {
	s.states++
	return s.outcome, s.err
}

func (s *stubDispatcher) CallTool(_ context.Context, name string, args map[string]any) (hostapi.ToolResponse, error) {
	s.calls = append(s.calls, dispatchedCall{name: name, args: args})
	return hostapi.ToolResponse{Outcome: s.outcome}, s.err
}

func newTestLoop(t *testing.T, llm *stubLLM, d *stubDispatcher) *Loop {
	t.Helper()
	if d.outcome.OK == false && d.outcome.Error == "" && d.err == nil {
		d.outcome = bridge.Ok(map[string]any{"done": true})
	}
	l, err := New(Config{
		LLM:        llm,
		Dispatcher: d,
		Logger:     slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestRun_FinalOnFirstTurn(t *testing.T) {
	llm := &stubLLM{replies: []string{`{"action":"final","message":"done"}`}}
	d := &stubDispatcher{}
	l := newTestLoop(t, llm, d)

	got, err := l.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "done" {
		t.Fatalf("answer = %q", got)
	}
	if llm.calls != 1 {
		t.Fatalf("model calls = %d, want 1", llm.calls)
	}
	if len(d.calls) != 0 || d.pings != 0 || d.states != 0 {
		t.Fatal("no tool should have been dispatched")
	}
}

func TestRun_StepBudget(t *testing.T) {
	llm := &stubLLM{replies: []string{`{"action":"tool","tool_name":"studio_get_state","args":{}}`}}
	d := &stubDispatcher{}
	l := newTestLoop(t, llm, d)

	got, err := l.Run(context.Background(), "loop forever")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "Max steps reached without finishing." {
		t.Fatalf("answer = %q", got)
	}
	if llm.calls != 12 {
		t.Fatalf("model calls = %d, want 12", llm.calls)
	}
	if d.states != 12 {
		t.Fatalf("state dispatches = %d, want 12", d.states)
	}
}

func TestRun_ParseRecovery(t *testing.T) {
	llm := &stubLLM{replies: []string{"Sure! {\"action\":\"final\",\"message\":\"ok\"} thanks"}}
	l := newTestLoop(t, llm, &stubDispatcher{})

	got, err := l.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "ok" {
		t.Fatalf("answer = %q", got)
	}
}

func TestRun_ParseFailureIsTerminal(t *testing.T) {
	llm := &stubLLM{replies: []string{"I would rather chat about the weather."}}
	l := newTestLoop(t, llm, &stubDispatcher{})

	_, err := l.Run(context.Background(), "hi")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if !strings.Contains(perr.Raw, "weather") {
		t.Fatalf("raw = %q", perr.Raw)
	}
	// The raw text stays in the conversation for auditability.
	msgs := l.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != model.RoleAssistant || !strings.Contains(last.Text, "weather") {
		t.Fatalf("last message = %+v", last)
	}
	if llm.calls != 1 {
		t.Fatalf("model calls = %d, a parse failure is not retried", llm.calls)
	}
}

func TestRun_UnknownToolNeverDispatches(t *testing.T) {
	llm := &stubLLM{replies: []string{
		`{"action":"tool","tool_name":"studio_teleport","args":{}}`,
		`{"action":"final","message":"gave up"}`,
	}}
	d := &stubDispatcher{}
	l := newTestLoop(t, llm, d)

	got, err := l.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "gave up" {
		t.Fatalf("answer = %q", got)
	}
	if len(d.calls) != 0 || d.pings != 0 || d.states != 0 {
		t.Fatal("unroutable tool must not reach the dispatcher")
	}
	msgs := l.Messages()
	feedback := msgs[len(msgs)-2]
	if feedback.Role != model.RoleUser || !strings.Contains(feedback.Text, "Tool not allowed: studio_teleport") {
		t.Fatalf("feedback = %+v", feedback)
	}
}

func TestRun_GetRoutes(t *testing.T) {
	llm := &stubLLM{replies: []string{
		`{"action":"tool","tool_name":"studio_ping","args":{}}`,
		`{"action":"tool","tool_name":"studio_get_state","args":{}}`,
		`{"action":"final","message":"checked"}`,
	}}
	d := &stubDispatcher{outcome: bridge.Ok(map[string]any{"message": "pong"})}
	l := newTestLoop(t, llm, d)

	if _, err := l.Run(context.Background(), "check"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.pings != 1 || d.states != 1 || len(d.calls) != 0 {
		t.Fatalf("pings=%d states=%d posts=%d", d.pings, d.states, len(d.calls))
	}
}

func TestRun_PostRouteCarriesArgs(t *testing.T) {
	llm := &stubLLM{replies: []string{
		`{"action":"tool","tool_name":"studio_create_sketch_rect_xy","args":{"x_mm":40,"y_mm":30}}`,
		`{"action":"final","message":"made it"}`,
	}}
	d := &stubDispatcher{outcome: bridge.Ok(map[string]any{"sketchName": "Sketch1"})}
	l := newTestLoop(t, llm, d)

	if _, err := l.Run(context.Background(), "rect"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(d.calls) != 1 {
		t.Fatalf("posts = %d", len(d.calls))
	}
	call := d.calls[0]
	if call.name != "create_sketch_rect_xy" {
		t.Fatalf("remote name = %q", call.name)
	}
	if call.args["x_mm"] != float64(40) {
		t.Fatalf("args = %v", call.args)
	}
}

func TestRun_DispatchErrorFedBack(t *testing.T) {
	llm := &stubLLM{replies: []string{
		`{"action":"tool","tool_name":"studio_list_bodies","args":{}}`,
		`{"action":"final","message":"reported"}`,
	}}
	d := &stubDispatcher{err: fmt.Errorf("connection refused")}
	l := newTestLoop(t, llm, d)

	got, err := l.Run(context.Background(), "list")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "reported" {
		t.Fatalf("answer = %q", got)
	}
	msgs := l.Messages()
	feedback := msgs[len(msgs)-2]
	if !strings.Contains(feedback.Text, "connection refused") {
		t.Fatalf("feedback = %q", feedback.Text)
	}
}

func TestRun_ConversationShape(t *testing.T) {
	llm := &stubLLM{replies: []string{
		`{"action":"tool","tool_name":"studio_ping","args":{}}`,
		`{"action":"final","message":"bye"}`,
	}}
	d := &stubDispatcher{outcome: bridge.Ok(map[string]any{"message": "pong"})}
	l := newTestLoop(t, llm, d)

	if _, err := l.Run(context.Background(), "hello"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// system, user, assistant(tool), user(tool_result), assistant(final):
	// exactly two entries per tool step plus one per user input.
	msgs := l.Messages()
	if len(msgs) != 5 {
		t.Fatalf("messages = %d, want 5", len(msgs))
	}
	var envelope struct {
		ToolResult struct {
			ToolName string         `json:"tool_name"`
			Result   map[string]any `json:"result"`
		} `json:"tool_result"`
	}
	if err := json.Unmarshal([]byte(msgs[3].Text), &envelope); err != nil {
		t.Fatalf("tool_result entry is not JSON: %v", err)
	}
	if envelope.ToolResult.ToolName != "studio_ping" {
		t.Fatalf("envelope = %+v", envelope)
	}
	if envelope.ToolResult.Result["ok"] != true {
		t.Fatalf("result = %v", envelope.ToolResult.Result)
	}
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    Action
		wantErr bool
	}{
		{
			name: "strict",
			in:   `{"action":"final","message":"done"}`,
			want: Action{Action: "final", Message: "done"},
		},
		{
			name: "embedded in prose",
			in:   `Of course. {"action":"tool","tool_name":"studio_ping","args":{}} Let me know!`,
			want: Action{Action: "tool", ToolName: "studio_ping", Args: map[string]any{}},
		},
		{
			name: "repairable trailing comma",
			in:   `{"action":"final","message":"ok",}`,
			want: Action{Action: "final", Message: "ok"},
		},
		{
			name:    "hopeless",
			in:      "no json here",
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAction(tc.in)
			if tc.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("err = %v, want *ParseError", err)
				}
				if perr.Raw != tc.in {
					t.Fatalf("raw = %q", perr.Raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAction: %v", err)
			}
			if got.Action != tc.want.Action || got.ToolName != tc.want.ToolName || got.Message != tc.want.Message {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRouterCoversRegistryVocabulary(t *testing.T) {
	router := DefaultRouter()
	if len(router) != 29 {
		t.Fatalf("router size = %d, want 29", len(router))
	}
	gets := 0
	for name, route := range router {
		if !strings.HasPrefix(name, "studio_") {
			t.Errorf("public name %q lacks prefix", name)
		}
		if route.Verb == VerbGet {
			gets++
			if !strings.HasPrefix(route.Remote, "/") {
				t.Errorf("GET route %q remote %q is not a path", name, route.Remote)
			}
		} else if strings.HasPrefix(route.Remote, "/") {
			t.Errorf("POST route %q remote %q looks like a path", name, route.Remote)
		}
	}
	if gets != 2 {
		t.Fatalf("GET routes = %d, want 2", gets)
	}
}

func TestSystemPromptListsVocabulary(t *testing.T) {
	router := DefaultRouter()
	prompt := SystemPrompt(router, nil)
	for _, name := range router.Names() {
		if !strings.Contains(prompt, name) {
			t.Errorf("prompt is missing %q", name)
		}
	}
	if !strings.Contains(prompt, `"action": "tool" | "final"`) {
		t.Fatal("prompt is missing the action schema")
	}
}
