package hostapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/draftsmith/forgebridge/kernel/bridge"
	"github.com/draftsmith/forgebridge/kernel/tool"
)

const testToken = "secret-token"

type fixture struct {
	server  *httptest.Server
	client  *Client
	echoRan atomic.Int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	echo, err := tool.NewFunction("echo", "Echo the arguments back.",
		func(_ context.Context, args map[string]any) (map[string]any, error) {
			f.echoRan.Add(1)
			return args, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	boom, err := tool.NewFunction("boom", "Always fails.",
		func(_ context.Context, _ map[string]any) (map[string]any, error) {
			return nil, fmt.Errorf("No active design.")
		})
	if err != nil {
		t.Fatal(err)
	}
	state, err := tool.NewFunction(StateToolName, "Snapshot host state.",
		func(_ context.Context, _ map[string]any) (map[string]any, error) {
			return map[string]any{"designName": "Test"}, nil
		})
	if err != nil {
		t.Fatal(err)
	}

	reg, err := tool.NewRegistry([]tool.Tool{echo, boom, state})
	if err != nil {
		t.Fatal(err)
	}

	b := bridge.New(bridge.Config{Logger: slog.New(slog.DiscardHandler)})
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Stop)

	srv, err := NewServer(ServerConfig{
		Token:    testToken,
		Registry: reg,
		Bridge:   b,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatal(err)
	}
	f.server = httptest.NewServer(srv.Handler())
	t.Cleanup(f.server.Close)
	f.client = NewClient(f.server.URL, testToken, f.server.Client())
	return f
}

func (f *fixture) request(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reqBody)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func TestAuthRequiredOnEveryRoute(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		method, path, token string
	}{
		{http.MethodGet, "/ping", ""},
		{http.MethodGet, "/ping", "wrong"},
		{http.MethodGet, "/state", "wrong"},
		{http.MethodPost, "/tool", ""},
		{http.MethodGet, "/no-such-route", "wrong"},
		{http.MethodDelete, "/also-missing", ""},
	}
	for _, tc := range cases {
		status, body := f.request(t, tc.method, tc.path, tc.token, "")
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s token=%q: status %d, want 401", tc.method, tc.path, tc.token, status)
		}
		if body["error"] != "unauthorized" {
			t.Errorf("%s %s: body %v", tc.method, tc.path, body)
		}
	}
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	status, body := f.request(t, http.MethodGet, "/ping", testToken, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["ok"] != true {
		t.Fatalf("body = %v", body)
	}
	result := body["result"].(map[string]any)
	if result["message"] != "pong" {
		t.Fatalf("result = %v", result)
	}
}

func TestState(t *testing.T) {
	f := newFixture(t)
	status, body := f.request(t, http.MethodGet, "/state", testToken, "")
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("status %d body %v", status, body)
	}
	result := body["result"].(map[string]any)
	if result["designName"] != "Test" {
		t.Fatalf("result = %v", result)
	}
}

func TestToolDispatch(t *testing.T) {
	f := newFixture(t)
	status, body := f.request(t, http.MethodPost, "/tool", testToken, `{"tool":"echo","args":{"x":1}}`)
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("status %d body %v", status, body)
	}
	result := body["result"].(map[string]any)
	if result["x"] != float64(1) {
		t.Fatalf("result = %v", result)
	}
	if f.echoRan.Load() != 1 {
		t.Fatalf("echo ran %d times", f.echoRan.Load())
	}
}

func TestToolFailureIsStillHTTP200(t *testing.T) {
	f := newFixture(t)
	status, body := f.request(t, http.MethodPost, "/tool", testToken, `{"tool":"boom","args":{}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a handler failure", status)
	}
	if body["ok"] != false || body["error"] != "No active design." {
		t.Fatalf("body = %v", body)
	}
}

func TestUnknownToolNeverReachesBridge(t *testing.T) {
	f := newFixture(t)
	status, body := f.request(t, http.MethodPost, "/tool", testToken, `{"tool":"nonexistent","args":{}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["ok"] != false || body["error"] != "Unknown tool 'nonexistent'." {
		t.Fatalf("body = %v", body)
	}
	available := body["available"].([]any)
	want := []string{"boom", "echo", StateToolName}
	if len(available) != len(want) {
		t.Fatalf("available = %v", available)
	}
	for i, name := range want {
		if available[i] != name {
			t.Fatalf("available = %v, want %v", available, want)
		}
	}
	if f.echoRan.Load() != 0 {
		t.Fatal("no handler should have run")
	}
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)
	status, body := f.request(t, http.MethodPost, "/tool", testToken, `{"tool": "echo",`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["error"] != "invalid json" {
		t.Fatalf("body = %v", body)
	}
	if f.echoRan.Load() != 0 {
		t.Fatal("no task should be submitted for a malformed body")
	}
}

func TestUnknownRouteAndWrongMethod(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/no-such-route"},
		{http.MethodGet, "/tool"},
		{http.MethodPost, "/ping"},
	} {
		status, body := f.request(t, tc.method, tc.path, testToken, "")
		if status != http.StatusNotFound {
			t.Errorf("%s %s: status %d, want 404", tc.method, tc.path, status)
		}
		if body["error"] != "not found" {
			t.Errorf("%s %s: body %v", tc.method, tc.path, body)
		}
	}
}

func TestClientRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ping, err := f.client.Ping(ctx)
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if !ping.OK || ping.Result["message"] != "pong" {
		t.Fatalf("ping = %+v", ping)
	}

	state, err := f.client.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !state.OK || state.Result["designName"] != "Test" {
		t.Fatalf("state = %+v", state)
	}

	res, err := f.client.CallTool(ctx, "echo", map[string]any{"n": 7})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.OK || res.Result["n"] != float64(7) {
		t.Fatalf("res = %+v", res)
	}

	unknown, err := f.client.CallTool(ctx, "nope", nil)
	if err != nil {
		t.Fatalf("CallTool unknown: %v", err)
	}
	if unknown.OK || len(unknown.Available) != 3 {
		t.Fatalf("unknown = %+v", unknown)
	}
}

func TestClientUnauthorized(t *testing.T) {
	f := newFixture(t)
	bad := NewClient(f.server.URL, "wrong-token", f.server.Client())
	if _, err := bad.Ping(context.Background()); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v, want 401", err)
	}
}
