package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftsmith/forgebridge/kernel/bridge"
)

// ToolResponse is a bridge outcome plus the vocabulary the listener returns
// on an unknown tool name.
type ToolResponse struct {
	bridge.Outcome
	Available []string `json:"available,omitempty"`
}

// Client talks to a listener with the shared secret on every request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the listener at baseURL. httpClient may be
// nil; bridge submissions block up to their timeout, so the default allows
// for that plus transport slack.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 35 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// Ping checks the listener is up and the token is accepted.
func (c *Client) Ping(ctx context.Context) (bridge.Outcome, error) {
	var out bridge.Outcome
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &out); err != nil {
		return bridge.Outcome{}, err
	}
	return out, nil
}

// State fetches the host state snapshot.
func (c *Client) State(ctx context.Context) (bridge.Outcome, error) {
	var out bridge.Outcome
	if err := c.do(ctx, http.MethodGet, "/state", nil, &out); err != nil {
		return bridge.Outcome{}, err
	}
	return out, nil
}

// CallTool submits one tool execution. A failed outcome is not an error:
// err is reserved for transport and protocol problems.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (ToolResponse, error) {
	if args == nil {
		args = map[string]any{}
	}
	body := map[string]any{"tool": name, "args": args}
	var out ToolResponse
	if err := c.do(ctx, http.MethodPost, "/tool", body, &out); err != nil {
		return ToolResponse{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("hostapi: encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("hostapi: build request: %w", err)
	}
	req.Header.Set(TokenHeader, c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hostapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hostapi: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			return fmt.Errorf("hostapi: %s %s: status %d: %s", method, path, resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("hostapi: %s %s: status %d", method, path, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("hostapi: decode response: %w", err)
	}
	return nil
}
