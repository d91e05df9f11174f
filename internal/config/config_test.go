package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvListenAddr, EnvBridgeURL, EnvToken, EnvModel} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearOverrides(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:18080" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if time.Duration(cfg.SubmitTimeout) != 30*time.Second {
		t.Fatalf("submit timeout = %v", cfg.SubmitTimeout)
	}
	if cfg.Agent.MaxSteps != 12 || cfg.Agent.Model != "main" {
		t.Fatalf("agent = %+v", cfg.Agent)
	}
}

func TestLoadFile(t *testing.T) {
	clearOverrides(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "forgebridge.yaml")
	raw := `
listen_addr: 127.0.0.1:9000
token: file-token
submit_timeout: 5s
log_level: debug
transcript_db: /tmp/agent.db
agent:
  model: fast
  max_steps: 6
models:
  - alias: Fast
    provider: openai
    api: openai_compatible
    model: gpt-4.1-mini
    base_url: https://api.example.com/v1
    token_env: OPENAI_API_KEY
    timeout: 45s
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" || cfg.Token != "file-token" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if time.Duration(cfg.SubmitTimeout) != 5*time.Second {
		t.Fatalf("submit timeout = %v", cfg.SubmitTimeout)
	}
	if cfg.Agent.Model != "fast" || cfg.Agent.MaxSteps != 6 {
		t.Fatalf("agent = %+v", cfg.Agent)
	}

	m, ok := cfg.ModelByAlias("FAST")
	if !ok {
		t.Fatal("alias lookup should be case-insensitive")
	}
	if m.Model != "gpt-4.1-mini" || time.Duration(m.Timeout) != 45*time.Second {
		t.Fatalf("model = %+v", m)
	}
	if _, ok := cfg.ModelByAlias("missing"); ok {
		t.Fatal("missing alias should not resolve")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearOverrides(t)
	t.Chdir(t.TempDir())
	t.Setenv(EnvListenAddr, "127.0.0.1:7777")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvModel, "alt")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7777" || cfg.Token != "env-token" || cfg.Agent.Model != "alt" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearOverrides(t)
	dir := t.TempDir()
	t.Chdir(dir)
	env := "# local secrets\n" + EnvToken + "=dotenv-token\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "dotenv-token" {
		t.Fatalf("token = %q", cfg.Token)
	}
}

func TestBadDuration(t *testing.T) {
	clearOverrides(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("submit_timeout: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want error for invalid duration")
	}
}
