package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "STOCKGENIUS_HOST", "STOCKGENIUS_PORT", "STOCKGENIUS_ALLOWED_ORIGINS",
		"STOCKGENIUS_LOG_LEVEL", "STOCKGENIUS_LOG_DIR", "STOCKGENIUS_LLM_PROVIDER", "STOCKGENIUS_LLM_MODEL",
		"STOCKGENIUS_LLM_BASE_URL", "STOCKGENIUS_LLM_TIMEOUT_SECONDS", "STOCKGENIUS_MARKET_PROVIDER",
		"STOCKGENIUS_MARKET_BASE_URL", "STOCKGENIUS_MARKET_TIMEOUT_SECONDS", "STOCKGENIUS_FETCH_WORKERS",
		"STOCKGENIUS_JOURNAL_PATH", "STOCKGENIUS_JOURNAL_ENABLED", "STOCKGENIUS_TRACING_ENABLED",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "ALPHAVANTAGE_API_KEY", envDataDir,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8000 {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLMTimeout() != 2*time.Minute {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.MarketData.Provider != MarketAlphaVantage || cfg.MarketTimeout() != 10*time.Second || cfg.MarketData.Workers != 4 {
		t.Fatalf("unexpected market defaults: %+v", cfg.MarketData)
	}
	if cfg.Journal.Enabled || cfg.Tracing.Enabled {
		t.Fatalf("journal and tracing should default off")
	}
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
  allowed_origins: ["http://localhost:5173"]
llm:
  provider: Anthropic
  api_key: from-file
market_data:
  provider: static
  workers: 2
journal:
  enabled: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STOCKGENIUS_PORT", "9100")
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("STOCKGENIUS_FETCH_WORKERS", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Fatalf("expected env port override, got %d", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.APIKey != "from-env" {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.MarketData.Provider != MarketStatic || cfg.MarketData.Workers != 2 {
		t.Fatalf("unexpected market config: %+v", cfg.MarketData)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "static ok", mutate: func(c *Config) { c.MarketData.Provider = MarketStatic }},
		{name: "alphavantage needs key", mutate: func(c *Config) {}, wantErr: "market_data.api_key"},
		{name: "bad port", mutate: func(c *Config) { c.MarketData.Provider = MarketStatic; c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "bad llm", mutate: func(c *Config) { c.MarketData.Provider = MarketStatic; c.LLM.Provider = "cohere" }, wantErr: "llm.provider"},
		{name: "bad market", mutate: func(c *Config) { c.MarketData.Provider = "yahoo" }, wantErr: "market_data.provider"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tc.mutate(cfg)
			err = cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	if got := ResolvePath(""); got != DefaultConfigPath {
		t.Fatalf("expected default path, got %q", got)
	}
	t.Setenv("CONFIG_PATH", "/etc/stockgenius.yaml")
	if got := ResolvePath(""); got != "/etc/stockgenius.yaml" {
		t.Fatalf("expected env path, got %q", got)
	}
	if got := ResolvePath("flag.yaml"); got != "flag.yaml" {
		t.Fatalf("expected explicit path, got %q", got)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("OPENAI_API_KEY=dotenv\nGEMINI_API_KEY=dotenv-gemini\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "already-set")
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")

	LoadDotEnv(envFile, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("OPENAI_API_KEY"); got != "already-set" {
		t.Fatalf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("GEMINI_API_KEY"); got != "dotenv-gemini" {
		t.Fatalf("expected .env value, got %q", got)
	}
}

func TestJournalAndLogPaths(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	data := t.TempDir()
	if got := cfg.ResolveJournalPath(data); got != "" {
		t.Fatalf("expected disabled journal, got %q", got)
	}
	cfg.Journal.Enabled = true
	if got := cfg.ResolveJournalPath(data); got != filepath.Join(data, "advice_history.db") {
		t.Fatalf("unexpected journal path %q", got)
	}
	if got := cfg.ResolveLogDir(data); got != filepath.Join(data, "logs") {
		t.Fatalf("unexpected log dir %q", got)
	}

	t.Setenv("STOCKGENIUS_JOURNAL_PATH", "/var/lib/sg/journal.db")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.ResolveJournalPath(data); got != "/var/lib/sg/journal.db" {
		t.Fatalf("expected env journal path, got %q", got)
	}
}

func TestRuntimeDataDirAndEnv(t *testing.T) {
	SetRuntimeDataDir("")
	defer SetRuntimeDataDir("")

	tmp := t.TempDir()
	SetRuntimeDataDir(tmp)
	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dir != tmp {
		t.Fatalf("expected runtime dir %q, got %q", tmp, dir)
	}

	SetRuntimeDataDir("")
	tmpEnv := filepath.Join(t.TempDir(), "data")
	t.Setenv(envDataDir, tmpEnv)
	dir, err = GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir env: %v", err)
	}
	if dir != tmpEnv {
		t.Fatalf("expected env dir %q, got %q", tmpEnv, dir)
	}
	if _, err := os.Stat(tmpEnv); err != nil {
		t.Fatalf("expected env dir to be created: %v", err)
	}
}

func TestIsMacOSWindows(t *testing.T) {
	if IsMacOS() != (runtime.GOOS == "darwin") {
		t.Fatalf("IsMacOS mismatch")
	}
	if IsWindows() != (runtime.GOOS == "windows") {
		t.Fatalf("IsWindows mismatch")
	}
}
