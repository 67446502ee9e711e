package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"stockgenius/pkg/stockgenius"
)

func setupRouterWithLogger(t *testing.T, logger *slog.Logger) http.Handler {
	t.Helper()

	core, err := stockgenius.OpenWithOptions(stockgenius.Options{
		Logger:      logger,
		Market:      stockgenius.NewStaticFetcher(stockgenius.SampleFundamentals()...),
		JournalPath: filepath.Join(t.TempDir(), "journal.db"),
	})
	if err != nil {
		t.Fatalf("open core: %v", err)
	}
	t.Cleanup(func() { _ = core.Close() })
	return NewRouter(core, Options{})
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestNewRouterLogsRequestCompleted(t *testing.T) {
	logger, buf := captureLogger()
	router := setupRouterWithLogger(t, logger)

	rr := doRequest(router, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		"http request completed",
		"method=GET",
		"path=/api/health",
		"route=/api/health",
		"status=200",
		"request_id=",
		"duration_ms=",
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %q in logs, got %q", want, logs)
		}
	}
}

func TestNewRouterLogsWarnForBadRequest(t *testing.T) {
	logger, buf := captureLogger()
	router := setupRouterWithLogger(t, logger)

	rr := doRequest(router, http.MethodGet, "/api/advice-history?kind=weekly", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, "level=WARN") {
		t.Fatalf("expected warn level log, got %q", logs)
	}
	if !strings.Contains(logs, "status=400") {
		t.Fatalf("expected status=400 in log, got %q", logs)
	}
	if !strings.Contains(logs, "invalid advice kind: weekly") {
		t.Fatalf("expected error message in log, got %q", logs)
	}
	if !strings.Contains(logs, `query="kind=weekly"`) {
		t.Fatalf("expected query in log, got %q", logs)
	}
}

func TestNewRouterRecoversPanicWithStructuredLog(t *testing.T) {
	logger, buf := captureLogger()
	oldDefault := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() {
		slog.SetDefault(oldDefault)
	})

	// A nil core makes every handler panic.
	router := NewRouter(nil, Options{})
	rr := doRequest(router, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	body := rr.Body.String()
	if !strings.Contains(body, `"error_code":"INTERNAL_ERROR"`) || !strings.Contains(body, `"message":"internal server error"`) {
		t.Fatalf("expected structured error response, got %q", body)
	}

	logs := buf.String()
	if !strings.Contains(logs, "panic recovered") {
		t.Fatalf("expected panic recovery log, got %q", logs)
	}
	if !strings.Contains(logs, "level=ERROR") || !strings.Contains(logs, "status=500") {
		t.Fatalf("expected error-level completion log, got %q", logs)
	}
}

func TestNewRouterUsesCoreLoggerForRequestLogs(t *testing.T) {
	logger, buf := captureLogger()
	router := setupRouterWithLogger(t, logger)

	defaultBuf := bytes.Buffer{}
	oldDefault := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&defaultBuf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(oldDefault)
	})

	rr := doRequest(router, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if !strings.Contains(buf.String(), "http request completed") {
		t.Fatalf("expected logs written through core logger, got %q", buf.String())
	}
	if defaultBuf.Len() != 0 {
		t.Fatalf("expected no log written to slog default, got %q", defaultBuf.String())
	}
}

func TestNewRouterCORS(t *testing.T) {
	core, err := stockgenius.Open()
	if err != nil {
		t.Fatalf("open core: %v", err)
	}
	router := NewRouter(core, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/simulations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/simulations", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin for unknown origin, got %q", got)
	}
}
