package stockgenius

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// constSampler returns the mean of every requested distribution.
type constSampler struct {
	mu    sync.Mutex
	calls [][2]float64
}

func (s *constSampler) Sample(mean, stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, [2]float64{mean, stddev})
	return mean
}

type fixedSampler struct{ values []float64 }

func (s *fixedSampler) Sample(mean, stddev float64) float64 {
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

type stubLLM struct {
	mu      sync.Mutex
	result  ChatResult
	err     error
	block   bool
	prompts []ChatRequest
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Complete(ctx context.Context, req ChatRequest) (ChatResult, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, req)
	s.mu.Unlock()
	if s.block {
		<-ctx.Done()
		return ChatResult{}, ctx.Err()
	}
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCore(t *testing.T, opts Options) *Core {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.Market == nil {
		opts.Market = NewStaticFetcher(SampleFundamentals()...)
	}
	core, err := OpenWithOptions(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}

func newJournalCore(t *testing.T, opts Options) *Core {
	t.Helper()
	opts.JournalPath = filepath.Join(t.TempDir(), "journal", "advice.db")
	return newTestCore(t, opts)
}

func fixedClock(core *Core, start time.Time) {
	var mu sync.Mutex
	current := start
	core.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func ptr[T any](v T) *T { return &v }

func httpBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
