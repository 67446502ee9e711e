package stockgenius

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type netTimeout struct{}

func (netTimeout) Error() string   { return "i/o timeout" }
func (netTimeout) Timeout() bool   { return true }
func (netTimeout) Temporary() bool { return true }

var _ net.Error = netTimeout{}

func TestErrorFormattingAndUnwrap(t *testing.T) {
	base := errors.New("disk full")
	err := WrapError(ErrCodeDatabase, "record advice", base)

	assert.Equal(t, "DATABASE_ERROR: record advice: disk full", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "INVALID_INPUT: bad", NewError(ErrCodeInvalidInput, "bad").Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrCodeTimeout, CodeOf(fmt.Errorf("outer: %w", NewError(ErrCodeTimeout, "slow"))))
	assert.True(t, IsErrorCode(fmt.Errorf("x: %w", invalidInputf("n=%d", 3)), ErrCodeInvalidInput))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrCodeInvalidInput))
}

func TestUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"plain", errors.New("connection refused"), ErrCodeUpstreamUnavailable},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"net timeout", netTimeout{}, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeUpstreamUnavailable},
		{"already timeout", NewError(ErrCodeTimeout, "inner"), ErrCodeTimeout},
		{"invalid input collapses", invalidInputf("bad ticker"), ErrCodeUpstreamUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := upstreamError("fetch failed", tc.err)
			assert.Equal(t, tc.want, got.Code)
			assert.Equal(t, "fetch failed", got.Message)
			assert.ErrorIs(t, got, tc.err)
		})
	}
}
