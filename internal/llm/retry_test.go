package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var (
	errDown     = &ErrProviderUnavailable{Err: errors.New("down")}
	errBadJSON  = &ErrInvalidResponse{Content: []byte("Score: eight"), Err: errors.New("invalid JSON")}
	errTooLong  = &ErrMaxTokensExceeded{Content: []byte(`{"items":[`)}
	errThrottle = &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}
	errBadKey   = &ErrRequestRejected{StatusCode: 401, Err: errors.New("invalid api key")}
)

func TestRetry(t *testing.T) {
	ok := MockJSON(map[string]any{"score": 8, "explanation": "fine"})
	fail := func(err error) MockResponse { return MockResponse{Err: err} }

	tests := []struct {
		name      string
		cfg       RetryConfig
		responses []MockResponse
		wantErr   error
		wantCalls int
	}{
		{"first attempt", fastRetry(), []MockResponse{ok}, nil, 1},
		{"unavailable then ok", fastRetry(), []MockResponse{fail(errDown), ok}, nil, 2},
		{"rate limited then ok", fastRetry(), []MockResponse{fail(errThrottle), ok}, nil, 2},
		{"gives up after max attempts", fastRetry(), []MockResponse{fail(errDown), fail(errDown), fail(errDown), ok}, errDown, 3},
		{"truncation is final", fastRetry(), []MockResponse{fail(errTooLong), ok}, errTooLong, 1},
		{"rejected request is final", fastRetry(), []MockResponse{fail(errBadKey), ok}, errBadKey, 1},
		{"bad format retried once", fastRetry(), []MockResponse{fail(errBadJSON), fail(errBadJSON), ok}, errBadJSON, 2},
		{"bad format then ok", fastRetry(), []MockResponse{fail(errBadJSON), ok}, nil, 2},
		{"single attempt", RetryConfig{MaxAttempts: 1}, []MockResponse{fail(errDown), ok}, errDown, 1},
		{"zero attempts means one", RetryConfig{}, []MockResponse{fail(errDown), ok}, errDown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			resp, err := WithRetry(mock, tt.cfg).Generate(context.Background(), Request{})
			assert.Equal(t, tt.wantCalls, mock.CallCount())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, `{"score":8,"explanation":"fine"}`, string(resp.Content))
		})
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: errDown}, MockResponse{Err: errDown})
	cfg := fastRetry()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_WaitIsCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}
	for attempt := 1; attempt <= 6; attempt++ {
		w := r.wait(attempt, errDown)
		assert.LessOrEqual(t, w, 360*time.Millisecond, "attempt %d", attempt)
		assert.GreaterOrEqual(t, w, 80*time.Millisecond, "attempt %d", attempt)
	}
	assert.Equal(t, time.Millisecond, r.wait(1, errThrottle))
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), fastRetry()).ModelID())
}
