package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var verdictTestSchema = &Schema{
	Name: "reply-test-verdict",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":       map[string]any{"type": "integer"},
			"explanation": map[string]any{"type": "string"},
		},
		"required": []any{"score", "explanation"},
	},
}

func TestFinish(t *testing.T) {
	t.Run("valid reply", func(t *testing.T) {
		resp, err := finish(Request{Schema: verdictTestSchema}, reply{
			content: json.RawMessage(`{"score":7,"explanation":"Mostly right."}`),
			stop:    StopEnd,
			model:   "m",
			usage:   Usage{InputTokens: 40, OutputTokens: 12},
		})
		require.NoError(t, err)
		assert.Equal(t, StopEnd, resp.StopReason)
		assert.Equal(t, 52, resp.Usage.TotalTokens)
		assert.Equal(t, "m", resp.Model)
	})

	t.Run("truncated reply keeps content", func(t *testing.T) {
		_, err := finish(Request{Schema: verdictTestSchema}, reply{
			content: json.RawMessage(`{"score":7,"expl`),
			stop:    StopMaxTokens,
		})
		var maxTok *ErrMaxTokensExceeded
		require.True(t, errors.As(err, &maxTok))
		raw, ok := RawContent(err)
		require.True(t, ok)
		assert.Equal(t, `{"score":7,"expl`, string(raw))
	})

	t.Run("schema mismatch", func(t *testing.T) {
		_, err := finish(Request{Schema: verdictTestSchema}, reply{
			content: json.RawMessage(`{"score":"eight"}`),
			stop:    StopEnd,
		})
		var inv *ErrInvalidResponse
		require.True(t, errors.As(err, &inv))
		assert.JSONEq(t, `{"score":"eight"}`, string(inv.Content))
	})

	t.Run("no schema passes text through", func(t *testing.T) {
		resp, err := finish(Request{}, reply{content: json.RawMessage("Score: 6"), stop: StopEnd})
		require.NoError(t, err)
		assert.Equal(t, "Score: 6", string(resp.Content))
	})
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("boom")

	var rl *ErrRateLimit
	assert.True(t, errors.As(classifyStatus(http.StatusTooManyRequests, cause), &rl))

	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusRequestTimeout} {
		var un *ErrProviderUnavailable
		err := classifyStatus(status, cause)
		assert.True(t, errors.As(err, &un), "status %d", status)
		assert.ErrorIs(t, err, cause)
	}

	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		var rej *ErrRequestRejected
		err := classifyStatus(status, cause)
		require.True(t, errors.As(err, &rej), "status %d", status)
		assert.Equal(t, status, rej.StatusCode)
		assert.ErrorIs(t, err, cause)
	}
}
