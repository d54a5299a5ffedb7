package llm

import (
	"encoding/json"
	"net/http"
)

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// reply is what an adapter extracted from a vendor response before the
// shared checks run.
type reply struct {
	content json.RawMessage
	stop    string
	usage   Usage
	model   string
}

// finish turns a vendor reply into a Response. Truncated output and output
// that fails req.Schema come back as errors carrying the raw content.
func finish(req Request, r reply) (*Response, error) {
	if r.stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: r.content}
	}
	if err := validateResponse(req.Schema, r.content); err != nil {
		return nil, err
	}
	if r.usage.TotalTokens == 0 {
		r.usage.TotalTokens = r.usage.InputTokens + r.usage.OutputTokens
	}
	return &Response{
		Content:    r.content,
		Usage:      r.usage,
		Model:      r.model,
		StopReason: r.stop,
	}, nil
}

// classifyStatus maps an HTTP status from a vendor error onto the typed
// errors the retry layer understands. Client errors other than 429 and 408
// are rejections; anything else is treated as the provider being
// unavailable.
func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case status == http.StatusRequestTimeout:
		return &ErrProviderUnavailable{Err: err}
	case status >= 400 && status < 500:
		return &ErrRequestRejected{StatusCode: status, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a friendly model name to a provider model ID.
// Unknown names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
