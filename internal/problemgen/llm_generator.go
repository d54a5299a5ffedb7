package problemgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/abhisek/ladderquiz/internal/llm"
)

// LLMProducer implements Producer using the LLM provider.
type LLMProducer struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMProducer with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMProducer {
	return &LLMProducer{provider: provider, config: cfg}
}

// batchOutput is the raw LLM response. Items are decoded loosely because
// models do not always honor the schema.
type batchOutput struct {
	Items []json.RawMessage `json:"items"`
}

// Produce asks the model for a batch and decodes whatever items it returns.
func (g *LLMProducer) Produce(ctx context.Context, req Request) ([]Candidate, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionBatch)

	count := g.config.batchLimit()

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req, count)},
		},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		// A reply that failed schema validation may still hold usable items.
		if raw, ok := llm.RawContent(err); ok {
			if cands, perr := ParseCandidates(raw); perr == nil && len(cands) > 0 {
				return cands, nil
			}
		}
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	cands, err := ParseCandidates(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return cands, nil
}

// ParseCandidates decodes {"items":[...]} into candidates. Items that are
// not objects are skipped, non-string scalar fields are stringified and
// missing fields become empty strings.
func ParseCandidates(raw []byte) ([]Candidate, error) {
	var out batchOutput
	if err := json.Unmarshal(llm.StripCodeFences(raw), &out); err != nil {
		return nil, err
	}

	cands := make([]Candidate, 0, len(out.Items))
	for _, item := range out.Items {
		var it map[string]any
		if err := json.Unmarshal(item, &it); err != nil || it == nil {
			continue
		}
		cands = append(cands, Candidate{
			Question:    stringField(it, "question"),
			Explanation: stringField(it, "explanation"),
			Answer:      stringField(it, "answer"),
			AnswerType:  stringField(it, "answer_type"),
		})
	}
	return cands, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
