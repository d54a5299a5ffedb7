package grading

import (
	"bytes"
	"context"
	"log/slog"
	"text/template"

	"github.com/abhisek/ladderquiz/internal/llm"
)

// GraderConfig holds configuration for the LLM grader.
type GraderConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultGraderConfig returns sensible defaults.
func DefaultGraderConfig() GraderConfig {
	return GraderConfig{
		MaxTokens:   256,
		Temperature: 0,
	}
}

// LLMGrader scores answers with an LLM judge.
type LLMGrader struct {
	provider llm.Provider
	cfg      GraderConfig
}

// NewLLMGrader creates an LLM-backed grader.
func NewLLMGrader(provider llm.Provider, cfg GraderConfig) *LLMGrader {
	return &LLMGrader{provider: provider, cfg: cfg}
}

// Grade asks the judge for a score. Replies that fail schema validation are
// still parsed from their raw text; transport failures score 0.
func (g *LLMGrader) Grade(ctx context.Context, req Request) Verdict {
	ctx = llm.WithPurpose(ctx, llm.PurposeGrading)

	userMsg, err := buildGradingMessage(req)
	if err != nil {
		slog.Error("build grading prompt", "error", err)
		return Verdict{Score: MinScore, Reason: "grading unavailable", Source: SourceError}
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: gradingSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      VerdictSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		if raw, ok := llm.RawContent(err); ok {
			slog.Debug("grader reply failed validation, parsing raw text", "error", err)
			return ParseVerdict(raw)
		}
		slog.Warn("grader call failed", "error", err)
		return Verdict{Score: MinScore, Reason: "Could not grade this answer: " + err.Error(), Source: SourceError}
	}

	return ParseVerdict(resp.Content)
}

const gradingSystemPrompt = `You are a fair grader focused on conceptual correctness.

Instructions:
- Judge the student's answer against the ground truth answer.
- Consider synonyms, paraphrases, and numeric/text equivalence (e.g. "+1" vs "positive").
- Score from 0 to 10 (0 = blank or off-topic, 10 = perfect).
- Keep the explanation to one or two sentences.`

var gradingUserTemplate = template.Must(template.New("grading").Parse(`Question: {{.Question}}
Ground truth answer: {{.GroundTruth}}
Answer type: {{.AnswerType}}
Model explanation: {{if .ModelExplanation}}{{.ModelExplanation}}{{else}}(none){{end}}
Student answer: {{if .StudentAnswer}}{{.StudentAnswer}}{{else}}(blank){{end}}`))

func buildGradingMessage(req Request) (string, error) {
	var buf bytes.Buffer
	if err := gradingUserTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
