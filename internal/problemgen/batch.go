package problemgen

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FallbackAnswer is the ground truth of the synthetic fallback item.
const FallbackAnswer = "Answers vary"

// FallbackQuestion is the open-ended question used when no candidate survives.
func FallbackQuestion(subject string) string {
	return fmt.Sprintf("Name one key concept in %s.", subject)
}

// Batch is the outcome of filtering one round of candidates.
type Batch struct {
	Items []Item

	// Fallback reports that Items holds only the synthetic fallback item.
	Fallback bool
}

// BuildBatch turns raw candidates into a batch of 1 to cfg.BatchSize items,
// never more than MaxBatchSize.
// Candidates are trimmed, must pass the structural check and cfg.Validators,
// and are skipped when their question text exactly matches one in seen or
// one already accepted. Answer types are normalized. If nothing survives,
// the batch holds a single fallback item.
func BuildBatch(subject string, cands []Candidate, seen []string, cfg Config) Batch {
	limit := cfg.batchLimit()

	validators := append([]Validator{&StructuralValidator{}}, cfg.Validators...)

	taken := make(map[string]struct{}, len(seen)+limit)
	for _, q := range seen {
		taken[q] = struct{}{}
	}

	var items []Item
	for _, c := range cands {
		if len(items) == limit {
			break
		}

		c = normalize(c)
		if verr := runValidators(validators, c); verr != nil {
			slog.Debug("candidate discarded", "question", c.Question, "reason", verr.Error())
			continue
		}
		if _, dup := taken[c.Question]; dup {
			slog.Debug("candidate discarded", "question", c.Question, "reason", "duplicate")
			continue
		}

		taken[c.Question] = struct{}{}
		items = append(items, Item{
			ID:          uuid.NewString(),
			Question:    c.Question,
			Explanation: c.Explanation,
			Answer:      c.Answer,
			AnswerType:  NormalizeAnswerType(c.AnswerType, c.Answer),
		})
	}

	if len(items) == 0 {
		return Batch{
			Items: []Item{{
				ID:         uuid.NewString(),
				Question:   FallbackQuestion(subject),
				Answer:     FallbackAnswer,
				AnswerType: AnswerTypeText,
			}},
			Fallback: true,
		}
	}
	return Batch{Items: items}
}

// NormalizeAnswerType accepts "text" or "numeric" in any case. Anything else
// is inferred from the answer: numeric if it parses as a real number.
func NormalizeAnswerType(raw, answer string) AnswerType {
	switch AnswerType(strings.ToLower(strings.TrimSpace(raw))) {
	case AnswerTypeText:
		return AnswerTypeText
	case AnswerTypeNumeric:
		return AnswerTypeNumeric
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err == nil {
		return AnswerTypeNumeric
	}
	return AnswerTypeText
}

func normalize(c Candidate) Candidate {
	return Candidate{
		Question:    strings.TrimSpace(c.Question),
		Explanation: strings.TrimSpace(c.Explanation),
		Answer:      strings.TrimSpace(c.Answer),
		AnswerType:  strings.TrimSpace(c.AnswerType),
	}
}

func runValidators(vs []Validator, c Candidate) *ValidationError {
	for _, v := range vs {
		if verr := v.Validate(c); verr != nil {
			return verr
		}
	}
	return nil
}
