package session

import "math"

// BatchSummary reports a finished (or abandoned) batch. Avg is rounded to
// two decimals; the state keeps the full-precision value.
type BatchSummary struct {
	Count int     `json:"count"`
	Total int     `json:"total"`
	Avg   float64 `json:"avg"`
}

// IsBatchComplete reports whether every item in the batch has been answered.
func IsBatchComplete(s State) bool {
	return s.Cursor >= len(s.Batch)
}

// SummarizeBatch averages the batch scores. The divisor is the batch size
// when every item was scored, otherwise the number of scores recorded
// (at least 1 either way).
func SummarizeBatch(s State) (State, BatchSummary) {
	count := len(s.Batch)

	total := 0
	for _, sc := range s.BatchScores {
		total += sc
	}

	denom := count
	if len(s.BatchScores) != count {
		denom = len(s.BatchScores)
	}
	denom = max(1, denom)
	avg := float64(total) / float64(denom)

	next := s
	next.BatchAvg = avg
	return next, BatchSummary{
		Count: count,
		Total: total,
		Avg:   math.Round(avg*100) / 100,
	}
}
