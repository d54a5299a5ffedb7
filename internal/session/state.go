package session

import (
	"strings"

	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/problemgen"
)

// DefaultSubject is used when a session is created without a subject.
const DefaultSubject = "general science"

// Response is one submitted answer.
type Response struct {
	QuestionID string `json:"q_id"`
	Answer     string `json:"answer"`
}

// State is a quiz session. Every transition takes a State by value and
// returns a new one; slices are never appended to in place, so earlier
// states stay valid.
//
// Invariants: 0 <= Cursor <= len(Batch), len(BatchScores) <= Cursor and
// Level is on the ladder.
type State struct {
	Subject string       `json:"subject"`
	Level   ladder.Level `json:"level"`

	// Batch is the current group of at most five questions.
	Batch []problemgen.Item `json:"batch"`

	// Cursor indexes the next unanswered item in Batch.
	Cursor int `json:"cursor"`

	Responses   []Response `json:"responses"`
	BatchScores []int      `json:"batch_scores"`

	// SeenQuestions holds every question text issued in this session, oldest first.
	SeenQuestions []string `json:"seen_questions"`

	// BatchAvg is the full-precision average set by SummarizeBatch.
	BatchAvg float64 `json:"batch_avg"`

	// QuestionCount and TotalScore are lifetime counters across batches.
	QuestionCount int `json:"question_count"`
	TotalScore    int `json:"total_score"`
}

// NewState creates a session with an empty batch. An invalid level falls
// back to ladder.Default and a blank subject to DefaultSubject.
func NewState(subject string, level ladder.Level) State {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	if !level.Valid() {
		level = ladder.Default
	}
	return State{
		Subject: subject,
		Level:   level,
	}
}

// recentSeen returns up to n of the most recently seen questions, oldest
// first. A non-positive n excludes nothing.
func (s State) recentSeen(n int) []string {
	if n <= 0 {
		return nil
	}
	if len(s.SeenQuestions) <= n {
		return append([]string(nil), s.SeenQuestions...)
	}
	return append([]string(nil), s.SeenQuestions[len(s.SeenQuestions)-n:]...)
}

// item returns Batch[i] if i is in range.
func (s State) item(i int) (problemgen.Item, bool) {
	if i < 0 || i >= len(s.Batch) {
		return problemgen.Item{}, false
	}
	return s.Batch[i], true
}
