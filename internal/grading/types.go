package grading

import (
	"context"

	"github.com/abhisek/ladderquiz/internal/problemgen"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 10
)

// Request is everything the grader sees about one answer.
type Request struct {
	Question         string
	GroundTruth      string
	AnswerType       problemgen.AnswerType
	ModelExplanation string
	StudentAnswer    string
}

// Source records how a verdict's score was obtained.
type Source string

const (
	// SourceStructured means the grader returned a usable {score, explanation} object.
	SourceStructured Source = "structured"

	// SourceDigitScan means the score was the first 1-2 digit number in free text.
	SourceDigitScan Source = "digit-scan"

	// SourceNone means no score could be found and 0 was used.
	SourceNone Source = "none"

	// SourceError means the grader could not be reached.
	SourceError Source = "error"
)

// Verdict is a clamped score with its rationale.
type Verdict struct {
	Score  int
	Reason string
	Source Source
}

// Grader scores a single answer. Implementations never fail: collaborator
// errors degrade to a zero score with whatever rationale is available.
type Grader interface {
	Grade(ctx context.Context, req Request) Verdict
}
