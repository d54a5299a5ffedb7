package problemgen

import "github.com/abhisek/ladderquiz/internal/ladder"

// Item is an accepted question in a batch. It is immutable once built.
type Item struct {
	// ID is a fresh UUID assigned when the item is accepted.
	ID string `json:"q_id"`

	Question string `json:"question"`

	// Explanation supports the answer; it may be empty.
	Explanation string `json:"explanation"`

	// Answer is the ground truth. It must not be shown before grading.
	Answer string `json:"answer"`

	AnswerType AnswerType `json:"answer_type"`
}

// AnswerType describes how the ground truth should be compared.
type AnswerType string

const (
	AnswerTypeText    AnswerType = "text"    // e.g. "mitochondria"
	AnswerTypeNumeric AnswerType = "numeric" // e.g. "9.81", "-3"
)

// Candidate is an unvalidated question as the producer returned it.
// Every field is untrusted.
type Candidate struct {
	Question    string
	Explanation string
	Answer      string
	AnswerType  string
}

// Request holds everything a producer needs to propose a batch.
type Request struct {
	Subject string
	Level   ladder.Level

	// Exclude lists the most recently seen question texts, oldest first.
	Exclude []string
}
