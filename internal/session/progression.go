package session

import (
	"errors"
	"slices"

	"github.com/abhisek/ladderquiz/internal/problemgen"
)

// ErrBatchExhausted is returned when an answer is submitted after the last
// question of the batch.
var ErrBatchExhausted = errors.New("batch exhausted")

// QuestionView is what a learner may see before answering. It never carries
// the ground truth or the explanation.
type QuestionView struct {
	Index      int                   `json:"index"`
	Total      int                   `json:"total"`
	ID         string                `json:"q_id"`
	Question   string                `json:"question"`
	AnswerType problemgen.AnswerType `json:"answer_type"`
}

// CurrentQuestion returns the item under the cursor, or false once the
// batch is exhausted.
func CurrentQuestion(s State) (QuestionView, bool) {
	it, ok := s.item(s.Cursor)
	if !ok {
		return QuestionView{}, false
	}
	return QuestionView{
		Index:      s.Cursor,
		Total:      len(s.Batch),
		ID:         it.ID,
		Question:   it.Question,
		AnswerType: it.AnswerType,
	}, true
}

// SubmitAnswer records an answer and advances the cursor by one. The
// question id is stored as given; grading pairs by position. On an
// exhausted batch the state is returned unchanged with ErrBatchExhausted.
func SubmitAnswer(s State, questionID, answer string) (State, error) {
	if s.Cursor >= len(s.Batch) {
		return s, ErrBatchExhausted
	}

	next := s
	next.Responses = append(slices.Clip(s.Responses), Response{QuestionID: questionID, Answer: answer})
	next.Cursor = s.Cursor + 1
	next.QuestionCount = s.QuestionCount + 1
	return next, nil
}

// latestAnswer finds the most recent response for id, or "".
func latestAnswer(responses []Response, id string) string {
	for i := len(responses) - 1; i >= 0; i-- {
		if responses[i].QuestionID == id {
			return responses[i].Answer
		}
	}
	return ""
}
