package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match (LLM events only)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// SessionStartedData records a new quiz session.
type SessionStartedData struct {
	SessionID string
	Subject   string
	Level     string
}

// BatchGeneratedData records a generated question batch.
type BatchGeneratedData struct {
	SessionID string
	Level     string
	ItemCount int
	Fallback  bool
}

// AnswerGradedData records one graded answer.
type AnswerGradedData struct {
	SessionID     string
	QuestionID    string
	Level         string
	Question      string
	CorrectAnswer string
	StudentAnswer string
	Score         int
	Reason        string
}

// LevelDecisionData records the level chosen after a batch.
type LevelDecisionData struct {
	SessionID string
	FromLevel string
	ToLevel   string
	Average   float64
	Decision  string // promote, demote or hold
}

// LevelDecision is a stored level decision.
type LevelDecision struct {
	Sequence  int64
	Timestamp time.Time
	LevelDecisionData
}

// SubjectStats summarizes all recorded play for one subject.
type SubjectStats struct {
	Subject    string
	Sessions   int
	Answers    int
	AvgScore   float64
	Promotions int
	Demotions  int
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendSessionStarted records the creation of a quiz session.
	AppendSessionStarted(ctx context.Context, data SessionStartedData) error

	// AppendBatchGenerated records a freshly generated batch.
	AppendBatchGenerated(ctx context.Context, data BatchGeneratedData) error

	// AppendAnswerGraded records a graded answer.
	AppendAnswerGraded(ctx context.Context, data AnswerGradedData) error

	// AppendLevelDecision records the level adapter's decision for a batch.
	AppendLevelDecision(ctx context.Context, data LevelDecisionData) error
}

// EventLog is an EventRepo that can also be read back.
type EventLog interface {
	EventRepo

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns the event with the given ID, or nil if none exists.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// LevelHistory returns a session's level decisions in order.
	LevelHistory(ctx context.Context, sessionID string) ([]LevelDecision, error)

	// SubjectStats aggregates sessions, answers and level moves per subject.
	SubjectStats(ctx context.Context) ([]SubjectStats, error)
}
