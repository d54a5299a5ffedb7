package session

import (
	"context"
	"log/slog"
	"slices"

	"github.com/abhisek/ladderquiz/internal/grading"
	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/problemgen"
	"github.com/abhisek/ladderquiz/internal/store"
)

// Config tunes an Engine.
type Config struct {
	Batch problemgen.Config

	// ExclusionWindow is how many recent questions the producer is asked to avoid.
	ExclusionWindow int

	Policy Policy
}

// DefaultConfig returns batches of 5, a 12-question exclusion window and the
// default promotion band.
func DefaultConfig() Config {
	return Config{
		Batch:           problemgen.DefaultConfig(),
		ExclusionWindow: 12,
		Policy:          DefaultPolicy(),
	}
}

// Feedback is returned after grading. The correct answer is safe to reveal
// at this point.
type Feedback struct {
	Score         int    `json:"score"`
	Reason        string `json:"reason"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Turn is the outcome of SubmitAndGrade.
type Turn struct {
	State         State
	Feedback      Feedback
	BatchComplete bool

	// Next is the following question, nil when the batch is complete.
	Next *QuestionView
}

// Continuation is the outcome of ContinueToNextBatch.
type Continuation struct {
	State    State
	Summary  BatchSummary
	Decision Decision
	Level    ladder.Level
	Next     *QuestionView
}

// Engine drives sessions through the question producer and grader.
// It holds no per-session data and is safe for concurrent use across
// sessions; callers serialize operations on any one session.
type Engine struct {
	producer problemgen.Producer
	grader   grading.Grader
	cfg      Config
	events   store.EventRepo
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventRepo records session, batch, answer and level events.
func WithEventRepo(repo store.EventRepo) Option {
	return func(e *Engine) { e.events = repo }
}

// NewEngine creates an Engine.
func NewEngine(producer problemgen.Producer, grader grading.Grader, cfg Config, opts ...Option) *Engine {
	e := &Engine{producer: producer, grader: grader, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the level policy applied between batches.
func (e *Engine) Policy() Policy {
	return e.cfg.Policy
}

// CreateSession starts a session at level and generates its first batch.
func (e *Engine) CreateSession(ctx context.Context, subject string, level ladder.Level) State {
	s := NewState(subject, level)
	e.record(ctx, "session", func(ctx context.Context, r store.EventRepo) error {
		return r.AppendSessionStarted(ctx, store.SessionStartedData{
			SessionID: IDFrom(ctx),
			Subject:   s.Subject,
			Level:     s.Level.String(),
		})
	})
	return e.GenerateBatch(ctx, s)
}

// CurrentQuestion returns the question under the cursor.
func (e *Engine) CurrentQuestion(s State) (QuestionView, bool) {
	return CurrentQuestion(s)
}

// GenerateBatch replaces the batch with a fresh one from the producer.
// Producer failures are logged and yield the fallback item; this never fails.
func (e *Engine) GenerateBatch(ctx context.Context, s State) State {
	req := problemgen.Request{
		Subject: s.Subject,
		Level:   s.Level,
		Exclude: s.recentSeen(e.cfg.ExclusionWindow),
	}

	cands, err := e.producer.Produce(ctx, req)
	if err != nil {
		slog.Warn("question producer failed",
			"subject", s.Subject,
			"level", s.Level.String(),
			"error", err,
		)
		cands = nil
	}

	b := problemgen.BuildBatch(s.Subject, cands, s.SeenQuestions, e.cfg.Batch)

	next := s
	next.Batch = b.Items
	next.Cursor = 0
	next.Responses = nil
	next.BatchScores = nil
	next.SeenQuestions = slices.Clip(s.SeenQuestions)
	for _, it := range b.Items {
		next.SeenQuestions = append(next.SeenQuestions, it.Question)
	}

	slog.Debug("batch generated",
		"subject", s.Subject,
		"level", s.Level.String(),
		"items", len(b.Items),
		"fallback", b.Fallback,
	)
	e.record(ctx, "batch", func(ctx context.Context, r store.EventRepo) error {
		return r.AppendBatchGenerated(ctx, store.BatchGeneratedData{
			SessionID: IDFrom(ctx),
			Level:     s.Level.String(),
			ItemCount: len(b.Items),
			Fallback:  b.Fallback,
		})
	})
	return next
}

// GradeLast scores the item just answered, batch[cursor-1], against the
// latest response for its id. Out of range, the state is returned as is
// with empty feedback.
func (e *Engine) GradeLast(ctx context.Context, s State) (State, Feedback) {
	it, ok := s.item(s.Cursor - 1)
	if !ok {
		return s, Feedback{}
	}

	answer := latestAnswer(s.Responses, it.ID)
	v := e.grader.Grade(ctx, grading.Request{
		Question:         it.Question,
		GroundTruth:      it.Answer,
		AnswerType:       it.AnswerType,
		ModelExplanation: it.Explanation,
		StudentAnswer:    answer,
	})
	score := grading.Clamp(v.Score)

	next := s
	next.BatchScores = append(slices.Clip(s.BatchScores), score)
	next.TotalScore = s.TotalScore + score

	e.record(ctx, "answer", func(ctx context.Context, r store.EventRepo) error {
		return r.AppendAnswerGraded(ctx, store.AnswerGradedData{
			SessionID:     IDFrom(ctx),
			QuestionID:    it.ID,
			Level:         s.Level.String(),
			Question:      it.Question,
			CorrectAnswer: it.Answer,
			StudentAnswer: answer,
			Score:         score,
			Reason:        v.Reason,
		})
	})

	return next, Feedback{
		Score:         score,
		Reason:        v.Reason,
		CorrectAnswer: it.Answer,
		Explanation:   it.Explanation,
	}
}

// SubmitAndGrade records an answer for the current question and grades it.
// On an exhausted batch it returns the unchanged state with ErrBatchExhausted.
func (e *Engine) SubmitAndGrade(ctx context.Context, s State, questionID, answer string) (Turn, error) {
	next, err := SubmitAnswer(s, questionID, answer)
	if err != nil {
		return Turn{State: s, BatchComplete: IsBatchComplete(s)}, err
	}

	next, fb := e.GradeLast(ctx, next)

	t := Turn{
		State:         next,
		Feedback:      fb,
		BatchComplete: IsBatchComplete(next),
	}
	if q, ok := CurrentQuestion(next); ok {
		t.Next = &q
	}
	return t, nil
}

// ContinueToNextBatch summarizes the current batch, adapts the level and
// generates the next batch.
func (e *Engine) ContinueToNextBatch(ctx context.Context, s State) Continuation {
	next, summary := SummarizeBatch(s)
	from := next.Level
	next, decision := DecideNextLevel(next, e.cfg.Policy)

	slog.Info("level decision",
		"subject", s.Subject,
		"from", from.String(),
		"to", next.Level.String(),
		"avg", summary.Avg,
		"decision", string(decision),
	)
	e.record(ctx, "level", func(ctx context.Context, r store.EventRepo) error {
		return r.AppendLevelDecision(ctx, store.LevelDecisionData{
			SessionID: IDFrom(ctx),
			FromLevel: from.String(),
			ToLevel:   next.Level.String(),
			Average:   next.BatchAvg,
			Decision:  string(decision),
		})
	})

	next = e.GenerateBatch(ctx, next)

	c := Continuation{
		State:    next,
		Summary:  summary,
		Decision: decision,
		Level:    next.Level,
	}
	if q, ok := CurrentQuestion(next); ok {
		c.Next = &q
	}
	return c
}

// StopAndSummarize summarizes the current batch without moving on.
func (e *Engine) StopAndSummarize(s State) (State, BatchSummary) {
	return SummarizeBatch(s)
}

// record appends an event if a repo is configured. Failures are logged only.
func (e *Engine) record(ctx context.Context, kind string, fn func(context.Context, store.EventRepo) error) {
	if e.events == nil {
		return
	}
	if err := fn(context.WithoutCancel(ctx), e.events); err != nil {
		slog.Warn("failed to record event", "kind", kind, "error", err)
	}
}
