package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ladderquiz/internal/grading"
	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/llm"
	"github.com/abhisek/ladderquiz/internal/problemgen"
	"github.com/abhisek/ladderquiz/internal/store"
)

func batchReply(prefix string, n int) llm.MockResponse {
	items := make([]map[string]string, n)
	for i, c := range numbered(prefix, n) {
		items[i] = map[string]string{
			"question":    c.Question,
			"explanation": c.Explanation,
			"answer":      c.Answer,
			"answer_type": "numeric",
		}
	}
	return llm.MockJSON(map[string]any{"items": items})
}

func verdictReply(score int, why string) llm.MockResponse {
	return llm.MockJSON(map[string]any{"score": score, "explanation": why})
}

// newLLMEngine wires the real producer and grader to two mock providers.
func newLLMEngine(gen, judge *llm.MockProvider) *Engine {
	return NewEngine(
		problemgen.New(gen, problemgen.DefaultConfig()),
		grading.NewLLMGrader(judge, grading.DefaultGraderConfig()),
		DefaultConfig(),
	)
}

func TestScenarioA_NewSessionFirstBatch(t *testing.T) {
	gen := llm.NewMockProvider(batchReply("Physics", 5))
	e := newLLMEngine(gen, llm.NewMockProvider())

	s := e.CreateSession(context.Background(), "Physics", ladder.HighSchool)
	checkInvariants(t, s)

	require.Len(t, s.Batch, 5)
	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, ladder.HighSchool, s.Level)
	assert.Len(t, s.SeenQuestions, 5)

	q, ok := e.CurrentQuestion(s)
	require.True(t, ok)
	assert.Equal(t, s.Batch[0].ID, q.ID)
	assert.Equal(t, "Physics question 1?", q.Question)

	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"answer"`)
	assert.NotContains(t, string(b), `"explanation"`)

	require.Equal(t, 1, gen.CallCount())
	assert.Contains(t, gen.Calls[0].Messages[0].Content, "High School Level")
}

func TestScenarioB_OutOfRangeScoreClamped(t *testing.T) {
	gen := llm.NewMockProvider(batchReply("Physics", 5))
	judge := llm.NewMockProvider(verdictReply(11, "ok"))
	e := newLLMEngine(gen, judge)
	ctx := context.Background()

	s := e.CreateSession(ctx, "Physics", ladder.HighSchool)
	q, _ := e.CurrentQuestion(s)

	turn, err := e.SubmitAndGrade(ctx, s, q.ID, "1")
	require.NoError(t, err)
	checkInvariants(t, turn.State)

	assert.Equal(t, 10, turn.Feedback.Score)
	assert.Equal(t, "ok", turn.Feedback.Reason)
	assert.Equal(t, "1", turn.Feedback.CorrectAnswer)
	assert.Equal(t, []int{10}, turn.State.BatchScores)
	assert.Equal(t, 1, turn.State.Cursor)
	assert.False(t, turn.BatchComplete)
	require.NotNil(t, turn.Next)
	assert.Equal(t, s.Batch[1].ID, turn.Next.ID)

	require.Equal(t, 1, judge.CallCount())
	prompt := judge.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "Ground truth answer: 1")
	assert.Contains(t, prompt, "Student answer: 1")
}

// answerAll submits one answer per remaining item and returns the final state.
func answerAll(t *testing.T, e *Engine, s State) State {
	t.Helper()
	ctx := context.Background()
	for !IsBatchComplete(s) {
		q, ok := e.CurrentQuestion(s)
		require.True(t, ok)
		turn, err := e.SubmitAndGrade(ctx, s, q.ID, "answer")
		require.NoError(t, err)
		checkInvariants(t, turn.State)
		s = turn.State
	}
	return s
}

func TestScenarioC_HighScoresPromote(t *testing.T) {
	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("C1", 5), numbered("C2", 5)}}
	g := &scoreGrader{scores: []int{9, 9, 9, 9, 9}}
	e := NewEngine(p, g, DefaultConfig())

	s := answerAll(t, e, e.CreateSession(context.Background(), "Chemistry", ladder.HighSchool))

	_, sum := e.StopAndSummarize(s)
	assert.Equal(t, BatchSummary{Count: 5, Total: 45, Avg: 9}, sum)

	c := e.ContinueToNextBatch(context.Background(), s)
	checkInvariants(t, c.State)
	assert.Equal(t, Promote, c.Decision)
	assert.Equal(t, ladder.Undergraduate, c.Level)
	assert.Equal(t, ladder.Undergraduate, c.State.Level)
	assert.Equal(t, 9.0, c.State.BatchAvg)
	require.NotNil(t, c.Next)
	assert.Equal(t, "C2 question 1?", c.Next.Question)
	assert.Equal(t, 5, c.State.QuestionCount)
	assert.Equal(t, 45, c.State.TotalScore)

	require.Len(t, p.requests, 2)
	assert.Equal(t, ladder.Undergraduate, p.requests[1].Level)
}

func TestScenarioD_LowScoresDemote(t *testing.T) {
	for _, start := range []ladder.Level{ladder.HighSchool, ladder.Elementary} {
		t.Run(start.String(), func(t *testing.T) {
			p := &stubProducer{batches: [][]problemgen.Candidate{numbered("D1", 5), numbered("D2", 5)}}
			g := &scoreGrader{scores: []int{4, 5, 6, 5, 4}}
			e := NewEngine(p, g, DefaultConfig())

			s := answerAll(t, e, e.CreateSession(context.Background(), "History", start))
			c := e.ContinueToNextBatch(context.Background(), s)

			assert.InDelta(t, 4.8, c.Summary.Avg, 1e-9)
			if start == ladder.Elementary {
				assert.Equal(t, Hold, c.Decision)
				assert.Equal(t, ladder.Elementary, c.Level)
			} else {
				assert.Equal(t, Demote, c.Decision)
				assert.Equal(t, ladder.MiddleSchool, c.Level)
			}
		})
	}
}

func TestScenarioE_ProducerFailureFallsBack(t *testing.T) {
	gen := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}})
	e := newLLMEngine(gen, llm.NewMockProvider())

	s := e.CreateSession(context.Background(), "Geology", ladder.Graduate)
	checkInvariants(t, s)

	require.Len(t, s.Batch, 1)
	it := s.Batch[0]
	assert.Equal(t, "Name one key concept in Geology.", it.Question)
	assert.Equal(t, problemgen.FallbackAnswer, it.Answer)
	assert.Equal(t, problemgen.AnswerTypeText, it.AnswerType)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, []string{it.Question}, s.SeenQuestions)
	assert.Equal(t, ladder.Graduate, s.Level)
}

func TestScenarioE_GarbageReplyFallsBack(t *testing.T) {
	gen := llm.NewMockProvider(llm.MockText("sorry, I can't help with that"))
	e := newLLMEngine(gen, llm.NewMockProvider())

	s := e.CreateSession(context.Background(), "Geology", ladder.HighSchool)
	require.Len(t, s.Batch, 1)
	assert.Equal(t, problemgen.FallbackAnswer, s.Batch[0].Answer)
}

func TestScenarioF_DigitScanVerdict(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"number in prose", "I think this is a 7 out of 10 roughly", 7},
		{"no digits", "hard to say really", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := llm.NewMockProvider(batchReply("Art", 5))
			judge := llm.NewMockProvider(llm.MockText(tt.reply))
			e := newLLMEngine(gen, judge)
			ctx := context.Background()

			s := e.CreateSession(ctx, "Art", ladder.HighSchool)
			q, _ := e.CurrentQuestion(s)
			turn, err := e.SubmitAndGrade(ctx, s, q.ID, "Monet")
			require.NoError(t, err)

			assert.Equal(t, tt.want, turn.Feedback.Score)
			assert.Equal(t, []int{tt.want}, turn.State.BatchScores)
		})
	}
}

func TestGraderFailureScoresZero(t *testing.T) {
	gen := llm.NewMockProvider(batchReply("Art", 5))
	judge := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	e := newLLMEngine(gen, judge)
	ctx := context.Background()

	s := e.CreateSession(ctx, "Art", ladder.HighSchool)
	q, _ := e.CurrentQuestion(s)
	turn, err := e.SubmitAndGrade(ctx, s, q.ID, "Monet")
	require.NoError(t, err)

	assert.Equal(t, 0, turn.Feedback.Score)
	assert.NotEmpty(t, turn.Feedback.Reason)
	assert.Equal(t, 1, turn.State.Cursor)
}

func TestSubmitAndGrade_Exhausted(t *testing.T) {
	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("X", 1)}}
	g := &scoreGrader{scores: []int{8}}
	e := NewEngine(p, g, DefaultConfig())

	s := answerAll(t, e, e.CreateSession(context.Background(), "Math", ladder.HighSchool))

	turn, err := e.SubmitAndGrade(context.Background(), s, "late", "too late")
	require.ErrorIs(t, err, ErrBatchExhausted)
	assert.True(t, turn.BatchComplete)
	assert.Nil(t, turn.Next)
	assert.Equal(t, s.Cursor, turn.State.Cursor)
	assert.Len(t, g.requests, 1)
}

func TestGradeLast_PairsByPosition(t *testing.T) {
	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("P", 3)}}
	g := &scoreGrader{scores: []int{5}}
	e := NewEngine(p, g, DefaultConfig())

	s := e.CreateSession(context.Background(), "Math", ladder.HighSchool)
	turn, err := e.SubmitAndGrade(context.Background(), s, s.Batch[2].ID, "3")
	require.NoError(t, err)

	require.Len(t, g.requests, 1)
	assert.Equal(t, "P question 1?", g.requests[0].Question)
	assert.Equal(t, 1, turn.State.Cursor)
}

func TestGradeLast_OutOfRange(t *testing.T) {
	g := &scoreGrader{scores: []int{5}}
	e := NewEngine(&stubProducer{}, g, DefaultConfig())

	s := State{Level: ladder.HighSchool, Batch: []problemgen.Item{{ID: "q1"}}}
	next, fb := e.GradeLast(context.Background(), s)
	assert.Equal(t, Feedback{}, fb)
	assert.Empty(t, next.BatchScores)
	assert.Empty(t, g.requests)
}

func TestGenerateBatch_ExclusionWindowAndSeenGrowth(t *testing.T) {
	var batches [][]problemgen.Candidate
	for _, prefix := range []string{"B1", "B2", "B3", "B4"} {
		batches = append(batches, numbered(prefix, 5))
	}
	p := &stubProducer{batches: batches}
	e := NewEngine(p, &scoreGrader{}, DefaultConfig())
	ctx := context.Background()

	s := e.CreateSession(ctx, "Biology", ladder.HighSchool)
	for range 3 {
		prev := len(s.SeenQuestions)
		s = e.GenerateBatch(ctx, s)
		checkInvariants(t, s)
		assert.Equal(t, prev+5, len(s.SeenQuestions))
		assert.Equal(t, 0, s.Cursor)
		assert.Empty(t, s.Responses)
		assert.Empty(t, s.BatchScores)
	}

	require.Len(t, p.requests, 4)
	assert.Empty(t, p.requests[0].Exclude)
	assert.Len(t, p.requests[1].Exclude, 5)
	assert.Len(t, p.requests[2].Exclude, 10)
	last := p.requests[3].Exclude
	require.Len(t, last, 12)
	assert.Equal(t, "B1 question 4?", last[0])
	assert.Equal(t, "B3 question 5?", last[11])
}

func TestGenerateBatch_SkipsSeenQuestions(t *testing.T) {
	repeat := append(numbered("R", 2), problemgen.Candidate{Question: "Fresh?", Answer: "yes"})
	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("R", 2), repeat}}
	e := NewEngine(p, &scoreGrader{}, DefaultConfig())
	ctx := context.Background()

	s := e.CreateSession(ctx, "Logic", ladder.HighSchool)
	s = e.GenerateBatch(ctx, s)

	require.Len(t, s.Batch, 1)
	assert.Equal(t, "Fresh?", s.Batch[0].Question)
	assert.Equal(t, []string{"R question 1?", "R question 2?", "Fresh?"}, s.SeenQuestions)
}

func TestGenerateBatch_DoesNotMutateInput(t *testing.T) {
	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("M1", 5), numbered("M2", 5)}}
	e := NewEngine(p, &scoreGrader{scores: []int{7}}, DefaultConfig())
	ctx := context.Background()

	s := e.CreateSession(ctx, "Music", ladder.HighSchool)
	q, _ := e.CurrentQuestion(s)
	turn, err := e.SubmitAndGrade(ctx, s, q.ID, "x")
	require.NoError(t, err)

	before := turn.State
	seen := append([]string(nil), before.SeenQuestions...)
	next := e.GenerateBatch(ctx, before)

	assert.Equal(t, 1, before.Cursor)
	assert.Equal(t, []int{7}, before.BatchScores)
	assert.Equal(t, seen, before.SeenQuestions)
	assert.Equal(t, 0, next.Cursor)
	assert.Len(t, next.SeenQuestions, 10)
}

func TestEngine_RecordsEvents(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("E1", 2), numbered("E2", 2)}}
	g := &scoreGrader{scores: []int{10, 9}}
	e := NewEngine(p, g, DefaultConfig(), WithEventRepo(st.EventRepo()))

	ctx := WithID(context.Background(), "sess-1")
	s := answerAll(t, e, e.CreateSession(ctx, "Astronomy", ladder.HighSchool))
	c := e.ContinueToNextBatch(ctx, s)
	require.Equal(t, Promote, c.Decision)

	history, err := st.EventRepo().LevelHistory(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ladder.HighSchool.String(), history[0].FromLevel)
	assert.Equal(t, ladder.Undergraduate.String(), history[0].ToLevel)
	assert.InDelta(t, 9.5, history[0].Average, 1e-9)
	assert.Equal(t, string(Promote), history[0].Decision)

	stats, err := st.EventRepo().SubjectStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "Astronomy", stats[0].Subject)
	assert.Equal(t, 1, stats[0].Sessions)
	assert.Equal(t, 2, stats[0].Answers)
	assert.Equal(t, 1, stats[0].Promotions)
}

func TestEngine_CancelledContextStillRecords(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("K", 1)}}
	e := NewEngine(p, &scoreGrader{}, DefaultConfig(), WithEventRepo(st.EventRepo()))

	ctx, cancel := context.WithCancel(WithID(context.Background(), "sess-2"))
	cancel()
	s := e.CreateSession(ctx, "Optics", ladder.HighSchool)
	require.Len(t, s.Batch, 1)

	stats, err := st.EventRepo().SubjectStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "Optics", stats[0].Subject)
}

func TestStopAndSummarize_PartialBatch(t *testing.T) {
	p := &stubProducer{batches: [][]problemgen.Candidate{numbered("S", 5)}}
	e := NewEngine(p, &scoreGrader{scores: []int{6, 8}}, DefaultConfig())
	ctx := context.Background()

	s := e.CreateSession(ctx, "Poetry", ladder.HighSchool)
	for range 2 {
		q, _ := e.CurrentQuestion(s)
		turn, err := e.SubmitAndGrade(ctx, s, q.ID, "a")
		require.NoError(t, err)
		s = turn.State
	}

	next, sum := e.StopAndSummarize(s)
	assert.Equal(t, BatchSummary{Count: 5, Total: 14, Avg: 7}, sum)
	assert.Equal(t, 7.0, next.BatchAvg)
	assert.Equal(t, ladder.HighSchool, next.Level)
	assert.Equal(t, 2, next.Cursor)
}
