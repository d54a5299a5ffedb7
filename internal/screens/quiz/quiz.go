package quiz

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/problemgen"
	"github.com/abhisek/ladderquiz/internal/router"
	"github.com/abhisek/ladderquiz/internal/screen"
	"github.com/abhisek/ladderquiz/internal/screens/summary"
	"github.com/abhisek/ladderquiz/internal/session"
	"github.com/abhisek/ladderquiz/internal/ui/components"
	"github.com/abhisek/ladderquiz/internal/ui/layout"
	"github.com/abhisek/ladderquiz/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseGrading
	phaseFeedback
)

// sessionReadyMsg carries a session whose first batch has been generated.
type sessionReadyMsg struct {
	State session.State
}

// gradedMsg carries the outcome of one submission.
type gradedMsg struct {
	Turn session.Turn
	Err  error
}

// continuedMsg carries the session after the next batch was generated.
type continuedMsg struct {
	Continuation session.Continuation
}

// QuizScreen runs one session: question, answer, feedback, repeat.
// Engine calls run in commands so the UI stays responsive.
type QuizScreen struct {
	engine  *session.Engine
	ctx     context.Context
	id      string
	subject string
	level   ladder.Level

	phase    phase
	state    session.State
	input    components.TextInput
	turn     session.Turn
	lastQ    session.QuestionView
	errMsg   string
	loadNote string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New creates a QuizScreen. The session is created on Init.
func New(engine *session.Engine, subject string, level ladder.Level) *QuizScreen {
	id := uuid.NewString()
	return &QuizScreen{
		engine:   engine,
		ctx:      session.WithID(context.Background(), id),
		id:       id,
		subject:  subject,
		level:    level,
		loadNote: "Generating questions...",
	}
}

// ID returns the session id used for recorded events.
func (s *QuizScreen) ID() string {
	return s.id
}

// State returns the current session state.
func (s *QuizScreen) State() session.State {
	return s.state
}

func (s *QuizScreen) Init() tea.Cmd {
	engine, ctx, subject, level := s.engine, s.ctx, s.subject, s.level
	return func() tea.Msg {
		return sessionReadyMsg{State: engine.CreateSession(ctx, subject, level)}
	}
}

func (s *QuizScreen) Title() string {
	if s.state.Subject != "" {
		return s.state.Subject
	}
	return "Quiz"
}

func (s *QuizScreen) Status() layout.Status {
	lvl := s.state.Level
	if s.phase == phaseLoading && s.state.Subject == "" {
		lvl = s.level
	}
	return layout.Status{
		Level: lvl.String(),
		Score: fmt.Sprintf("%d pts", s.state.TotalScore),
	}
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAnswering:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	case phaseFeedback:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Quit"}}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionReadyMsg:
		s.state = msg.State
		return s, s.ask()

	case gradedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.phase = phaseFeedback
			return s, nil
		}
		s.turn = msg.Turn
		s.state = msg.Turn.State
		s.phase = phaseFeedback
		return s, nil

	case summary.ContinueMsg:
		s.phase = phaseLoading
		s.loadNote = "Generating the next batch..."
		engine, ctx, st := s.engine, s.ctx, s.state
		return s, func() tea.Msg {
			return continuedMsg{Continuation: engine.ContinueToNextBatch(ctx, st)}
		}

	case continuedMsg:
		s.state = msg.Continuation.State
		return s, s.ask()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch s.phase {
	case phaseAnswering:
		if msg.String() == "enter" {
			return s.submit()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case phaseFeedback:
		s.errMsg = ""
		if session.IsBatchComplete(s.state) {
			sum := summary.New(s.state, s.engine.Policy())
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: sum} }
		}
		return s, s.ask()
	}
	return s, nil
}

// ask shows the question under the cursor.
func (s *QuizScreen) ask() tea.Cmd {
	q, ok := session.CurrentQuestion(s.state)
	if !ok {
		s.phase = phaseFeedback
		return nil
	}
	s.lastQ = q
	s.phase = phaseAnswering
	s.input = components.NewTextInput("Type your answer...", 200)
	return s.input.Init()
}

func (s *QuizScreen) submit() (screen.Screen, tea.Cmd) {
	answer := s.input.Value()
	if answer == "" {
		return s, nil
	}
	s.phase = phaseGrading

	engine, ctx, st, qid := s.engine, s.ctx, s.state, s.lastQ.ID
	return s, func() tea.Msg {
		turn, err := engine.SubmitAndGrade(ctx, st, qid, answer)
		return gradedMsg{Turn: turn, Err: err}
	}
}

func (s *QuizScreen) View(width, height int) string {
	switch s.phase {
	case phaseLoading:
		return layout.Centered(width, theme.Dim, "\n\n"+s.loadNote)
	case phaseFeedback:
		return s.viewFeedback(width)
	}
	return s.viewQuestion(width)
}

func (s *QuizScreen) viewQuestion(width int) string {
	q := s.lastQ
	var b strings.Builder
	b.WriteString("\n")

	bar := components.ProgressBar{Label: "Batch", Done: q.Index, Total: q.Total, Width: min(width-8, 60)}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	qStyle := theme.Body.Bold(true).Width(min(width-8, 80))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, qStyle.Render(q.Question)))
	b.WriteString("\n\n")

	if q.AnswerType == problemgen.AnswerTypeNumeric {
		b.WriteString(layout.Centered(width, theme.Hint, "numeric answer"))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View()))

	if s.phase == phaseGrading {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(width, theme.Dim, "Grading..."))
	}
	return b.String()
}

func (s *QuizScreen) viewFeedback(width int) string {
	var b strings.Builder
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error), s.errMsg))
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(width, theme.Hint, "Press any key to continue..."))
		return b.String()
	}

	fb := s.turn.Feedback
	score := theme.ScoreStyle(float64(fb.Score)).Render(fmt.Sprintf("%d / 10", fb.Score))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, score))
	b.WriteString("\n\n")

	textWidth := min(width-8, 76)
	block := func(label, text string) {
		if text == "" {
			return
		}
		body := theme.Dim.Render(label) + "\n" + theme.Body.Width(textWidth).Render(text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
		b.WriteString("\n\n")
	}
	block("Why", fb.Reason)
	block("Correct answer", fb.CorrectAnswer)
	block("Explanation", fb.Explanation)

	hint := "Press any key for the next question..."
	if s.turn.BatchComplete {
		hint = "Press any key to see the batch summary..."
	}
	b.WriteString(layout.Centered(width, theme.Hint, hint))
	return b.String()
}
