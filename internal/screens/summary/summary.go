package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/router"
	"github.com/abhisek/ladderquiz/internal/screen"
	"github.com/abhisek/ladderquiz/internal/session"
	"github.com/abhisek/ladderquiz/internal/ui/layout"
	"github.com/abhisek/ladderquiz/internal/ui/theme"
)

// ContinueMsg is delivered to the screen below once the summary is closed
// with "continue".
type ContinueMsg struct{}

// SummaryScreen shows a finished batch and where the next one would start.
type SummaryScreen struct {
	state    session.State
	summary  session.BatchSummary
	next     ladder.Level
	decision session.Decision
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New summarizes st and previews the level policy's decision.
func New(st session.State, policy session.Policy) *SummaryScreen {
	summarized, sum := session.SummarizeBatch(st)
	decided, d := session.DecideNextLevel(summarized, policy)
	return &SummaryScreen{
		state:    summarized,
		summary:  sum,
		next:     decided.Level,
		decision: d,
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Batch Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "C/Enter", Description: "Next batch"},
		{Key: "S", Description: "Stop"},
	}
}

func (s *SummaryScreen) Status() layout.Status {
	return layout.Status{
		Level: s.state.Level.String(),
		Score: fmt.Sprintf("%d pts", s.state.TotalScore),
	}
}

// Summary returns the batch summary shown.
func (s *SummaryScreen) Summary() session.BatchSummary {
	return s.summary
}

// NextLevel returns the level the next batch will use.
func (s *SummaryScreen) NextLevel() (ladder.Level, session.Decision) {
	return s.next, s.decision
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "c", "C", "enter":
		return s, tea.Sequence(
			func() tea.Msg { return router.PopScreenMsg{} },
			func() tea.Msg { return ContinueMsg{} },
		)
	case "s", "S", "q":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Title, "Batch complete"))
	b.WriteString("\n\n")

	avg := theme.ScoreStyle(s.summary.Avg).Render(fmt.Sprintf("%.2f", s.summary.Avg))
	b.WriteString(layout.Centered(width, theme.Body,
		fmt.Sprintf("Questions: %d    Total: %d    Average: %s", s.summary.Count, s.summary.Total, avg)))
	b.WriteString("\n\n")

	var move string
	switch s.decision {
	case session.Promote:
		move = lipgloss.NewStyle().Foreground(theme.Success).Bold(true).
			Render(fmt.Sprintf("Moving up to %s", s.next))
	case session.Demote:
		move = lipgloss.NewStyle().Foreground(theme.Error).Bold(true).
			Render(fmt.Sprintf("Moving down to %s", s.next))
	default:
		move = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render(fmt.Sprintf("Staying at %s", s.next))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, move))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Hint, s.next.Profile()))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(width, theme.Dim,
		fmt.Sprintf("Session so far: %d answered, %d points", s.state.QuestionCount, s.state.TotalScore)))
	return b.String()
}
