package setup

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/router"
	"github.com/abhisek/ladderquiz/internal/screen"
	"github.com/abhisek/ladderquiz/internal/screens/quiz"
	"github.com/abhisek/ladderquiz/internal/session"
	"github.com/abhisek/ladderquiz/internal/ui/components"
	"github.com/abhisek/ladderquiz/internal/ui/layout"
	"github.com/abhisek/ladderquiz/internal/ui/theme"
)

type step int

const (
	stepSubject step = iota
	stepLevel
)

// SetupScreen asks for a subject, then a starting level.
type SetupScreen struct {
	engine  *session.Engine
	step    step
	input   components.TextInput
	levels  components.Menu
	subject string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates a SetupScreen prefilled with subject and level.
func New(engine *session.Engine, subject string, level ladder.Level) *SetupScreen {
	s := &SetupScreen{
		engine: engine,
		input:  components.NewTextInput(session.DefaultSubject, 80),
	}
	if subject != "" {
		s.input.Model.SetValue(subject)
	}

	if !level.Valid() {
		level = ladder.Default
	}
	items := make([]components.MenuItem, 0, len(ladder.All()))
	for _, l := range ladder.All() {
		items = append(items, components.MenuItem{
			Label:  l.String(),
			Detail: l.Profile(),
			Action: s.start(l),
		})
	}
	s.levels = components.NewMenu(items, level.Index())
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *SetupScreen) Title() string {
	return "New Quiz"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.step == stepSubject {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Level"},
		{Key: "Enter", Description: "Start"},
		{Key: "Tab", Description: "Subject"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, isKey := msg.(tea.KeyPressMsg)

	switch s.step {
	case stepSubject:
		if isKey && kmsg.String() == "enter" {
			s.subject = s.input.Value()
			if s.subject == "" {
				s.subject = session.DefaultSubject
			}
			s.step = stepLevel
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case stepLevel:
		if isKey && kmsg.String() == "tab" {
			s.step = stepSubject
			return s, s.input.Init()
		}
		var cmd tea.Cmd
		s.levels, cmd = s.levels.Update(msg)
		return s, cmd
	}
	return s, nil
}

// Subject returns the confirmed subject, or "" before it is entered.
func (s *SetupScreen) Subject() string {
	return s.subject
}

func (s *SetupScreen) start(level ladder.Level) func() tea.Cmd {
	return func() tea.Cmd {
		q := quiz.New(s.engine, s.subject, level)
		return func() tea.Msg { return router.PushScreenMsg{Screen: q} }
	}
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Title, "Adaptive quiz"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Dim,
		"Batches of five. Average 8.5 or more moves you up a level, below 6.5 moves you down."))
	b.WriteString("\n\n")

	var body strings.Builder
	if s.step == stepSubject {
		body.WriteString(theme.Body.Bold(true).Render("Subject"))
		body.WriteString("\n\n")
		body.WriteString(s.input.View())
	} else {
		body.WriteString(theme.Body.Render("Subject: "))
		body.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(s.subject))
		body.WriteString("\n\n")
		body.WriteString(theme.Body.Bold(true).Render("Starting level"))
		body.WriteString("\n\n")
		body.WriteString(s.levels.View())
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Render(body.String())))
	return b.String()
}
