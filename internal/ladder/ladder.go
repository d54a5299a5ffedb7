package ladder

import (
	"encoding"
	"errors"
	"fmt"
	"strings"
)

// Level is a difficulty tier on the ladder. The zero value is the bottom tier.
type Level int

const (
	Elementary Level = iota
	MiddleSchool
	HighSchool
	Undergraduate
	AdvancedUndergraduate
	Graduate
	AdvancedGraduate
)

// Default is the level a session starts at when none is requested.
const Default = HighSchool

// ErrUnknownLevel is returned by Parse for names that are not on the ladder.
var ErrUnknownLevel = errors.New("unknown level")

type tier struct {
	name    string
	profile string
}

var tiers = [...]tier{
	Elementary:            {"Elementary School Level", "Single-fact recall; everyday language; no calculations."},
	MiddleSchool:          {"Middle School Level", "1–2 step reasoning; simple numerics; basic units/sign awareness."},
	HighSchool:            {"High School Level", "Multi-step reasoning; algebraic manipulation; standard science vocabulary."},
	Undergraduate:         {"Undergraduate Level", "Conceptual + quantitative; occasional calculus; brief justification."},
	AdvancedUndergraduate: {"Advanced Undergraduate Level", "Multi-concept synthesis; approximations; careful units & error."},
	Graduate:              {"Graduate Level", "Rigorous definitions; nontrivial derivations; edge cases & assumptions."},
	AdvancedGraduate:      {"Advanced Graduate Level", "Research-style twists; novel combinations; concise formal arguments."},
}

// Bottom and Top bound the ladder.
const (
	Bottom = Elementary
	Top    = AdvancedGraduate
)

// All returns every level in ascending order.
func All() []Level {
	out := make([]Level, len(tiers))
	for i := range tiers {
		out[i] = Level(i)
	}
	return out
}

// Valid reports whether l is a member of the ladder.
func (l Level) Valid() bool {
	return l >= Bottom && l <= Top
}

// Index returns the zero-based position of l on the ladder.
func (l Level) Index() int { return int(l) }

// String returns the display name, e.g. "High School Level".
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return tiers[l].name
}

// Profile returns the natural-language difficulty guidance used in generation prompts.
func (l Level) Profile() string {
	if !l.Valid() {
		return ""
	}
	return tiers[l].profile
}

// Up returns the next tier, or l itself at the top.
func (l Level) Up() Level {
	if l >= Top {
		return Top
	}
	return l + 1
}

// Down returns the previous tier, or l itself at the bottom.
func (l Level) Down() Level {
	if l <= Bottom {
		return Bottom
	}
	return l - 1
}

// Parse resolves a level name. Matching is exact up to case and surrounding space.
func Parse(name string) (Level, error) {
	name = strings.TrimSpace(name)
	for i, t := range tiers {
		if strings.EqualFold(t.name, name) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

// MarshalText encodes the level by name so JSON payloads carry the display string.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level from its name.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

var (
	_ encoding.TextMarshaler   = Level(0)
	_ encoding.TextUnmarshaler = (*Level)(nil)
)
