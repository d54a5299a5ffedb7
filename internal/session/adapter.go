package session

import "github.com/abhisek/ladderquiz/internal/ladder"

// Decision is the level adapter's verdict for one batch.
type Decision string

const (
	Promote Decision = "promote"
	Demote  Decision = "demote"
	Hold    Decision = "hold"
)

// Policy is the promotion/demotion band.
type Policy struct {
	// PromoteAt moves up one tier when the batch average is at least this.
	PromoteAt float64

	// DemoteBelow moves down one tier when the batch average is below this.
	DemoteBelow float64
}

// DefaultPolicy returns the 8.5 / 6.5 band.
func DefaultPolicy() Policy {
	return Policy{PromoteAt: 8.5, DemoteBelow: 6.5}
}

// Decide returns the next level for avg. It never moves more than one tier
// and never leaves the ladder.
func (p Policy) Decide(level ladder.Level, avg float64) (ladder.Level, Decision) {
	switch {
	case avg >= p.PromoteAt && level < ladder.Top:
		return level.Up(), Promote
	case avg < p.DemoteBelow && level > ladder.Bottom:
		return level.Down(), Demote
	default:
		return level, Hold
	}
}

// DecideNextLevel applies p to the state's BatchAvg.
func DecideNextLevel(s State, p Policy) (State, Decision) {
	next := s
	var d Decision
	next.Level, d = p.Decide(s.Level, s.BatchAvg)
	return next, d
}
