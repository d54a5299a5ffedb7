package session

import (
	"testing"

	"github.com/abhisek/ladderquiz/internal/ladder"
)

func TestPolicyDecide(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name      string
		level     ladder.Level
		avg       float64
		wantLevel ladder.Level
		wantDec   Decision
	}{
		{"promote at threshold", ladder.HighSchool, 8.5, ladder.Undergraduate, Promote},
		{"promote perfect", ladder.HighSchool, 10, ladder.Undergraduate, Promote},
		{"hold at top", ladder.AdvancedGraduate, 10, ladder.AdvancedGraduate, Hold},
		{"hold just below promote", ladder.HighSchool, 8.49, ladder.HighSchool, Hold},
		{"hold at demote threshold", ladder.HighSchool, 6.5, ladder.HighSchool, Hold},
		{"demote below", ladder.HighSchool, 6.49, ladder.MiddleSchool, Demote},
		{"demote zero is one tier", ladder.Graduate, 0, ladder.AdvancedUndergraduate, Demote},
		{"hold at bottom", ladder.Elementary, 0, ladder.Elementary, Hold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dec := p.Decide(tt.level, tt.avg)
			if got != tt.wantLevel || dec != tt.wantDec {
				t.Errorf("Decide(%s, %v) = %s/%s, want %s/%s", tt.level, tt.avg, got, dec, tt.wantLevel, tt.wantDec)
			}
		})
	}
}

func TestDecideNextLevel_AtMostOneTier(t *testing.T) {
	p := DefaultPolicy()
	for _, lvl := range ladder.All() {
		for _, avg := range []float64{-100, 0, 4.8, 6.5, 7, 8.5, 9, 100} {
			next, _ := DecideNextLevel(State{Level: lvl, BatchAvg: avg}, p)
			diff := next.Level.Index() - lvl.Index()
			if diff < -1 || diff > 1 {
				t.Fatalf("%s with avg %v moved %d tiers", lvl, avg, diff)
			}
			if !next.Level.Valid() {
				t.Fatalf("%s with avg %v left the ladder", lvl, avg)
			}
		}
	}
}
