package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/abhisek/ladderquiz/internal/grading"
	"github.com/abhisek/ladderquiz/internal/problemgen"
)

// stubProducer returns scripted candidate lists in order, then errors.
type stubProducer struct {
	mu       sync.Mutex
	batches  [][]problemgen.Candidate
	err      error
	requests []problemgen.Request
}

func (p *stubProducer) Produce(_ context.Context, req problemgen.Request) ([]problemgen.Candidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.batches) == 0 {
		return nil, fmt.Errorf("no scripted batch")
	}
	b := p.batches[0]
	p.batches = p.batches[1:]
	return b, nil
}

// numbered builds n distinct candidates whose questions start with prefix.
func numbered(prefix string, n int) []problemgen.Candidate {
	out := make([]problemgen.Candidate, n)
	for i := range out {
		out[i] = problemgen.Candidate{
			Question:    fmt.Sprintf("%s question %d?", prefix, i+1),
			Explanation: fmt.Sprintf("Because %d.", i+1),
			Answer:      fmt.Sprintf("%d", i+1),
		}
	}
	return out
}

// scoreGrader returns the scripted scores in order, then 0.
type scoreGrader struct {
	mu       sync.Mutex
	scores   []int
	requests []grading.Request
}

func (g *scoreGrader) Grade(_ context.Context, req grading.Request) grading.Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if len(g.scores) == 0 {
		return grading.Verdict{Source: grading.SourceNone}
	}
	s := g.scores[0]
	g.scores = g.scores[1:]
	return grading.Verdict{Score: s, Reason: fmt.Sprintf("scored %d", s), Source: grading.SourceStructured}
}

func checkInvariants(t testing.TB, s State) {
	t.Helper()
	if s.Cursor < 0 || s.Cursor > len(s.Batch) {
		t.Fatalf("cursor %d outside [0, %d]", s.Cursor, len(s.Batch))
	}
	if len(s.BatchScores) > s.Cursor {
		t.Fatalf("%d scores for cursor %d", len(s.BatchScores), s.Cursor)
	}
	if !s.Level.Valid() {
		t.Fatalf("invalid level %d", s.Level)
	}
}
