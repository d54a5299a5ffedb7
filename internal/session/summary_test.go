package session

import (
	"testing"

	"github.com/abhisek/ladderquiz/internal/problemgen"
)

func batchOf(n int) []problemgen.Item {
	out := make([]problemgen.Item, n)
	for i := range out {
		out[i] = problemgen.Item{ID: string(rune('a' + i))}
	}
	return out
}

func TestIsBatchComplete(t *testing.T) {
	s := State{Batch: batchOf(2)}
	if IsBatchComplete(s) {
		t.Fatal("fresh batch is not complete")
	}
	s.Cursor = 2
	if !IsBatchComplete(s) {
		t.Fatal("cursor at end means complete")
	}
}

func TestSummarizeBatch(t *testing.T) {
	tests := []struct {
		name     string
		batch    int
		scores   []int
		wantSum  BatchSummary
		wantFull float64
	}{
		{"all scored", 5, []int{9, 9, 9, 9, 9}, BatchSummary{Count: 5, Total: 45, Avg: 9}, 9},
		{"partial uses recorded count", 5, []int{10, 5}, BatchSummary{Count: 5, Total: 15, Avg: 7.5}, 7.5},
		{"nothing scored", 5, nil, BatchSummary{Count: 5, Total: 0, Avg: 0}, 0},
		{"rounded view", 3, []int{10, 10, 9}, BatchSummary{Count: 3, Total: 29, Avg: 9.67}, 29.0 / 3},
		{"empty batch", 0, nil, BatchSummary{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Batch: batchOf(tt.batch), Cursor: len(tt.scores), BatchScores: tt.scores}
			next, sum := SummarizeBatch(s)
			if sum != tt.wantSum {
				t.Errorf("summary = %+v, want %+v", sum, tt.wantSum)
			}
			if next.BatchAvg != tt.wantFull {
				t.Errorf("BatchAvg = %v, want %v", next.BatchAvg, tt.wantFull)
			}
			if s.BatchAvg != 0 {
				t.Error("input state was mutated")
			}
		})
	}
}
