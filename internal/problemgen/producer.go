package problemgen

import "context"

// Producer proposes candidate questions for a subject and level.
type Producer interface {
	// Produce returns raw candidates. Callers must validate every field;
	// a producer may return fewer items than asked or malformed ones.
	Produce(ctx context.Context, req Request) ([]Candidate, error)
}
