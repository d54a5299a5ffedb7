package problemgen

import "fmt"

// Validator checks a normalized candidate before it is accepted.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator (for error messages
	// and logging), e.g. "structural".
	Name() string

	// Validate returns nil if the candidate passes.
	Validate(c Candidate) *ValidationError
}

// ValidationError describes why a candidate was discarded.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
