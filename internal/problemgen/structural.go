package problemgen

import "strings"

// StructuralValidator requires a question and a ground-truth answer.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c Candidate) *ValidationError {
	if strings.TrimSpace(c.Question) == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question is empty",
		}
	}
	if strings.TrimSpace(c.Answer) == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "answer is empty",
		}
	}
	return nil
}
