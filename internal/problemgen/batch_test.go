package problemgen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func fiveCandidates() []Candidate {
	return []Candidate{
		{Question: "What organelle produces ATP?", Answer: "Mitochondria", AnswerType: "text", Explanation: "Cellular respiration."},
		{Question: "How many chromosomes do human somatic cells have?", Answer: "46", AnswerType: "numeric"},
		{Question: "What is the pH of pure water at 25C?", Answer: "7"},
		{Question: "Which molecule carries genetic code?", Answer: "DNA", AnswerType: "TEXT"},
		{Question: "What is the charge of an electron in elementary charges?", Answer: "-1", AnswerType: "Numeric"},
	}
}

func TestBuildBatch_AcceptsValidItems(t *testing.T) {
	b := BuildBatch("Biology", fiveCandidates(), nil, DefaultConfig())

	if b.Fallback {
		t.Fatal("did not expect fallback")
	}
	if len(b.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(b.Items))
	}

	ids := make(map[string]bool)
	for _, it := range b.Items {
		if _, err := uuid.Parse(it.ID); err != nil {
			t.Errorf("item id %q is not a UUID: %v", it.ID, err)
		}
		if ids[it.ID] {
			t.Errorf("duplicate id %q", it.ID)
		}
		ids[it.ID] = true
	}

	wantTypes := []AnswerType{AnswerTypeText, AnswerTypeNumeric, AnswerTypeNumeric, AnswerTypeText, AnswerTypeNumeric}
	for i, want := range wantTypes {
		if b.Items[i].AnswerType != want {
			t.Errorf("item %d answer type = %q, want %q", i, b.Items[i].AnswerType, want)
		}
	}
	if b.Items[0].Explanation != "Cellular respiration." {
		t.Errorf("explanation not carried: %q", b.Items[0].Explanation)
	}
}

func TestBuildBatch_CapsAtBatchSize(t *testing.T) {
	var cands []Candidate
	for i := range 8 {
		cands = append(cands, Candidate{Question: fmt.Sprintf("Q%d?", i), Answer: "a"})
	}

	b := BuildBatch("History", cands, nil, DefaultConfig())
	if len(b.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(b.Items))
	}
	if b.Items[4].Question != "Q4?" {
		t.Fatalf("expected first five in order, last = %q", b.Items[4].Question)
	}
}

func TestBuildBatch_OversizedConfigStillCapsAtMax(t *testing.T) {
	var cands []Candidate
	for i := range 8 {
		cands = append(cands, Candidate{Question: fmt.Sprintf("Q%d?", i), Answer: "a"})
	}

	for _, size := range []int{-1, 0, 8} {
		b := BuildBatch("History", cands, nil, Config{BatchSize: size})
		if len(b.Items) != MaxBatchSize {
			t.Errorf("BatchSize %d: expected %d items, got %d", size, MaxBatchSize, len(b.Items))
		}
	}
}

func TestBuildBatch_DiscardsInvalid(t *testing.T) {
	cands := []Candidate{
		{Question: "   ", Answer: "x"},
		{Question: "No answer?", Answer: "  "},
		{Question: "  Padded?  ", Answer: "  yes  ", Explanation: " because "},
	}

	b := BuildBatch("Logic", cands, nil, DefaultConfig())
	if len(b.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(b.Items))
	}
	it := b.Items[0]
	if it.Question != "Padded?" || it.Answer != "yes" || it.Explanation != "because" {
		t.Fatalf("expected trimmed fields, got %+v", it)
	}
}

func TestBuildBatch_SkipsDuplicates(t *testing.T) {
	seen := []string{"What is H2O?"}
	cands := []Candidate{
		{Question: "What is H2O?", Answer: "water"},
		{Question: "What is NaCl?", Answer: "salt"},
		{Question: "What is NaCl?", Answer: "table salt"},
		{Question: "what is nacl?", Answer: "salt"},
	}

	b := BuildBatch("Chemistry", cands, seen, DefaultConfig())
	if len(b.Items) != 2 {
		t.Fatalf("expected 2 items (exact-match dedup only), got %d", len(b.Items))
	}
	if b.Items[0].Question != "What is NaCl?" || b.Items[0].Answer != "salt" {
		t.Fatalf("expected first NaCl item to win, got %+v", b.Items[0])
	}
	if b.Items[1].Question != "what is nacl?" {
		t.Fatalf("case variants are distinct questions, got %+v", b.Items[1])
	}
}

func TestBuildBatch_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		cands []Candidate
		seen  []string
	}{
		{"no candidates", nil, nil},
		{"all invalid", []Candidate{{Question: "", Answer: ""}}, nil},
		{"all seen", []Candidate{{Question: "Old?", Answer: "a"}}, []string{"Old?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BuildBatch("Physics", tt.cands, tt.seen, DefaultConfig())
			if !b.Fallback {
				t.Fatal("expected fallback")
			}
			if len(b.Items) != 1 {
				t.Fatalf("expected exactly 1 item, got %d", len(b.Items))
			}
			it := b.Items[0]
			if it.Question != "Name one key concept in Physics." {
				t.Errorf("question = %q", it.Question)
			}
			if it.Answer != FallbackAnswer || it.AnswerType != AnswerTypeText {
				t.Errorf("unexpected fallback item %+v", it)
			}
			if it.ID == "" {
				t.Error("fallback item needs an id")
			}
		})
	}
}

type bannedWordValidator struct{ word string }

func (v *bannedWordValidator) Name() string { return "banned-word" }

func (v *bannedWordValidator) Validate(c Candidate) *ValidationError {
	if strings.Contains(strings.ToLower(c.Question), v.word) {
		return &ValidationError{Validator: v.Name(), Message: "contains " + v.word}
	}
	return nil
}

func TestBuildBatch_CustomValidators(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validators = []Validator{&bannedWordValidator{word: "trick"}}

	b := BuildBatch("Math", []Candidate{
		{Question: "A trick question?", Answer: "no"},
		{Question: "A fair question?", Answer: "yes"},
	}, nil, cfg)

	if len(b.Items) != 1 || b.Items[0].Question != "A fair question?" {
		t.Fatalf("expected only the fair question, got %+v", b.Items)
	}
}

func TestNormalizeAnswerType(t *testing.T) {
	tests := []struct {
		raw, answer string
		want        AnswerType
	}{
		{"text", "42", AnswerTypeText},
		{"NUMERIC", "forty-two", AnswerTypeNumeric},
		{" Text ", "x", AnswerTypeText},
		{"", "42", AnswerTypeNumeric},
		{"integer", "-3.5", AnswerTypeNumeric},
		{"", "1e3", AnswerTypeNumeric},
		{"", "42 m/s", AnswerTypeText},
		{"choice", "Paris", AnswerTypeText},
	}
	for _, tt := range tests {
		if got := NormalizeAnswerType(tt.raw, tt.answer); got != tt.want {
			t.Errorf("NormalizeAnswerType(%q, %q) = %q, want %q", tt.raw, tt.answer, got, tt.want)
		}
	}
}

func TestStructuralValidator(t *testing.T) {
	v := &StructuralValidator{}
	if err := v.Validate(Candidate{Question: "Q?", Answer: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := v.Validate(Candidate{Question: "Q?"})
	if err == nil || err.Validator != "structural" {
		t.Fatalf("expected structural error, got %v", err)
	}
	if !strings.Contains(err.Error(), "answer is empty") {
		t.Fatalf("unexpected message: %v", err)
	}
}
