package problemgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a teaching assistant writing short quiz questions.

Rules:
- Write distinct subject-matter questions with their correct final answers.
- Pitch every question at the target level described in the request.
- Give a brief explanation (1-3 sentences) that supports each answer.
- No meta-questions or follow-ups. Never put the answer inside the question text.
- For numeric answers, "answer" must be a bare number string with no units or words, and answer_type must be "numeric".
- Otherwise use answer_type "text".
- Do not repeat or paraphrase any question from the "recently asked" list.`

// buildUserMessage constructs the user message for a batch request.
func buildUserMessage(req Request, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Target level: %s\n", req.Level)
	fmt.Fprintf(&b, "Level profile: %s\n", req.Level.Profile())
	fmt.Fprintf(&b, "Number of questions: %d\n", count)

	b.WriteString("\nRecently asked (avoid):\n")
	b.WriteString(buildDedup(req.Exclude))

	return b.String()
}

// buildDedup formats the exclusion list for the prompt.
// Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string) string {
	if len(priorQuestions) == 0 {
		return "None"
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
