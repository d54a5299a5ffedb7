package grading

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/ladderquiz/internal/llm"
)

var firstSmallNumber = regexp.MustCompile(`\b(\d{1,2})\b`)

// ParseVerdict interprets a grader reply. A JSON object with a usable score
// wins; otherwise the first standalone 1-2 digit number in the text is used
// with the whole text as the reason; otherwise the score is 0. The result is
// always clamped to [MinScore, MaxScore].
func ParseVerdict(raw []byte) Verdict {
	if v, ok := parseStructured(raw); ok {
		return v
	}

	text := strings.TrimSpace(string(raw))
	if m := firstSmallNumber.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Verdict{Score: Clamp(n), Reason: text, Source: SourceDigitScan}
	}
	return Verdict{Score: MinScore, Reason: text, Source: SourceNone}
}

// Clamp bounds a score to [MinScore, MaxScore].
func Clamp(score int) int {
	return max(MinScore, min(MaxScore, score))
}

func parseStructured(raw []byte) (Verdict, bool) {
	var obj map[string]any
	if err := json.Unmarshal(llm.StripCodeFences(raw), &obj); err != nil || obj == nil {
		return Verdict{}, false
	}

	score := MinScore
	if v, present := obj["score"]; present {
		s, ok := coerceScore(v)
		if !ok {
			return Verdict{}, false
		}
		score = s
	}

	var reason string
	switch e := obj["explanation"].(type) {
	case string:
		reason = strings.TrimSpace(e)
	case float64:
		reason = strconv.FormatFloat(e, 'f', -1, 64)
	}

	return Verdict{Score: score, Reason: reason, Source: SourceStructured}, true
}

// coerceScore accepts JSON numbers (truncated toward zero) and integer strings.
func coerceScore(v any) (int, bool) {
	switch s := v.(type) {
	case float64:
		// Bound before converting so huge values cannot overflow int.
		t := math.Trunc(s)
		switch {
		case t <= MinScore:
			return MinScore, true
		case t >= MaxScore:
			return MaxScore, true
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return Clamp(n), true
	default:
		return 0, false
	}
}
