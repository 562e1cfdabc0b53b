package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Normalize converts any raw answer value into its canonical comparable form:
// letters, digits and single spaces only, trimmed, upper-cased. It is the
// sole equality authority for grading: two answers are the same iff their
// normalized forms are equal. A value that normalizes to "" is unanswered no
// matter what it originally contained.
func Normalize(value any) string {
	return normalizeString(Stringify(value))
}

// NormalizeAlternates splits a correct answer on "|" and normalizes each
// alternate. Authors write answers like "Kings|King's"; a user answer that
// matches any alternate counts as correct.
func NormalizeAlternates(answer string) []string {
	parts := strings.Split(answer, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := normalizeString(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// MatchesAny reports whether the normalized user value equals any normalized
// alternate of the correct answer. An empty normalized user value never
// matches anything.
func MatchesAny(userValue any, correctAnswer string) bool {
	user := Normalize(userValue)
	if user == "" {
		return false
	}
	for _, alt := range NormalizeAlternates(correctAnswer) {
		if user == alt {
			return true
		}
	}
	return false
}

// Stringify flattens loosely-typed answer values (strings, numbers, bools,
// json.Unmarshal output) into a plain string before normalization. Unknown
// shapes degrade to "" rather than failing.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		// json numbers decode to float64; keep integers clean
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			parts = append(parts, Stringify(e))
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(v, " ")
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

func normalizeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
