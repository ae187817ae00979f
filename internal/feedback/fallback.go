package feedback

import (
	"strings"
	"unicode"
)

const (
	correctFeedback   = "That's exactly right!"
	incorrectFeedback = "Not quite, take another look at the question."
)

// normalize lowercases s, drops punctuation and collapses whitespace, so
// "The Map!" and "the  map" compare equal.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

// gradeExact grades by normalized exact match, ignoring a leading article.
func gradeExact(in Input) *Result {
	user := stripArticle(normalize(in.UserAnswer))
	expert := stripArticle(normalize(in.ExpertAnswer))

	if user != "" && user == expert {
		return &Result{Correct: true, Feedback: correctFeedback, Source: SourceFallback}
	}
	return &Result{Correct: false, Feedback: incorrectFeedback, Source: SourceFallback}
}

func stripArticle(s string) string {
	for _, a := range []string{"a ", "an ", "the "} {
		if rest, ok := strings.CutPrefix(s, a); ok {
			return rest
		}
	}
	return s
}
