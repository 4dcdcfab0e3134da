package chat

import (
	"errors"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrQuestionTooLong = errors.New("question exceeds maximum length")
)

var stripPolicy = bluemonday.StrictPolicy()

// sanitizeText strips HTML markup and non-printable control characters.
// Newlines and tabs survive; everything else below 0x20 is dropped.
func sanitizeText(s string) string {
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			sb.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		sb.WriteRune(r)
	}

	return strings.TrimSpace(sb.String())
}

// SanitizeQuestion cleans user input and enforces the question length limit.
func SanitizeQuestion(question string, maxChars int) (string, error) {
	cleaned := sanitizeText(question)
	if cleaned == "" {
		return "", ErrEmptyQuestion
	}
	if maxChars > 0 && len([]rune(cleaned)) > maxChars {
		return "", ErrQuestionTooLong
	}
	return cleaned, nil
}

// SanitizeAnswer cleans model output. Over-long answers are truncated rather
// than rejected since the model already ran.
func SanitizeAnswer(answer string, maxChars int) string {
	cleaned := sanitizeText(answer)
	if maxChars > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxChars {
			cleaned = strings.TrimSpace(string(runes[:maxChars]))
		}
	}
	return cleaned
}
