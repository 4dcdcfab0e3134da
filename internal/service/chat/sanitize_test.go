package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeQuestion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantErr error
	}{
		{
			name:  "plain text passes through",
			input: "What is the refund policy?",
			max:   2000,
			want:  "What is the refund policy?",
		},
		{
			name:  "html tags stripped",
			input: "<script>alert(1)</script>What is <b>the</b> policy?",
			max:   2000,
			want:  "What is the policy?",
		},
		{
			name:  "control characters removed",
			input: "hello\x00\x07 world",
			max:   2000,
			want:  "hello world",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  question here  ",
			max:   2000,
			want:  "question here",
		},
		{
			name:    "empty after cleaning",
			input:   "<div></div>   ",
			max:     2000,
			wantErr: ErrEmptyQuestion,
		},
		{
			name:    "over length limit",
			input:   strings.Repeat("x", 30),
			max:     20,
			wantErr: ErrQuestionTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeQuestion(tt.input, tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeAnswerTruncates(t *testing.T) {
	long := strings.Repeat("a", 100)

	got := SanitizeAnswer(long, 50)
	if len([]rune(got)) != 50 {
		t.Errorf("got %d chars, want 50", len([]rune(got)))
	}

	got = SanitizeAnswer("short answer", 50)
	if got != "short answer" {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestSanitizeAnswerStripsMarkup(t *testing.T) {
	got := SanitizeAnswer("The answer is <b>42</b>.", 1000)
	if got != "The answer is 42." {
		t.Errorf("got %q", got)
	}
}
