package feedback

import "errors"

// ErrEmptyAnswer is returned when the learner submits a blank answer.
var ErrEmptyAnswer = errors.New("answer is empty")

// Input is one answer to grade.
type Input struct {
	Problem      string
	ExpertAnswer string
	UserAnswer   string
}

// Source records which grader produced a Result.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Result is the grading outcome.
type Result struct {
	Correct  bool
	Feedback string
	Source   Source
}

// Config tunes LLM grading.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the grading defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   256,
		Temperature: 0.2,
	}
}
