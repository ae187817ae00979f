// Package feedback grades puzzle answers, with an LLM when one is
// configured and by normalized matching otherwise.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/softswan/softswan/internal/llm"
)

// Service grades answers.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a grader. A nil provider always uses the fallback.
func NewService(provider llm.Provider, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, logger: logger}
}

// Grade decides whether in.UserAnswer is correct. LLM failures fall back
// to normalized matching rather than surfacing an error.
func (s *Service) Grade(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.UserAnswer) == "" {
		return nil, ErrEmptyAnswer
	}
	if s.provider == nil {
		return gradeExact(in), nil
	}

	res, err := s.gradeLLM(ctx, in)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("llm grading failed, using exact match", zap.Error(err))
		return gradeExact(in), nil
	}
	return res, nil
}

func (s *Service) gradeLLM(ctx context.Context, in Input) (*Result, error) {
	ctx = llm.WithPurpose(ctx, "feedback")

	req := llm.UserPrompt(systemPrompt, buildUserMessage(in))
	req.Schema = FeedbackSchema
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("grade answer: %w", err)
	}

	var out feedbackOutput
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}

	fb := strings.TrimSpace(out.Feedback)
	if fb == "" {
		fb = incorrectFeedback
		if out.IsCorrect {
			fb = correctFeedback
		}
	}
	return &Result{Correct: out.IsCorrect, Feedback: fb, Source: SourceLLM}, nil
}
