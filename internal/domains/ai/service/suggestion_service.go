package service

import (
	"context"
	"fmt"
	"strings"

	aidomain "blogplatform-backend/internal/domains/ai"
	"blogplatform-backend/internal/infrastructure/ai"
)

// minContentLength rejects inputs too short to say anything useful about.
const minContentLength = 10

// SuggestionService wraps the generative model with blog-specific
// prompts. Every operation degrades to an Unavailable error the editor
// can ignore; nothing here is on the critical path.
type SuggestionService interface {
	SuggestHeadlines(ctx context.Context, content string) ([]string, error)
	SuggestKeywords(ctx context.Context, content string) ([]string, error)
	SuggestSummary(ctx context.Context, content string) (string, error)
	ImproveContent(ctx context.Context, content string) (string, error)
}

type suggestionService struct {
	generator ai.ContentGenerator
}

func NewSuggestionService(generator ai.ContentGenerator) SuggestionService {
	return &suggestionService{generator: generator}
}

func (s *suggestionService) SuggestHeadlines(ctx context.Context, content string) ([]string, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Suggest 5 catchy, SEO-friendly headlines for the following blog post. "+
			"Return one headline per line with no numbering or extra text.\n\n%s",
		content,
	)

	text, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return splitLines(text), nil
}

func (s *suggestionService) SuggestKeywords(ctx context.Context, content string) ([]string, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Suggest up to 10 SEO keywords for the following blog post. "+
			"Return them as a single comma-separated list with no extra text.\n\n%s",
		content,
	)

	text, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return splitCommas(text), nil
}

func (s *suggestionService) SuggestSummary(ctx context.Context, content string) (string, error) {
	if err := checkContent(content); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Write a concise 2-3 sentence summary of the following blog post, "+
			"suitable as a preview snippet.\n\n%s",
		content,
	)

	text, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

func (s *suggestionService) ImproveContent(ctx context.Context, content string) (string, error) {
	if err := checkContent(content); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Improve the following blog post for clarity, grammar and flow while "+
			"keeping the author's voice and meaning. Return only the improved text.\n\n%s",
		content,
	)

	text, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

func checkContent(content string) error {
	if len(strings.TrimSpace(content)) < minContentLength {
		return aidomain.ErrContentTooShort
	}
	return nil
}

// splitLines parses one-suggestion-per-line model output, stripping the
// bullets and numbering models add despite instructions.
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. ")
		line = strings.Trim(line, `"`)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitCommas(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `".`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
