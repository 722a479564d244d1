package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aidomain "blogplatform-backend/internal/domains/ai"
	"blogplatform-backend/internal/infrastructure/ai"
)

type fakeGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

const sampleContent = "Go is a statically typed language designed at Google for building reliable services."

func TestSuggestHeadlines_ParsesLines(t *testing.T) {
	gen := &fakeGenerator{response: "1. First Headline\n- Second Headline\n• Third Headline\n\n\"Fourth Headline\""}
	svc := NewSuggestionService(gen)

	headlines, err := svc.SuggestHeadlines(context.Background(), sampleContent)
	require.NoError(t, err)
	assert.Equal(t, []string{"First Headline", "Second Headline", "Third Headline", "Fourth Headline"}, headlines)
	assert.Contains(t, gen.lastPrompt, sampleContent)
}

func TestSuggestKeywords_ParsesCommaList(t *testing.T) {
	gen := &fakeGenerator{response: "golang, backend services , reliability, \"cloud\"."}
	svc := NewSuggestionService(gen)

	keywords, err := svc.SuggestKeywords(context.Background(), sampleContent)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "backend services", "reliability", "cloud"}, keywords)
}

func TestSuggestSummary_TrimsWhitespace(t *testing.T) {
	gen := &fakeGenerator{response: "\n  A short summary.  \n"}
	svc := NewSuggestionService(gen)

	summary, err := svc.SuggestSummary(context.Background(), sampleContent)
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", summary)
}

func TestImproveContent(t *testing.T) {
	gen := &fakeGenerator{response: "Improved text."}
	svc := NewSuggestionService(gen)

	improved, err := svc.ImproveContent(context.Background(), sampleContent)
	require.NoError(t, err)
	assert.Equal(t, "Improved text.", improved)
}

func TestContentTooShort(t *testing.T) {
	svc := NewSuggestionService(&fakeGenerator{})

	_, err := svc.SuggestHeadlines(context.Background(), "   hi   ")
	assert.ErrorIs(t, err, aidomain.ErrContentTooShort)

	_, err = svc.SuggestKeywords(context.Background(), "")
	assert.ErrorIs(t, err, aidomain.ErrContentTooShort)

	_, err = svc.SuggestSummary(context.Background(), "short")
	assert.ErrorIs(t, err, aidomain.ErrContentTooShort)

	_, err = svc.ImproveContent(context.Background(), "short")
	assert.ErrorIs(t, err, aidomain.ErrContentTooShort)
}

func TestGeneratorUnavailablePassesThrough(t *testing.T) {
	gen := &fakeGenerator{err: ai.ErrUnavailable}
	svc := NewSuggestionService(gen)

	_, err := svc.SuggestHeadlines(context.Background(), sampleContent)
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}
