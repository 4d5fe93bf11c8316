// Package summary produces short natural-language summaries of a game's
// reviews. Summaries are decoration: every failure degrades to a static
// message and never blocks the review path.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Fallback is shown whenever the model cannot produce a summary.
const Fallback = "Error summarizing reviews."

// NoReviews is shown for games whose review log is still empty.
const NoReviews = "This game has no reviews yet."

// reviewSeparator distinguishes one review from the next inside the prompt.
const reviewSeparator = "@"

const defaultModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("summary: missing gemini api key")

// Summarizer condenses a set of review texts into one sentence.
type Summarizer interface {
	Summarize(ctx context.Context, reviews []string) (string, error)
}

// GeminiSummarizer is the production Summarizer backed by the Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("summary: create genai client: %w", err)
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, reviews []string) (string, error) {
	if len(reviews) == 0 {
		return "", errors.New("summary: no reviews to summarize")
	}

	contents := []*genai.Content{genai.NewContentFromText(buildPrompt(reviews), genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("summary: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("summary: empty model response")
	}
	return text, nil
}

func buildPrompt(reviews []string) string {
	return fmt.Sprintf(
		"Based on the following game reviews, where each review is separated by a %q character, "+
			"create a one-sentence summary of what people think of the game.\n\n"+
			"Here are the reviews: %s",
		reviewSeparator, strings.Join(reviews, reviewSeparator),
	)
}
