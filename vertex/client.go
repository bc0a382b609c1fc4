// Package vertex calls the Vertex AI generation and embedding models through
// the OpenAI-compatible endpoint, so the standard go-openai client works
// against Gemini.
package vertex

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"ng12-backend/config"
)

// GenerationError wraps any transport or service failure from the generation
// model. Callers recover from it; it is never surfaced raw.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Client is the boundary to the generation and embedding services.
type Client struct {
	api        *openai.Client
	model      string
	embedModel string
}

// NewClient validates the project configuration and builds the client. The
// request timeout bounds both suspension points (embed and generate) so a
// stalled call cannot hang a request.
func NewClient(cfg *config.Settings) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	oc := openai.DefaultConfig(cfg.AccessToken)
	oc.BaseURL = fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/endpoints/openapi",
		cfg.Location, cfg.ProjectID, cfg.Location,
	)
	oc.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	return &Client{
		api:        openai.NewClientWithConfig(oc),
		model:      "google/" + cfg.Model,
		embedModel: "google/" + cfg.EmbedModel,
	}, nil
}

// Generate runs one deterministic completion: temperature 0, top_p 1, a
// single candidate, 512 tokens max. Identical prompts produce identical
// output up to the service's own determinism guarantee.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		TopP:        1,
		N:           1,
		MaxTokens:   512,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Err: fmt.Errorf("model returned no candidates")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed converts texts into the vector space of the stored guideline chunks.
// Queries and stored chunks must use the same embedding model or nearest
// neighbor ranking is meaningless.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
