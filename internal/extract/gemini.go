package extract

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"google.golang.org/genai"

	"github.com/gana36/billbeam/internal/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiExtractor extracts receipts with Google's Gemini API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// GeminiOption customises the Gemini client.
type GeminiOption func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPClient = c
	}
}

// NewGeminiExtractor creates an extractor for the given model.
func NewGeminiExtractor(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract sends the photo and prompt to the model and parses the JSON it returns.
func (g *GeminiExtractor) Extract(ctx context.Context, img Image) (*models.Receipt, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(receiptPrompt),
			genai.NewPartFromBytes(img.Data, img.MIMEType),
		}, genai.RoleUser),
	}

	temperature := float32(0.1)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate failed: %v", ErrExtraction, err)
	}

	text := resp.Text()
	slog.Debug("Gemini raw response", "model", g.model, "chars", len(text))

	receipt, reported, err := ParseResponse(text)
	if err != nil {
		slog.Warn("Gemini response rejected", "model", g.model, "error", err)
		return nil, err
	}

	if reported.Subtotal != 0 && math.Abs(reported.Subtotal-receipt.Subtotal) > 0.01 {
		slog.Info("Printed subtotal differs from item sum",
			"printed", reported.Subtotal,
			"computed", receipt.Subtotal,
			"items", len(receipt.Items),
		)
	}

	return receipt, nil
}

// Name returns the engine name.
func (g *GeminiExtractor) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}
