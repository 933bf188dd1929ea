package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// contentGenerator is the part of *genai.GenerativeModel used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiExplainer asks a Google Gemini model for a rationale.
type GeminiExplainer struct {
	client    *genai.Client
	model     contentGenerator
	modelName string
}

// NewGeminiExplainer connects to the Gemini API.
func NewGeminiExplainer(ctx context.Context, apiKey, modelName string) (*GeminiExplainer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	gm := client.GenerativeModel(modelName)
	gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt)}}
	gm.SetTemperature(0.2)

	return &GeminiExplainer{client: client, model: gm, modelName: modelName}, nil
}

// Name returns the provider name.
func (g *GeminiExplainer) Name() string { return "gemini:" + g.modelName }

// Explain asks the model for a rationale.
func (g *GeminiExplainer) Explain(ctx context.Context, txn model.Transaction, score model.Score) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(Prompt(txn, score)))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiExplainer) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
