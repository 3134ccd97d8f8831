// Package ai wraps the multimodal language-model collaborator. Callers depend
// on the Client interface; Gemini is the production implementation.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/nazsats/blood-report-analyzer-sub000/app/config"

	"google.golang.org/genai"
)

// Message is one turn of a chat transcript, caller-supplied and resent in
// full on every request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the language-model contract. Both calls are single blocking
// round trips with collaborator-imposed timeouts; neither is retried.
type Client interface {
	// AnalyzeImage submits one image plus a fixed instruction and returns the
	// raw text reply.
	AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
	// Chat submits a system instruction plus the full prior transcript.
	Chat(ctx context.Context, system string, messages []Message) (string, error)
}

// Gemini implements Client against the Gemini API.
type Gemini struct {
	client        *genai.Client
	model         string
	maxTokens     int32
	chatMaxTokens int32
}

// NewGemini constructs the production model client.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY must be set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Gemini{
		client:        client,
		model:         cfg.Model,
		maxTokens:     int32(cfg.MaxOutputTokens),
		chatMaxTokens: int32(cfg.ChatMaxTokens),
	}, nil
}

func (g *Gemini) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
		Temperature:     genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", fmt.Errorf("model analyze call: %w", err)
	}
	return resp.Text(), nil
}

func (g *Gemini) Chat(ctx context.Context, system string, messages []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == "assistant" || m.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens:   g.chatMaxTokens,
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("model chat call: %w", err)
	}
	return resp.Text(), nil
}
