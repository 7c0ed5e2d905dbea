// Package gemini implements the ReasoningGateway on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/repository"
)

const (
	DefaultModel = "gemini-2.0-flash"

	maxOutputTokens = 1200
	temperature     = 0.2
)

var ErrEmptyResponse = errors.New("empty response from model")

var _ repository.ReasoningGateway = (*Client)(nil)

// textGenerator is the single model call the gateway needs.
type textGenerator interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

type Client struct {
	gen    textGenerator
	logger *zap.Logger
}

func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return newClient(&genaiGenerator{cli: cli, model: model}, logger), nil
}

func newClient(gen textGenerator, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gen: gen, logger: logger}
}

func (c *Client) Generate(ctx context.Context, m entity.WorkflowMetrics, contextDocs []string) (entity.Reasoning, error) {
	user, err := buildUserPrompt(m, contextDocs)
	if err != nil {
		return entity.Reasoning{}, err
	}

	c.logger.Debug("reasoning request sent", zap.Int("context_docs", len(contextDocs)))
	text, err := c.gen.GenerateText(ctx, systemPrompt, user)
	if err != nil {
		return entity.Reasoning{}, fmt.Errorf("generate: %w", err)
	}

	out, err := parseReasoning(text)
	if err != nil {
		return entity.Reasoning{}, err
	}
	c.logger.Debug("reasoning response parsed",
		zap.Int("sop_chars", len(out.SOP)),
		zap.Int("bottlenecks", len(out.Bottlenecks)),
	)
	return out, nil
}

type genaiGenerator struct {
	cli   *genai.Client
	model string
}

func (g *genaiGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: user}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			Temperature:       genai.Ptr[float32](temperature),
			MaxOutputTokens:   maxOutputTokens,
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
