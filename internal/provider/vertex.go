package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/tatianab/llmserver/internal/models"
	vertexai "google.golang.org/genai"
)

// VertexClient uses Gemini models on Vertex AI through the google.golang.org/genai SDK.
type VertexClient struct {
	client *vertexai.Client
}

func NewVertexClient(ctx context.Context, projectID, location string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("vertex: project and location must be set")
	}
	client, err := vertexai.NewClient(ctx, &vertexai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  vertexai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}
	return &VertexClient{client: client}, nil
}

func (p *VertexClient) Name() string {
	return "vertex"
}

func (p *VertexClient) request(c *models.Context) ([]*vertexai.Content, *vertexai.GenerateContentConfig) {
	system, msgs := splitSystem(c)

	contents := make([]*vertexai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := vertexai.Role(vertexai.RoleUser)
		if m.Role == models.RoleAssistant {
			role = vertexai.RoleModel
		}
		contents = append(contents, vertexai.NewContentFromText(m.Content, role))
	}

	cfg := &vertexai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = vertexai.NewContentFromText(system, vertexai.RoleUser)
	}
	if v, ok := c.Settings.Float(models.KeyTemperature); ok {
		temp := float32(v)
		cfg.Temperature = &temp
	}
	if v, ok := c.Settings.Float(models.KeyTopP); ok {
		topP := float32(v)
		cfg.TopP = &topP
	}
	if v, ok := c.Settings.Float(models.KeyTopK); ok && v > 0 {
		topK := float32(v)
		cfg.TopK = &topK
	}
	if v, ok := c.Settings.Int(models.KeyMaxTokens); ok && v > 0 {
		cfg.MaxOutputTokens = int32(v)
	}
	return contents, cfg
}

func (p *VertexClient) GenerateResponse(ctx context.Context, c *models.Context) (string, error) {
	contents, cfg := p.request(c)
	if len(contents) == 0 {
		return "", providerError(ctx, "Vertex", fmt.Errorf("no messages to send"))
	}

	if !c.Settings.Bool(models.KeyStream) {
		res, err := p.client.Models.GenerateContent(ctx, c.Model, contents, cfg)
		if err != nil {
			return "", providerError(ctx, "Vertex", err)
		}
		return finish(p, res.Text()), nil
	}

	var b strings.Builder
	for res, err := range p.client.Models.GenerateContentStream(ctx, c.Model, contents, cfg) {
		if err != nil {
			return "", providerError(ctx, "Vertex", err)
		}
		b.WriteString(res.Text())
	}
	return finish(p, b.String()), nil
}

func (p *VertexClient) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, providerError(ctx, "Vertex", err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}

func (p *VertexClient) GetModelInfo(ctx context.Context, model string) ModelInfo {
	m, err := p.client.Models.Get(ctx, model, nil)
	if err != nil {
		return UnknownModel(model)
	}
	created := m.Version
	if created == "" {
		created = "N/A"
	}
	return ModelInfo{Name: m.Name, Created: created, Description: m.Description, Known: true}
}
