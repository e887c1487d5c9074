package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tatianab/llmserver/internal/models"
)

// AnthropicClient uses the Messages API.
type AnthropicClient struct {
	client anthropic.Client
}

func NewAnthropicClient(apiKey string, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...)}
}

func (p *AnthropicClient) Name() string {
	return "anthropic"
}

func (p *AnthropicClient) params(c *models.Context) anthropic.MessageNewParams {
	system, msgs := splitSystem(c)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.Model),
		MaxTokens: 1024,
	}
	if v, ok := c.Settings.Int(models.KeyMaxTokens); ok && v > 0 {
		params.MaxTokens = int64(v)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == models.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}
	if v, ok := c.Settings.Float(models.KeyTemperature); ok {
		params.Temperature = anthropic.Float(v)
	}
	// top_p at 1.0 is the API default and conflicts with temperature on newer models
	if v, ok := c.Settings.Float(models.KeyTopP); ok && v < 1 {
		params.TopP = anthropic.Float(v)
	}
	if v, ok := c.Settings.Int(models.KeyTopK); ok && v > 0 {
		params.TopK = anthropic.Int(int64(v))
	}
	return params
}

func (p *AnthropicClient) GenerateResponse(ctx context.Context, c *models.Context) (string, error) {
	params := p.params(c)
	if len(params.Messages) == 0 {
		return "", providerError(ctx, "Anthropic", fmt.Errorf("no messages to send"))
	}

	var b strings.Builder
	if !c.Settings.Bool(models.KeyStream) {
		message, err := p.client.Messages.New(ctx, params)
		if err != nil {
			return "", providerError(ctx, "Anthropic", err)
		}
		for _, block := range message.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		return finish(p, b.String()), nil
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()
	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				b.WriteString(delta.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", providerError(ctx, "Anthropic", err)
	}
	return finish(p, b.String()), nil
}

func (p *AnthropicClient) models(ctx context.Context) ([]anthropic.ModelInfo, error) {
	var out []anthropic.ModelInfo
	pager := p.client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})
	for pager.Next() {
		out = append(out, pager.Current())
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *AnthropicClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.models(ctx)
	if err != nil {
		return nil, providerError(ctx, "Anthropic", err)
	}
	names := make([]string, 0, len(list))
	for _, m := range list {
		names = append(names, m.ID)
	}
	return names, nil
}

func (p *AnthropicClient) GetModelInfo(ctx context.Context, model string) ModelInfo {
	list, err := p.models(ctx)
	if err != nil {
		info := UnknownModel(model)
		info.Error = err.Error()
		return info
	}
	for _, m := range list {
		if m.ID == model {
			return ModelInfo{
				Name:        m.ID,
				Created:     m.CreatedAt.Format(time.RFC3339),
				Description: m.DisplayName,
				Known:       true,
			}
		}
	}
	return UnknownModel(model)
}
