package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/llmserver/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient uses the Gemini API through the generative-ai-go SDK.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client}, nil
}

func (p *GeminiClient) Close() error {
	return p.client.Close()
}

func (p *GeminiClient) Name() string {
	return "gemini"
}

func (p *GeminiClient) model(c *models.Context) *genai.GenerativeModel {
	model := p.client.GenerativeModel(c.Model)
	if v, ok := c.Settings.Float(models.KeyTemperature); ok {
		model.SetTemperature(float32(v))
	}
	if v, ok := c.Settings.Float(models.KeyTopP); ok {
		model.SetTopP(float32(v))
	}
	if v, ok := c.Settings.Int(models.KeyTopK); ok && v > 0 {
		model.SetTopK(int32(v))
	}
	if v, ok := c.Settings.Int(models.KeyMaxTokens); ok && v > 0 {
		model.SetMaxOutputTokens(int32(v))
	}
	return model
}

// geminiRole maps history roles onto the two roles Gemini accepts.
func geminiRole(role string) string {
	if role == models.RoleAssistant {
		return "model"
	}
	return "user"
}

func (p *GeminiClient) GenerateResponse(ctx context.Context, c *models.Context) (string, error) {
	system, msgs := splitSystem(c)
	if len(msgs) == 0 {
		return "", providerError(ctx, "Gemini", fmt.Errorf("no messages to send"))
	}

	model := p.model(c)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	cs := model.StartChat()
	for _, m := range msgs[:len(msgs)-1] {
		cs.History = append(cs.History, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	last := genai.Text(msgs[len(msgs)-1].Content)

	if !c.Settings.Bool(models.KeyStream) {
		resp, err := cs.SendMessage(ctx, last)
		if err != nil {
			return "", providerError(ctx, "Gemini", err)
		}
		text, err := geminiText(resp)
		if err != nil {
			return "", providerError(ctx, "Gemini", err)
		}
		return finish(p, text), nil
	}

	var b strings.Builder
	iter := cs.SendMessageStream(ctx, last)
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", providerError(ctx, "Gemini", err)
		}
		text, _ := geminiText(resp)
		b.WriteString(text)
	}
	return finish(p, b.String()), nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func (p *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	iter := p.client.ListModels(ctx)
	for {
		m, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, providerError(ctx, "Gemini", err)
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func (p *GeminiClient) GetModelInfo(ctx context.Context, model string) ModelInfo {
	info, err := p.client.GenerativeModel(model).Info(ctx)
	if err != nil {
		return UnknownModel(model)
	}
	created := info.Version
	if created == "" {
		created = "N/A"
	}
	return ModelInfo{
		Name:        strings.TrimPrefix(info.Name, "models/"),
		Created:     created,
		Description: info.Description,
		Known:       true,
	}
}
