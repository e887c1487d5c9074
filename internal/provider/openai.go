package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tatianab/llmserver/internal/models"
	"github.com/zeromicro/go-zero/rest/httpc"
)

const (
	groqBaseURL     = "https://api.groq.com/openai/v1"
	cerebrasBaseURL = "https://api.cerebras.ai/v1"
)

var groqModels = []string{
	"llama3-groq-70b-8192-tool-use-preview",
	"llama3-groq-8b-8192-tool-use-preview",
	"llama-3.1-70b-versatile",
	"llama-3.1-8b-instant",
	"llama-3.2-1b-preview",
	"llama-3.2-3b-preview",
	"llama3-70b-8192",
	"llama3-8b-8192",
}

var cerebrasModels = []string{
	"llama3.1-8b",
	"llama3.1-70b",
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint and
// serves model listings from a fixed catalog.
type OpenAIClient struct {
	name        string
	label       string
	description string
	catalog     []string
	strictInfo  bool
	baseURL     string
	svc         httpc.Service
}

// NewGroqClient returns the Groq adapter. Groq reports basic info for any
// model name.
func NewGroqClient(apiKey string, opts ...Option) *OpenAIClient {
	return newOpenAIClient("groq", "Groq", "A Groq language model", groqModels, false, groqBaseURL, apiKey, opts)
}

// NewCerebrasClient returns the Cerebras adapter.
func NewCerebrasClient(apiKey string, opts ...Option) *OpenAIClient {
	return newOpenAIClient("cerebras", "Cerebras", "Cerebras %s model", cerebrasModels, true, cerebrasBaseURL, apiKey, opts)
}

func newOpenAIClient(name, label, description string, catalog []string, strict bool, defaultURL, apiKey string, opts []Option) *OpenAIClient {
	o := buildOptions(defaultURL, opts)
	return &OpenAIClient{
		name:        name,
		label:       label,
		description: description,
		catalog:     catalog,
		strictInfo:  strict,
		baseURL:     o.baseURL,
		svc:         newService(name, o.client, map[string]string{"Authorization": "Bearer " + apiKey}),
	}
}

func (p *OpenAIClient) Name() string {
	return p.name
}

type chatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      *float64  `json:"temperature,omitempty"`
	MaxTokens        *int      `json:"max_tokens,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	Stream           bool      `json:"stream"`
	Tools            any       `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func floatSetting(s models.Settings, key string) *float64 {
	if v, ok := s.Float(key); ok {
		return &v
	}
	return nil
}

func intSetting(s models.Settings, key string) *int {
	if v, ok := s.Int(key); ok {
		return &v
	}
	return nil
}

func (p *OpenAIClient) buildRequest(c *models.Context) chatRequest {
	req := chatRequest{
		Model:            c.Model,
		Messages:         Messages(c),
		Temperature:      floatSetting(c.Settings, models.KeyTemperature),
		MaxTokens:        intSetting(c.Settings, models.KeyMaxTokens),
		TopP:             floatSetting(c.Settings, models.KeyTopP),
		FrequencyPenalty: floatSetting(c.Settings, models.KeyFrequencyPenalty),
		PresencePenalty:  floatSetting(c.Settings, models.KeyPresencePenalty),
		Stream:           c.Settings.Bool(models.KeyStream),
	}
	if c.Settings.Bool(models.KeyUseTools) {
		req.Tools = c.Settings[models.KeyTools]
	}
	return req
}

func (p *OpenAIClient) GenerateResponse(ctx context.Context, c *models.Context) (string, error) {
	req := p.buildRequest(c)
	resp, err := doJSON(ctx, p.svc, http.MethodPost, p.baseURL+"/chat/completions", req)
	if err != nil {
		return "", providerError(ctx, p.label, err)
	}

	if !req.Stream {
		var out chatResponse
		if err := decodeJSON(resp, &out); err != nil {
			return "", providerError(ctx, p.label, err)
		}
		if len(out.Choices) == 0 {
			return "", providerError(ctx, p.label, fmt.Errorf("no choices returned"))
		}
		return finish(p, out.Choices[0].Message.Content), nil
	}

	defer resp.Body.Close()
	var b strings.Builder
	err = readSSE(resp.Body, func(payload []byte) error {
		var chunk chatStreamChunk
		if err := json.Unmarshal(payload, &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		for _, choice := range chunk.Choices {
			b.WriteString(choice.Delta.Content)
		}
		return nil
	})
	if err != nil {
		return "", providerError(ctx, p.label, err)
	}
	return finish(p, b.String()), nil
}

func (p *OpenAIClient) ListModels(context.Context) ([]string, error) {
	return append([]string(nil), p.catalog...), nil
}

func (p *OpenAIClient) GetModelInfo(_ context.Context, model string) ModelInfo {
	if !p.strictInfo {
		return ModelInfo{Name: model, Created: "N/A", Description: p.description, Known: true}
	}
	description := p.description
	if strings.Contains(description, "%s") {
		description = fmt.Sprintf(description, model)
	}
	return catalogInfo(p.catalog, model, description)
}
