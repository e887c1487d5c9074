package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tatianab/llmserver/internal/models"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpc"
)

const defaultOllamaPort = 11434

// control tokens some local models leak into their output
var ollamaControlTokens = []string{"<|eot_id|>", "<|end_of_text|>", "<|im_end|>", "<|end|>", "</s>"}

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	baseURL string
	svc     httpc.Service
}

// NewOllamaClient builds the adapter for host:port. host may carry a scheme.
func NewOllamaClient(host string, port int, opts ...Option) *OllamaClient {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = defaultOllamaPort
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	o := buildOptions(fmt.Sprintf("%s:%d", strings.TrimRight(host, "/"), port), opts)
	logx.Infof("Ollama client initialized with %s", o.baseURL)
	return &OllamaClient{
		baseURL: o.baseURL,
		svc:     newService("ollama", o.client, nil),
	}
}

func (p *OllamaClient) Name() string {
	return "ollama"
}

type ollamaOptions struct {
	NumPredict    *int     `json:"num_predict,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

type ollamaModel struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
}

type ollamaTags struct {
	Models []ollamaModel `json:"models"`
}

func (p *OllamaClient) GenerateResponse(ctx context.Context, c *models.Context) (string, error) {
	req := ollamaChatRequest{
		Model:    c.Model,
		Messages: Messages(c),
		Stream:   c.Settings.Bool(models.KeyStream),
		Options: ollamaOptions{
			NumPredict:    intSetting(c.Settings, models.KeyNumPredict),
			Temperature:   floatSetting(c.Settings, models.KeyTemperature),
			TopK:          intSetting(c.Settings, models.KeyTopK),
			TopP:          floatSetting(c.Settings, models.KeyTopP),
			RepeatPenalty: floatSetting(c.Settings, models.KeyRepeatPenalty),
		},
	}
	resp, err := doJSON(ctx, p.svc, http.MethodPost, p.baseURL+"/api/chat", req)
	if err != nil {
		return "", providerError(ctx, "Ollama", err)
	}

	if !req.Stream {
		var out ollamaChatResponse
		if err := decodeJSON(resp, &out); err != nil {
			return "", providerError(ctx, "Ollama", err)
		}
		if out.Error != "" {
			return "", providerError(ctx, "Ollama", fmt.Errorf("%s", out.Error))
		}
		return finish(p, out.Message.Content), nil
	}

	defer resp.Body.Close()
	var b strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk ollamaChatResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", providerError(ctx, "Ollama", fmt.Errorf("decode stream chunk: %w", err))
		}
		if chunk.Error != "" {
			return "", providerError(ctx, "Ollama", fmt.Errorf("%s", chunk.Error))
		}
		b.WriteString(chunk.Message.Content)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", providerError(ctx, "Ollama", err)
	}
	return finish(p, b.String()), nil
}

// ValidateResponse strips control tokens leaked by local models.
func (p *OllamaClient) ValidateResponse(text string) string {
	for _, tok := range ollamaControlTokens {
		text = strings.ReplaceAll(text, tok, "")
	}
	return strings.TrimSpace(text)
}

func (p *OllamaClient) tags(ctx context.Context) ([]ollamaModel, error) {
	resp, err := doJSON(ctx, p.svc, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	var out ollamaTags
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// ListModels queries the server. Failures are logged and yield an empty list.
func (p *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.tags(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("Error listing Ollama models: %v", err)
		return []string{}, nil
	}
	names := make([]string, 0, len(list))
	for _, m := range list {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

func (p *OllamaClient) GetModelInfo(ctx context.Context, model string) ModelInfo {
	list, err := p.tags(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("Error getting Ollama model info: %v", err)
		info := UnknownModel(model)
		info.Error = err.Error()
		return info
	}
	for _, m := range list {
		if m.Name == model {
			created := m.ModifiedAt
			if created == "" {
				created = "N/A"
			}
			return ModelInfo{
				Name:        m.Name,
				Created:     created,
				Description: "An Ollama language model: " + m.Name,
				Known:       true,
			}
		}
	}
	logx.WithContext(ctx).Infof("Model not found: %s", model)
	return UnknownModel(model)
}
