// Package provider adapts generative-text backends to one contract.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/zeromicro/go-zero/core/logx"
)

// Client is implemented once per backend.
//
// GenerateResponse builds a request from c.History and c.Settings and returns
// the complete reply text. When the stream setting is on, the stream is
// drained before returning. Implementations must not mutate c. Upstream
// failures come back as *apperr.Error of kind Provider.
//
// GetModelInfo never fails; unrecognized models yield ModelInfo.Known == false.
type Client interface {
	Name() string
	GenerateResponse(ctx context.Context, c *models.Context) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	GetModelInfo(ctx context.Context, model string) ModelInfo
}

// Validator post-processes raw provider output before it is returned.
type Validator interface {
	ValidateResponse(text string) string
}

// ModelInfo describes one model.
type ModelInfo struct {
	Name        string `json:"name"`
	Created     string `json:"created"`
	Description string `json:"description"`
	Known       bool   `json:"known"`
	Error       string `json:"error,omitempty"`
}

// UnknownModel is the tagged absence returned for unrecognized models.
func UnknownModel(name string) ModelInfo {
	return ModelInfo{Name: name, Created: "N/A", Error: "unknown model"}
}

// Message is a provider-neutral role/content pair.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Messages projects a context history into role/content pairs, in order.
func Messages(c *models.Context) []Message {
	out := make([]Message, 0, len(c.History))
	for _, m := range c.History {
		out = append(out, Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// splitSystem separates system entries from the rest, for providers that
// carry the system prompt out of band.
func splitSystem(c *models.Context) (string, []Message) {
	var system []string
	var rest []Message
	for _, m := range Messages(c) {
		if m.Role == models.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// finish runs the client's Validator, if any.
func finish(client Client, text string) string {
	if v, ok := client.(Validator); ok {
		return v.ValidateResponse(text)
	}
	return text
}

// providerError logs and classifies an upstream failure.
func providerError(ctx context.Context, label string, err error) error {
	msg := fmt.Sprintf("%s API Error: %v", label, err)
	logx.WithContext(ctx).Error(msg)
	return &apperr.Error{Kind: apperr.KindProvider, Op: strings.ToLower(label), Msg: msg, Err: err}
}

// catalogInfo answers GetModelInfo from a static catalog.
func catalogInfo(catalog []string, model, description string) ModelInfo {
	for _, m := range catalog {
		if m == model {
			return ModelInfo{Name: model, Created: "N/A", Description: description, Known: true}
		}
	}
	logx.Infof("unknown model: %s", model)
	return UnknownModel(model)
}
