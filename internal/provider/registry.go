package provider

import (
	"context"
	"sort"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/zeromicro/go-zero/core/logx"
)

// Registry maps service names to clients. Populate it during startup only;
// it is read-only afterwards.
type Registry struct {
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds client under its own name, replacing any earlier entry.
func (r *Registry) Register(client Client) {
	r.clients[client.Name()] = client
}

// Get resolves a service name.
func (r *Registry) Get(name string) (Client, error) {
	if client, ok := r.clients[name]; ok {
		return client, nil
	}
	return nil, apperr.New(apperr.KindUnknownService, "registry", "no client available for service: %s", name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.clients[name]
	return ok
}

// Names returns the registered service names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Probe lists models for every registered client and logs the outcome.
func (r *Registry) Probe(ctx context.Context) {
	for _, name := range r.Names() {
		models, err := r.clients[name].ListModels(ctx)
		if err != nil {
			logx.Errorf("could not connect to %s: %v", name, err)
			continue
		}
		logx.Infof("connected to %s, available models: %d", name, len(models))
	}
}
