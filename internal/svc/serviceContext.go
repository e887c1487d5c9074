package svc

import (
	"context"
	"fmt"
	"io"

	"github.com/tatianab/llmserver/internal/config"
	"github.com/tatianab/llmserver/internal/conversation"
	"github.com/tatianab/llmserver/internal/engine"
	"github.com/tatianab/llmserver/internal/plugin"
	"github.com/tatianab/llmserver/internal/provider"
	"github.com/tatianab/llmserver/internal/storage"
	"github.com/zeromicro/go-zero/core/logx"
)

// ServiceContext is shared by the HTTP server and the console.
type ServiceContext struct {
	Config   config.Config
	Store    storage.Store
	Registry *provider.Registry
	Manager  *conversation.Manager
	Engine   *engine.Engine
	Plugins  *plugin.Registry

	closers []io.Closer
}

func NewServiceContext(ctx context.Context, c config.Config) (*ServiceContext, error) {
	s := &ServiceContext{Config: c}

	store, err := s.newStore(ctx)
	if err != nil {
		return nil, err
	}
	s.Store = store

	registry, err := s.newRegistry(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Registry = registry

	if err := s.assemble(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// NewServiceContextWith wires the manager, engine and plugins around an
// existing store and provider registry.
func NewServiceContextWith(ctx context.Context, c config.Config, store storage.Store, registry *provider.Registry) (*ServiceContext, error) {
	s := &ServiceContext{Config: c, Store: store, Registry: registry}
	if err := s.assemble(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ServiceContext) assemble(ctx context.Context) error {
	manager, err := conversation.NewManager(ctx, s.Store)
	if err != nil {
		return err
	}
	s.Manager = manager
	s.Engine = engine.NewEngine(manager, s.Registry)
	s.Plugins = plugin.NewRegistry(plugin.Builtin, s.Config.Plugins)
	return nil
}

// Close releases provider and storage clients.
func (s *ServiceContext) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logx.Errorf("closing client: %v", err)
		}
	}
	s.closers = nil
}

func (s *ServiceContext) newStore(ctx context.Context) (storage.Store, error) {
	sc := s.Config.Storage
	switch sc.Backend {
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil
	case config.StorageFirestore:
		fs, err := storage.NewFirestoreStore(ctx, sc.Project, sc.Collection)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, fs)
		return fs, nil
	case config.StorageFile, "":
		return storage.NewFileStore(sc.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

// newRegistry registers a client for every configured provider.
func (s *ServiceContext) newRegistry(ctx context.Context) (*provider.Registry, error) {
	sc := s.Config.Services
	registry := provider.NewRegistry()

	if sc.Groq.APIKey != "" {
		registry.Register(provider.NewGroqClient(sc.Groq.APIKey, provider.WithBaseURL(sc.Groq.BaseURL)))
	}
	if sc.Cerebras.APIKey != "" {
		registry.Register(provider.NewCerebrasClient(sc.Cerebras.APIKey, provider.WithBaseURL(sc.Cerebras.BaseURL)))
	}
	if sc.Ollama.Enabled {
		registry.Register(provider.NewOllamaClient(sc.Ollama.Host, sc.Ollama.Port))
	}
	if sc.Gemini.APIKey != "" {
		gemini, err := provider.NewGeminiClient(ctx, sc.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("creating Gemini client: %w", err)
		}
		s.closers = append(s.closers, gemini)
		registry.Register(gemini)
	}
	if sc.Vertex.Project != "" && sc.Vertex.Location != "" {
		vertex, err := provider.NewVertexClient(ctx, sc.Vertex.Project, sc.Vertex.Location)
		if err != nil {
			return nil, err
		}
		registry.Register(vertex)
	}
	if sc.Anthropic.APIKey != "" {
		registry.Register(provider.NewAnthropicClient(sc.Anthropic.APIKey, sc.Anthropic.BaseURL))
	}
	if sc.Mock.Enabled {
		registry.Register(provider.NewMockClient("mock"))
	}

	if len(registry.Names()) == 0 {
		logx.Info("no providers configured")
	}
	return registry, nil
}
