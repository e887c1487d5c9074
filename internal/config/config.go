package config

import (
	"fmt"
	"os"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
)

const (
	StorageFile      = "file"
	StorageFirestore = "firestore"
	StorageMemory    = "memory"
)

// Config holds the application configuration.
type Config struct {
	rest.RestConf

	Storage  StorageConfig  `json:"storage,optional"`
	Services ServicesConfig `json:"services,optional"`
	Console  ConsoleConfig  `json:"console,optional"`
	// Plugins names the built-in plugins to enable. Empty enables all.
	Plugins []string `json:"plugins,optional"`
}

type StorageConfig struct {
	Backend    string `json:"backend,optional,options=file|firestore|memory"`
	Path       string `json:"path,optional"`
	Project    string `json:"project,optional"`
	Collection string `json:"collection,optional"`
}

type ServicesConfig struct {
	Groq      APIKeyConfig `json:"groq,optional"`
	Cerebras  APIKeyConfig `json:"cerebras,optional"`
	Ollama    OllamaConfig `json:"ollama,optional"`
	Gemini    APIKeyConfig `json:"gemini,optional"`
	Vertex    VertexConfig `json:"vertex,optional"`
	Anthropic APIKeyConfig `json:"anthropic,optional"`
	Mock      MockConfig   `json:"mock,optional"`
}

type APIKeyConfig struct {
	APIKey  string `json:"apiKey,optional"`
	BaseURL string `json:"baseUrl,optional"`
}

type OllamaConfig struct {
	Enabled bool   `json:"enabled,optional"`
	Host    string `json:"host,optional"`
	Port    int    `json:"port,optional"`
}

type VertexConfig struct {
	Project  string `json:"project,optional"`
	Location string `json:"location,optional"`
}

// MockConfig enables a scripted provider that echoes prompts.
type MockConfig struct {
	Enabled bool `json:"enabled,optional"`
}

type ConsoleConfig struct {
	Enabled bool `json:"enabled,optional"`
}

// LoadConfig reads the YAML file at path. ${VAR} references expand from the
// environment, and provider keys left empty fall back to their usual
// environment variables.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if err := conf.Load(path, &c, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageFile
	}
	if c.Storage.Path == "" {
		c.Storage.Path = ".contexts"
	}
	if c.Storage.Collection == "" {
		c.Storage.Collection = "contexts"
	}
	if c.Storage.Project == "" {
		c.Storage.Project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	envFallback(&c.Services.Groq.APIKey, "GROQ_API_KEY")
	envFallback(&c.Services.Cerebras.APIKey, "CEREBRAS_API_KEY")
	envFallback(&c.Services.Gemini.APIKey, "GEMINI_API_KEY")
	envFallback(&c.Services.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	envFallback(&c.Services.Vertex.Project, "GOOGLE_CLOUD_PROJECT")
	envFallback(&c.Services.Vertex.Location, "GOOGLE_CLOUD_LOCATION")
	envFallback(&c.Services.Ollama.Host, "OLLAMA_HOST")
	if c.Services.Ollama.Host == "" {
		c.Services.Ollama.Host = "localhost"
	}
	if c.Services.Ollama.Port == 0 {
		c.Services.Ollama.Port = 11434
	}
}

func envFallback(field *string, key string) {
	if *field == "" {
		*field = os.Getenv(key)
	}
}
