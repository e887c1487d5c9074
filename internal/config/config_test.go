package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "llmserver.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_GROQ_KEY", "from-env")
	t.Setenv("CEREBRAS_API_KEY", "fallback")
	path := writeConfig(t, `
Name: llmserver
Port: 5000
storage:
  backend: memory
services:
  groq:
    apiKey: ${TEST_GROQ_KEY}
  ollama:
    enabled: true
    port: 12345
console:
  enabled: true
plugins:
  - dice
`)

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Name != "llmserver" || c.Port != 5000 {
		t.Errorf("rest config = %s:%d", c.Name, c.Port)
	}
	if c.Services.Groq.APIKey != "from-env" {
		t.Errorf("groq key = %q, want expanded env value", c.Services.Groq.APIKey)
	}
	if c.Services.Cerebras.APIKey != "fallback" {
		t.Errorf("cerebras key = %q, want env fallback", c.Services.Cerebras.APIKey)
	}
	if !c.Services.Ollama.Enabled || c.Services.Ollama.Port != 12345 || c.Services.Ollama.Host == "" {
		t.Errorf("ollama = %+v", c.Services.Ollama)
	}
	if c.Storage.Backend != StorageMemory || c.Storage.Path != ".contexts" {
		t.Errorf("storage = %+v", c.Storage)
	}
	if !c.Console.Enabled {
		t.Errorf("console should be enabled")
	}
	if !reflect.DeepEqual(c.Plugins, []string{"dice"}) {
		t.Errorf("plugins = %v", c.Plugins)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	path := writeConfig(t, "Name: llmserver\nPort: 5000\n")
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Storage.Backend != StorageFile || c.Storage.Collection != "contexts" {
		t.Errorf("storage defaults = %+v", c.Storage)
	}
	if c.Services.Ollama.Host != "localhost" || c.Services.Ollama.Port != 11434 {
		t.Errorf("ollama defaults = %+v", c.Services.Ollama)
	}
	if c.Console.Enabled {
		t.Errorf("console must default to off")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
