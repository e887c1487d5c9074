package models

import (
	"encoding/json"
	"strconv"
)

// Settings is a flat bundle of generation parameters. Numbers are stored as
// float64 so bundles compare equal after a trip through any store.
type Settings map[string]any

// Keys shared by every provider.
const (
	KeyTemperature      = "temperature"
	KeyMaxTokens        = "max_tokens"
	KeyTopP             = "top_p"
	KeyFrequencyPenalty = "frequency_penalty"
	KeyPresencePenalty  = "presence_penalty"
	KeyStream           = "stream"

	KeyTopK          = "top_k"
	KeyNumPredict    = "num_predict"
	KeyRepeatPenalty = "repeat_penalty"
	KeyUseTools      = "use_tools"
	KeyTools         = "tools"
)

func baseSettings() Settings {
	return Settings{
		KeyTemperature:      0.7,
		KeyMaxTokens:        150.0,
		KeyTopP:             1.0,
		KeyFrequencyPenalty: 0.0,
		KeyPresencePenalty:  0.0,
		KeyStream:           false,
	}
}

// DefaultSettings returns a fresh default bundle for service. Unknown
// services get the shared base bundle.
func DefaultSettings(service string) Settings {
	s := baseSettings()
	switch service {
	case "ollama":
		s[KeyNumPredict] = 128.0
		s[KeyTopK] = 40.0
		s[KeyRepeatPenalty] = 1.1
	case "cerebras":
		s[KeyUseTools] = false
	case "gemini", "vertex":
		s[KeyTopK] = 40.0
	case "anthropic":
		s[KeyMaxTokens] = 1024.0
	}
	return s
}

// ResolveSettings overlays overrides on the defaults for service.
func ResolveSettings(service string, overrides Settings) Settings {
	return DefaultSettings(service).Overlay(overrides)
}

// Overlay assigns every key of other onto s, normalizing numbers, and returns s.
func (s Settings) Overlay(other Settings) Settings {
	if s == nil {
		s = Settings{}
	}
	for k, v := range other {
		s[k] = normalize(v)
	}
	return s
}

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Float returns the numeric value of key.
func (s Settings) Float(key string) (float64, bool) {
	switch v := normalize(s[key]).(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// Int returns the numeric value of key truncated to an integer.
func (s Settings) Int(key string) (int, bool) {
	f, ok := s.Float(key)
	return int(f), ok
}

// Bool returns the boolean value of key. Missing keys read as false.
func (s Settings) Bool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}
