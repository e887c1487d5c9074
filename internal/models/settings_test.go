package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDefaultSettingsPerProvider(t *testing.T) {
	tests := []struct {
		service string
		key     string
		want    float64
	}{
		{"groq", KeyTemperature, 0.7},
		{"groq", KeyMaxTokens, 150},
		{"ollama", KeyNumPredict, 128},
		{"ollama", KeyRepeatPenalty, 1.1},
		{"gemini", KeyTopK, 40},
		{"anthropic", KeyMaxTokens, 1024},
		{"unknown", KeyTopP, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.service+"/"+tt.key, func(t *testing.T) {
			got, ok := DefaultSettings(tt.service).Float(tt.key)
			if !ok || got != tt.want {
				t.Errorf("DefaultSettings(%q)[%q] = %v, %v; want %v", tt.service, tt.key, got, ok, tt.want)
			}
		})
	}
	if DefaultSettings("groq").Bool(KeyStream) {
		t.Errorf("stream must default to false")
	}
}

func TestResolveSettingsOverlaysByName(t *testing.T) {
	s := ResolveSettings("groq", Settings{"temperature": 1, "custom": "x"})
	if v, _ := s.Float(KeyTemperature); v != 1 {
		t.Errorf("override not applied: %v", v)
	}
	if s["temperature"] != 1.0 {
		t.Errorf("override must be normalized to float64, got %T", s["temperature"])
	}
	if s["custom"] != "x" {
		t.Errorf("unknown key must be kept verbatim")
	}
	if v, _ := s.Float(KeyMaxTokens); v != 150 {
		t.Errorf("untouched default lost: %v", v)
	}
}

func TestSettingsJSONRoundTrip(t *testing.T) {
	original := ResolveSettings("ollama", Settings{KeyStream: true})
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Settings
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := ResolveSettings("ollama", decoded); !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch: %v vs %v", got, original)
	}
}

func TestSettingsAccessors(t *testing.T) {
	s := Settings{"a": int64(3), "b": "2.5", "c": "true", "d": []any{1}}
	if v, ok := s.Int("a"); !ok || v != 3 {
		t.Errorf("Int(a) = %v, %v", v, ok)
	}
	if v, ok := s.Float("b"); !ok || v != 2.5 {
		t.Errorf("Float(b) = %v, %v", v, ok)
	}
	if !s.Bool("c") {
		t.Errorf("Bool(c) = false")
	}
	if _, ok := s.Float("d"); ok {
		t.Errorf("Float on a list must fail")
	}
	if _, ok := s.Float("missing"); ok {
		t.Errorf("Float on a missing key must fail")
	}
}
