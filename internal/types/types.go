// Package types holds the request and response bodies of the HTTP API.
package types

import "github.com/tatianab/llmserver/internal/models"

type CreateContextReq struct {
	Name         string         `json:"name"`
	Service      string         `json:"service"`
	Model        string         `json:"model"`
	SystemPrompt string         `json:"system_prompt,optional"`
	Scenario     string         `json:"scenario,optional"`
	Settings     map[string]any `json:"settings,optional"`
}

type DeleteContextReq struct {
	Name string `json:"name"`
}

type CopyContextReq struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	KeepLastN   *int   `json:"keep_last_n,optional"`
}

type ContextsResp struct {
	Contexts []models.Summary `json:"contexts"`
}

type SendPromptReq struct {
	ContextName string `json:"context_name"`
	Prompt      string `json:"prompt"`
}

type SendPromptResp struct {
	ContextName string `json:"context_name"`
	Response    string `json:"response"`
}

type ListModelsReq struct {
	Service string `form:"service"`
}

type ModelsResp struct {
	Service string   `json:"service"`
	Models  []string `json:"models"`
}

type ModelInfoReq struct {
	Service string `form:"service"`
	Model   string `form:"model"`
}

type ContextNameReq struct {
	ContextName string `json:"context_name"`
}

type GameStateReq struct {
	ContextName string `form:"context_name"`
}

type GameTurnReq struct {
	ContextName string `json:"context_name"`
	UserInput   string `json:"user_input"`
}

type RollbackReq struct {
	ContextName string `json:"context_name"`
	Steps       int    `json:"steps,default=1"`
}

type StartGameResp struct {
	InitialState models.Turn `json:"initial_state"`
}

type GameTurnResp struct {
	GameResponse models.Turn `json:"game_response"`
}

type GamesResp struct {
	Games []string `json:"games"`
}

type ExecutePluginReq struct {
	PluginName string         `json:"plugin_name"`
	Args       []any          `json:"args,optional"`
	Kwargs     map[string]any `json:"kwargs,optional"`
}

type PluginResultResp struct {
	Result any `json:"result"`
}

type PluginsResp struct {
	Plugins []string `json:"plugins"`
}

type StatusResp struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthResp struct {
	Status   string   `json:"status"`
	Services []string `json:"services"`
	Contexts int      `json:"contexts"`
	Games    int      `json:"games"`
}

type ErrorResp struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GameFrame is one websocket message of a game session, in either direction.
type GameFrame struct {
	Type   string       `json:"type"`
	Action string       `json:"action,omitempty"`
	Steps  int          `json:"steps,omitempty"`
	Turn   *models.Turn `json:"turn,omitempty"`
	Error  string       `json:"error,omitempty"`
}
