// Package logic implements the operations offered by the HTTP API and the
// console. Both front ends go through the same Logic so they report the
// same failures.
package logic

import (
	"context"
	"strings"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/engine"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/provider"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/tatianab/llmserver/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
)

const DefaultSystemPrompt = "You are a helpful assistant."

type Logic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLogic(ctx context.Context, svcCtx *svc.ServiceContext) *Logic {
	return &Logic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func required(op, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.New(apperr.KindInvalidInput, op, "missing required field: %s", field)
	}
	return nil
}

func (l *Logic) CreateContext(req *types.CreateContextReq) (*models.Summary, error) {
	const op = "create context"
	if err := required(op, "name", req.Name); err != nil {
		return nil, err
	}
	if !l.svcCtx.Registry.Has(req.Service) {
		return nil, apperr.New(apperr.KindUnknownService, op, "invalid service: %s", req.Service)
	}

	systemPrompt := req.SystemPrompt
	if req.Scenario != "" {
		p, ok := engine.ScenarioPrompt(req.Scenario)
		if !ok {
			return nil, apperr.New(apperr.KindInvalidInput, op, "unknown scenario: %s", req.Scenario)
		}
		systemPrompt = p
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	var settings models.Settings
	if req.Settings != nil {
		settings = models.Settings(req.Settings)
	}
	if err := l.svcCtx.Manager.CreateContext(l.ctx, req.Name, req.Service, req.Model, systemPrompt, settings); err != nil {
		return nil, err
	}
	return l.summary(req.Name)
}

func (l *Logic) ListContexts() *types.ContextsResp {
	return &types.ContextsResp{Contexts: l.svcCtx.Manager.ListContexts()}
}

func (l *Logic) DeleteContext(name string) (*types.StatusResp, error) {
	if err := l.svcCtx.Manager.DeleteContext(l.ctx, name); err != nil {
		return nil, err
	}
	l.svcCtx.Engine.EndGame(l.ctx, name)
	return &types.StatusResp{Status: "success", Message: "Context '" + name + "' deleted"}, nil
}

func (l *Logic) CopyContext(req *types.CopyContextReq) (*models.Summary, error) {
	if err := required("copy context", "source", req.Source); err != nil {
		return nil, err
	}
	if err := l.svcCtx.Manager.CopyContext(l.ctx, req.Source, req.Destination, req.KeepLastN); err != nil {
		return nil, err
	}
	return l.summary(req.Destination)
}

func (l *Logic) summary(name string) (*models.Summary, error) {
	c, ok := l.svcCtx.Manager.GetContext(name)
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "get context", "context '%s' does not exist", name)
	}
	s := c.Summarize()
	return &s, nil
}

func (l *Logic) SendPrompt(req *types.SendPromptReq) (*types.SendPromptResp, error) {
	const op = "send prompt"
	if err := required(op, "context_name", req.ContextName); err != nil {
		return nil, err
	}
	if err := required(op, "prompt", req.Prompt); err != nil {
		return nil, err
	}
	client, err := l.clientFor(op, req.ContextName)
	if err != nil {
		return nil, err
	}
	reply, err := l.svcCtx.Manager.SendPrompt(l.ctx, req.ContextName, req.Prompt, client)
	if err != nil {
		return nil, err
	}
	return &types.SendPromptResp{ContextName: req.ContextName, Response: reply}, nil
}

func (l *Logic) clientFor(op, name string) (provider.Client, error) {
	c, ok := l.svcCtx.Manager.GetContext(name)
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, op, "context '%s' does not exist", name)
	}
	return l.svcCtx.Registry.Get(c.Service)
}

func (l *Logic) ListModels(service string) (*types.ModelsResp, error) {
	client, err := l.svcCtx.Registry.Get(service)
	if err != nil {
		return nil, err
	}
	names, err := client.ListModels(l.ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return &types.ModelsResp{Service: service, Models: names}, nil
}

func (l *Logic) ModelInfo(service, model string) (*provider.ModelInfo, error) {
	client, err := l.svcCtx.Registry.Get(service)
	if err != nil {
		return nil, err
	}
	info := client.GetModelInfo(l.ctx, model)
	return &info, nil
}

func (l *Logic) StartGame(contextName string) (*types.StartGameResp, error) {
	turn, err := l.svcCtx.Engine.StartGame(l.ctx, contextName)
	if err != nil {
		return nil, err
	}
	return &types.StartGameResp{InitialState: turn}, nil
}

func (l *Logic) GameTurn(req *types.GameTurnReq) (*types.GameTurnResp, error) {
	turn, err := l.svcCtx.Engine.ProcessTurn(l.ctx, req.ContextName, req.UserInput)
	if err != nil {
		return nil, err
	}
	return &types.GameTurnResp{GameResponse: turn}, nil
}

func (l *Logic) EndGame(contextName string) *types.StatusResp {
	l.svcCtx.Engine.EndGame(l.ctx, contextName)
	return &types.StatusResp{Status: "success", Message: "Game ended for context '" + contextName + "'"}
}

func (l *Logic) GameState(contextName string) (*engine.GameState, error) {
	state, ok := l.svcCtx.Engine.State(contextName)
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "game state", "no active game for context: %s", contextName)
	}
	return state, nil
}

func (l *Logic) ListGames() *types.GamesResp {
	return &types.GamesResp{Games: l.svcCtx.Engine.ActiveGames()}
}

func (l *Logic) Rollback(req *types.RollbackReq) (*types.GameTurnResp, error) {
	turn, err := l.svcCtx.Engine.Rollback(req.ContextName, req.Steps)
	if err != nil {
		return nil, err
	}
	return &types.GameTurnResp{GameResponse: turn}, nil
}

func (l *Logic) ExecutePlugin(req *types.ExecutePluginReq) (*types.PluginResultResp, error) {
	result, err := l.svcCtx.Plugins.Execute(l.ctx, req.PluginName, req.Args, req.Kwargs)
	if err != nil {
		return nil, err
	}
	return &types.PluginResultResp{Result: result}, nil
}

func (l *Logic) ListPlugins() *types.PluginsResp {
	return &types.PluginsResp{Plugins: l.svcCtx.Plugins.List()}
}

func (l *Logic) Health() *types.HealthResp {
	return &types.HealthResp{
		Status:   "ok",
		Services: l.svcCtx.Registry.Names(),
		Contexts: len(l.svcCtx.Manager.ListContexts()),
		Games:    len(l.svcCtx.Engine.ActiveGames()),
	}
}
