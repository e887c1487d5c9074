package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/logic"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/tatianab/llmserver/internal/types"
)

const helpText = `Available commands:
  create_context <name> <service> <model> [system_prompt]
  create_game <name> <service> <model>
  list_contexts
  delete_context <name>
  copy_context <source> <destination> [keep_last_n]
  send_prompt <context_name> <prompt>
  list_models <service>
  model_info <service> <model>
  start_game <context_name>
  game_turn <context_name> <action>
  rollback <context_name> [steps]
  game_state <context_name>
  end_game <context_name>
  list_games
  execute_plugin <name> [args...] [key=value...]
  list_plugins
  help
  exit`

// Result is what the console shows after a command.
type Result struct {
	Output string
	// Game and Turn are set when the command changed a game.
	Game  string
	Turn  *models.Turn
	Ended bool
	Quit  bool
}

// Console runs text commands against the shared services.
type Console struct {
	svcCtx *svc.ServiceContext
}

func NewConsole(svcCtx *svc.ServiceContext) *Console {
	return &Console{svcCtx: svcCtx}
}

func usage(text string) error {
	return apperr.New(apperr.KindInvalidInput, "command", "usage: %s", text)
}

// Execute parses and runs one command line.
func (c *Console) Execute(ctx context.Context, line string) (Result, error) {
	args, err := splitArgs(line)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInvalidInput, "parse command", err)
	}
	if len(args) == 0 {
		return Result{}, nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	l := logic.NewLogic(ctx, c.svcCtx)

	switch cmd {
	case "help":
		return Result{Output: helpText}, nil

	case "exit", "quit":
		return Result{Output: "Exiting LLM Server Console.", Quit: true}, nil

	case "create_context", "create_game":
		if len(args) < 3 {
			return Result{}, usage(cmd + " <name> <service> <model> [system_prompt]")
		}
		req := &types.CreateContextReq{Name: args[0], Service: args[1], Model: args[2]}
		if cmd == "create_game" {
			req.Scenario = "isekai"
		} else {
			req.SystemPrompt = strings.Join(args[3:], " ")
		}
		s, err := l.CreateContext(req)
		if err != nil {
			return Result{}, err
		}
		return Result{Output: fmt.Sprintf("Context created: %s (%s:%s)", s.Name, s.Service, s.Model)}, nil

	case "list_contexts":
		list := l.ListContexts().Contexts
		if len(list) == 0 {
			return Result{Output: "No contexts."}, nil
		}
		lines := make([]string, 0, len(list))
		for _, s := range list {
			lines = append(lines, fmt.Sprintf("%s (%s:%s) %s", s.Name, s.Service, s.Model, s.SystemPrompt))
		}
		return Result{Output: strings.Join(lines, "\n")}, nil

	case "delete_context":
		if len(args) != 1 {
			return Result{}, usage("delete_context <name>")
		}
		resp, err := l.DeleteContext(args[0])
		if err != nil {
			return Result{}, err
		}
		return Result{Output: resp.Message, Game: args[0], Ended: true}, nil

	case "copy_context":
		if len(args) < 2 || len(args) > 3 {
			return Result{}, usage("copy_context <source> <destination> [keep_last_n]")
		}
		req := &types.CopyContextReq{Source: args[0], Destination: args[1]}
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return Result{}, usage("keep_last_n must be a number")
			}
			req.KeepLastN = &n
		}
		s, err := l.CopyContext(req)
		if err != nil {
			return Result{}, err
		}
		return Result{Output: fmt.Sprintf("Context copied: %s -> %s", args[0], s.Name)}, nil

	case "send_prompt":
		if len(args) < 2 {
			return Result{}, usage("send_prompt <context_name> <prompt>")
		}
		resp, err := l.SendPrompt(&types.SendPromptReq{ContextName: args[0], Prompt: strings.Join(args[1:], " ")})
		if err != nil {
			return Result{}, err
		}
		return Result{Output: "Assistant: " + resp.Response}, nil

	case "list_models":
		if len(args) != 1 {
			return Result{}, usage("list_models <service>")
		}
		resp, err := l.ListModels(args[0])
		if err != nil {
			return Result{}, err
		}
		return Result{Output: strings.Join(resp.Models, "\n")}, nil

	case "model_info":
		if len(args) != 2 {
			return Result{}, usage("model_info <service> <model>")
		}
		info, err := l.ModelInfo(args[0], args[1])
		if err != nil {
			return Result{}, err
		}
		if !info.Known {
			return Result{Output: fmt.Sprintf("%s: %s", info.Name, info.Error)}, nil
		}
		return Result{Output: fmt.Sprintf("%s (created %s)\n%s", info.Name, info.Created, info.Description)}, nil

	case "start_game":
		if len(args) != 1 {
			return Result{}, usage("start_game <context_name>")
		}
		resp, err := l.StartGame(args[0])
		if err != nil {
			return Result{}, err
		}
		return turnResult(args[0], resp.InitialState), nil

	case "game_turn":
		if len(args) < 2 {
			return Result{}, usage("game_turn <context_name> <action>")
		}
		resp, err := l.GameTurn(&types.GameTurnReq{ContextName: args[0], UserInput: strings.Join(args[1:], " ")})
		if err != nil {
			return Result{}, err
		}
		return turnResult(args[0], resp.GameResponse), nil

	case "rollback":
		if len(args) < 1 || len(args) > 2 {
			return Result{}, usage("rollback <context_name> [steps]")
		}
		steps := 1
		if len(args) == 2 {
			if steps, err = strconv.Atoi(args[1]); err != nil {
				return Result{}, usage("steps must be a number")
			}
		}
		resp, err := l.Rollback(&types.RollbackReq{ContextName: args[0], Steps: steps})
		if err != nil {
			return Result{}, err
		}
		return turnResult(args[0], resp.GameResponse), nil

	case "game_state":
		if len(args) != 1 {
			return Result{}, usage("game_state <context_name>")
		}
		state, err := l.GameState(args[0])
		if err != nil {
			return Result{}, err
		}
		r := turnResult(args[0], state.Current)
		r.Output = fmt.Sprintf("Turn %d\n%s", len(state.History), r.Output)
		return r, nil

	case "end_game":
		if len(args) != 1 {
			return Result{}, usage("end_game <context_name>")
		}
		return Result{Output: l.EndGame(args[0]).Message, Game: args[0], Ended: true}, nil

	case "list_games":
		games := l.ListGames().Games
		if len(games) == 0 {
			return Result{Output: "No active games."}, nil
		}
		return Result{Output: strings.Join(games, "\n")}, nil

	case "execute_plugin":
		if len(args) < 1 {
			return Result{}, usage("execute_plugin <name> [args...] [key=value...]")
		}
		req := &types.ExecutePluginReq{PluginName: args[0], Args: []any{}, Kwargs: map[string]any{}}
		for _, a := range args[1:] {
			if k, v, ok := strings.Cut(a, "="); ok && k != "" {
				req.Kwargs[k] = v
				continue
			}
			req.Args = append(req.Args, a)
		}
		resp, err := l.ExecutePlugin(req)
		if err != nil {
			return Result{}, err
		}
		return Result{Output: fmt.Sprintf("Plugin result: %v", resp.Result)}, nil

	case "list_plugins":
		return Result{Output: strings.Join(l.ListPlugins().Plugins, "\n")}, nil
	}

	return Result{}, apperr.New(apperr.KindInvalidInput, "command", "unknown command: %s. Type 'help' for a list of commands", cmd)
}

func turnResult(game string, t models.Turn) Result {
	return Result{Output: formatTurn(t), Game: game, Turn: &t}
}

func formatTurn(t models.Turn) string {
	var b strings.Builder
	b.WriteString(t.Narration)
	if t.Image.Top != "" || t.Image.Bottom != "" {
		fmt.Fprintf(&b, "\n\n[%s] / [%s]", t.Image.Top, t.Image.Bottom)
	}
	for i, a := range t.Actions {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, a.Description)
	}
	return b.String()
}

// splitArgs splits a command line on spaces, keeping quoted sections together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inArg   bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
