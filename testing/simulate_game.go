package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/tatianab/llmserver/internal/config"
	"github.com/tatianab/llmserver/internal/logic"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/tatianab/llmserver/internal/types"
)

const (
	gameContext   = "simulated-game"
	playerContext = "simulated-player"

	playerPrompt = "You are playing a text-based adventure game. Each turn you are shown what happened and a numbered list of actions. Reply with ONLY the number of the action you choose, or a short action of your own."
)

var (
	configFile    = flag.String("f", "etc/llmserver.yaml", "the config file")
	service       = flag.String("service", "groq", "service running the game master")
	model         = flag.String("model", "llama-3.1-70b-versatile", "game master model")
	playerService = flag.String("player-service", "", "service running the player (defaults to -service)")
	playerModel   = flag.String("player-model", "", "player model (defaults to -model)")
	maxTurns      = flag.Int("turns", 10, "number of turns to play")
)

func main() {
	flag.Parse()
	if *playerService == "" {
		*playerService = *service
	}
	if *playerModel == "" {
		*playerModel = *model
	}

	ctx := context.Background()
	c, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	c.Storage.Backend = config.StorageMemory

	svcCtx, err := svc.NewServiceContext(ctx, *c)
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}
	defer svcCtx.Close()
	l := logic.NewLogic(ctx, svcCtx)

	// 1. Create the game master and the player
	if _, err := l.CreateContext(&types.CreateContextReq{Name: gameContext, Service: *service, Model: *model, Scenario: "isekai"}); err != nil {
		log.Fatalf("Failed to create game context: %v", err)
	}
	if _, err := l.CreateContext(&types.CreateContextReq{Name: playerContext, Service: *playerService, Model: *playerModel, SystemPrompt: playerPrompt}); err != nil {
		log.Fatalf("Failed to create player context: %v", err)
	}

	// 2. Start the game
	fmt.Println("--- Starting Game ---")
	start, err := l.StartGame(gameContext)
	if err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}
	turn := start.InitialState
	printTurn(turn)

	// 3. Play
	for i := 1; i <= *maxTurns; i++ {
		fmt.Printf("--- Turn %d ---\n", i)

		action := getPlayerAction(l, turn)
		fmt.Printf("Player Action: %s\n", action)

		resp, err := l.GameTurn(&types.GameTurnReq{ContextName: gameContext, UserInput: action})
		if err != nil {
			fmt.Printf("Error processing turn: %v\n", err)
			break
		}
		turn = resp.GameResponse
		printTurn(turn)
	}

	if state, err := l.GameState(gameContext); err == nil {
		fmt.Printf("Game over after %d turns.\n", len(state.History)-1)
	}
	l.EndGame(gameContext)
}

func printTurn(t models.Turn) {
	fmt.Printf("GM: %s\n", t.Narration)
	if t.Image.Top != "" || t.Image.Bottom != "" {
		fmt.Printf("Image: %s / %s\n", t.Image.Top, t.Image.Bottom)
	}
	for i, a := range t.Actions {
		fmt.Printf("  %d. %s\n", i+1, a.Description)
	}
	fmt.Println()
}

// getPlayerAction asks the player context to choose. A numeric reply picks
// from the menu; anything else is played as written.
func getPlayerAction(l *logic.Logic, t models.Turn) string {
	var b strings.Builder
	b.WriteString(t.Narration + "\n\nActions:\n")
	for i, a := range t.Actions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Description)
	}

	resp, err := l.SendPrompt(&types.SendPromptReq{ContextName: playerContext, Prompt: b.String()})
	if err != nil {
		if len(t.Actions) > 0 {
			return t.Actions[0].Description
		}
		return "look around"
	}

	reply := strings.TrimSpace(resp.Response)
	if n, err := strconv.Atoi(strings.Trim(reply, ".")); err == nil && n >= 1 && n <= len(t.Actions) {
		return t.Actions[n-1].Description
	}
	if reply == "" {
		return "look around"
	}
	return reply
}
