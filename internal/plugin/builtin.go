package plugin

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Builtin is the table of plugins compiled into the server.
var Builtin = map[string]Factory{
	"example_plugin": func() Plugin { return Func(example) },
	"dice":           func() Plugin { return Func(rollDice) },
}

func example(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	return map[string]any{
		"status":  "success",
		"message": "Example plugin executed successfully",
		"args":    args,
		"kwargs":  kwargs,
	}, nil
}

const maxDice = 100

// rollDice rolls dice written as NdM, e.g. "2d6". The notation comes from
// args[0] or kwargs["dice"] and defaults to 1d20.
func rollDice(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	notation := "1d20"
	if v, ok := kwargs["dice"]; ok {
		notation = fmt.Sprint(v)
	} else if len(args) > 0 {
		notation = fmt.Sprint(args[0])
	}

	count, sides, err := parseDice(notation)
	if err != nil {
		return nil, err
	}
	rolls := make([]int, count)
	total := 0
	for i := range rolls {
		rolls[i] = rand.IntN(sides) + 1
		total += rolls[i]
	}
	return map[string]any{"dice": notation, "rolls": rolls, "total": total}, nil
}

func parseDice(notation string) (count, sides int, err error) {
	n, m, ok := strings.Cut(strings.ToLower(strings.TrimSpace(notation)), "d")
	if !ok {
		return 0, 0, fmt.Errorf("invalid dice notation %q", notation)
	}
	count = 1
	if n != "" {
		if count, err = strconv.Atoi(n); err != nil {
			return 0, 0, fmt.Errorf("invalid dice count in %q", notation)
		}
	}
	if sides, err = strconv.Atoi(m); err != nil {
		return 0, 0, fmt.Errorf("invalid dice sides in %q", notation)
	}
	if count < 1 || count > maxDice || sides < 2 {
		return 0, 0, fmt.Errorf("dice out of range: %q", notation)
	}
	return count, sides, nil
}
