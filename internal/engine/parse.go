package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/models"
)

// ParseTurn decodes a game master reply. The whole text is tried first,
// then the span from the first '{' to the last '}'.
func ParseTurn(text string) (models.Turn, error) {
	turn, err := decodeTurn(text)
	if err == nil {
		return turn, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return models.Turn{}, apperr.New(apperr.KindMalformedGameResponse, "parse turn", "no JSON object found in response")
	}
	turn, err = decodeTurn(text[start : end+1])
	if err != nil {
		return models.Turn{}, &apperr.Error{
			Kind: apperr.KindMalformedGameResponse,
			Op:   "parse turn",
			Msg:  "could not parse response as JSON",
			Err:  err,
		}
	}
	return turn, nil
}

func decodeTurn(text string) (models.Turn, error) {
	var turn models.Turn
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &turn); err != nil {
		return models.Turn{}, err
	}
	if strings.TrimSpace(turn.Narration) == "" {
		return models.Turn{}, fmt.Errorf("turn has no narration")
	}
	return turn, nil
}
