// Package storage holds durable key-value backends for conversation contexts,
// keyed by context name.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/tatianab/llmserver/internal/models"
)

// ErrNotFound is returned by Load when no record exists for a name.
var ErrNotFound = errors.New("storage: context not found")

// Store persists context snapshots. Implementations must be safe for
// concurrent use.
type Store interface {
	Save(ctx context.Context, c *models.Context) error
	Load(ctx context.Context, name string) (*models.Context, error)
	Delete(ctx context.Context, name string) error
	LoadAll(ctx context.Context) ([]*models.Context, error)
}

// recordKey maps a context name to a file name or document id. Distinct
// names always get distinct keys.
func recordKey(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), ".", "%2E")
}
