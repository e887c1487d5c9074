// Package conversation owns the live set of named contexts and keeps the
// durable store in step with it.
package conversation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/provider"
	"github.com/tatianab/llmserver/internal/storage"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/semaphore"
)

// Manager holds every live context. Callers only ever see clones.
//
// Each context carries an exclusive token. SendPrompt and AddMessage hold it
// for their whole duration so appends to one context never interleave.
// Writes to the store are best effort: a failed write is logged and the
// in-memory change stands.
type Manager struct {
	store storage.Store

	mu       sync.RWMutex
	contexts map[string]*entry
}

type entry struct {
	c     *models.Context
	token *semaphore.Weighted
}

func newEntry(c *models.Context) *entry {
	return &entry{c: c, token: semaphore.NewWeighted(1)}
}

// NewManager loads every record in store. Stored settings are laid over
// the service defaults key by key.
func NewManager(ctx context.Context, store storage.Store) (*Manager, error) {
	m := &Manager{store: store, contexts: make(map[string]*entry)}
	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "load contexts", err)
	}
	for _, c := range records {
		if c.Name == "" {
			continue
		}
		c.Settings = models.ResolveSettings(c.Service, c.Settings)
		if len(c.History) == 0 {
			c.History = []models.Message{{Role: models.RoleSystem, Content: c.SystemPrompt}}
		}
		m.contexts[c.Name] = newEntry(c)
	}
	logx.Infof("loaded %d contexts", len(m.contexts))
	return m, nil
}

// CreateContext registers a new context. nil settings select the service
// defaults; otherwise the given keys override the defaults.
func (m *Manager) CreateContext(ctx context.Context, name, service, model, systemPrompt string, settings models.Settings) error {
	const op = "create context"
	switch {
	case strings.TrimSpace(name) == "":
		return apperr.New(apperr.KindInvalidInput, op, "context name is required")
	case service == "":
		return apperr.New(apperr.KindInvalidInput, op, "service is required")
	case model == "":
		return apperr.New(apperr.KindInvalidInput, op, "model is required")
	}

	resolved := models.DefaultSettings(service)
	if settings != nil {
		resolved = models.ResolveSettings(service, settings)
	}
	c := models.NewContext(name, service, model, systemPrompt, resolved)

	m.mu.Lock()
	if _, ok := m.contexts[name]; ok {
		m.mu.Unlock()
		return apperr.New(apperr.KindAlreadyExists, op, "context '%s' already exists", name)
	}
	m.contexts[name] = newEntry(c)
	snapshot := c.Clone()
	m.mu.Unlock()

	m.persist(ctx, snapshot)
	logx.WithContext(ctx).Infof("Created new context: %s", name)
	return nil
}

// ListContexts returns a summary of every context, sorted by name.
func (m *Manager) ListContexts() []models.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Summary, 0, len(m.contexts))
	for _, e := range m.contexts {
		out = append(out, e.c.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeleteContext removes name from memory and from the store. It waits for
// any SendPrompt or AddMessage on name to finish so none of their writes
// land after the record is gone.
func (m *Manager) DeleteContext(ctx context.Context, name string) error {
	const op = "delete context"
	e, release, err := m.acquire(ctx, op, name)
	if err != nil {
		return err
	}
	defer release()

	// the entry stays in the map until the record is gone so a concurrent
	// create of the same name cannot have its record removed
	if err := m.store.Delete(ctx, name); err != nil {
		logx.WithContext(ctx).Errorf("%v", apperr.Wrap(apperr.KindPersistence, op+" "+name, err))
	}
	m.mu.Lock()
	if m.contexts[name] == e {
		delete(m.contexts, name)
	}
	m.mu.Unlock()

	logx.WithContext(ctx).Infof("Deleted context: %s", name)
	return nil
}

// GetContext returns a copy of the named context.
func (m *Manager) GetContext(name string) (*models.Context, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.contexts[name]
	if !ok {
		return nil, false
	}
	return e.c.Clone(), true
}

// AddMessage appends one entry to the history and persists the context.
func (m *Manager) AddMessage(ctx context.Context, name, role, content string) error {
	const op = "add message"
	if !models.ValidRole(role) {
		return apperr.New(apperr.KindInvalidInput, op, "invalid role %q", role)
	}
	e, release, err := m.acquire(ctx, op, name)
	if err != nil {
		return err
	}
	defer release()

	m.persist(ctx, m.appendMessage(e, role, content))
	return nil
}

// SendPrompt appends prompt as a user message, asks client for a reply on
// the updated history and appends a non-empty reply as the assistant. The
// user message stays in the history when generation fails.
func (m *Manager) SendPrompt(ctx context.Context, name, prompt string, client provider.Client) (string, error) {
	const op = "send prompt"
	e, release, err := m.acquire(ctx, op, name)
	if err != nil {
		return "", err
	}
	defer release()

	snapshot := m.appendMessage(e, models.RoleUser, prompt)
	m.persist(ctx, snapshot)

	reply, err := client.GenerateResponse(ctx, snapshot)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", apperr.New(apperr.KindProvider, op, "%s returned an empty response", client.Name())
	}

	m.persist(ctx, m.appendMessage(e, models.RoleAssistant, reply))
	return reply, nil
}

// CopyContext clones src into a new context named dst. With keepLastN set
// the copy keeps the system message plus the last N non-system entries.
func (m *Manager) CopyContext(ctx context.Context, src, dst string, keepLastN *int) error {
	const op = "copy context"
	if strings.TrimSpace(dst) == "" {
		return apperr.New(apperr.KindInvalidInput, op, "destination name is required")
	}
	if keepLastN != nil && *keepLastN < 0 {
		return apperr.New(apperr.KindInvalidInput, op, "keep_last_n must not be negative")
	}

	m.mu.Lock()
	source, ok := m.contexts[src]
	if !ok {
		m.mu.Unlock()
		return notFound(op, src)
	}
	if _, ok := m.contexts[dst]; ok {
		m.mu.Unlock()
		return apperr.New(apperr.KindAlreadyExists, op, "context '%s' already exists", dst)
	}
	c := source.c.Clone()
	c.Name = dst
	if keepLastN != nil {
		c.History = truncateHistory(c.History, *keepLastN)
	}
	m.contexts[dst] = newEntry(c)
	snapshot := c.Clone()
	m.mu.Unlock()

	m.persist(ctx, snapshot)
	logx.WithContext(ctx).Infof("Copied context %s to %s", src, dst)
	return nil
}

// truncateHistory keeps history[0] and the last n non-system entries after it.
func truncateHistory(history []models.Message, n int) []models.Message {
	if len(history) == 0 {
		return history
	}
	var rest []models.Message
	for _, msg := range history[1:] {
		if msg.Role != models.RoleSystem {
			rest = append(rest, msg)
		}
	}
	if len(rest) > n {
		rest = rest[len(rest)-n:]
	}
	return append([]models.Message{history[0]}, rest...)
}

// acquire takes the exclusive token of name. The returned release must be
// called once the caller is done with the entry.
func (m *Manager) acquire(ctx context.Context, op, name string) (*entry, func(), error) {
	m.mu.RLock()
	e, ok := m.contexts[name]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, notFound(op, name)
	}
	if err := e.token.Acquire(ctx, 1); err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInternal, op, err)
	}

	// the context may have been deleted or replaced while waiting
	m.mu.RLock()
	current, ok := m.contexts[name]
	m.mu.RUnlock()
	if !ok || current != e {
		e.token.Release(1)
		return nil, nil, notFound(op, name)
	}
	return e, func() { e.token.Release(1) }, nil
}

// appendMessage mutates e under the map lock and returns a snapshot.
func (m *Manager) appendMessage(e *entry, role, content string) *models.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.c.AddMessage(role, content)
	return e.c.Clone()
}

func (m *Manager) persist(ctx context.Context, c *models.Context) {
	if err := m.store.Save(ctx, c); err != nil {
		logx.WithContext(ctx).Errorf("%v", apperr.Wrap(apperr.KindPersistence, "save context "+c.Name, err))
	}
}

func notFound(op, name string) error {
	return apperr.New(apperr.KindNotFound, op, "context '%s' does not exist", name)
}
