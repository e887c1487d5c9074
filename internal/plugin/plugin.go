// Package plugin resolves named capabilities from a fixed table.
package plugin

import (
	"context"
	"fmt"
	"sort"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/zeromicro/go-zero/core/logx"
)

// Plugin is a named capability with a single entry point.
type Plugin interface {
	Execute(ctx context.Context, args []any, kwargs map[string]any) (any, error)
}

// Func adapts a function to Plugin.
type Func func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

func (f Func) Execute(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	return f(ctx, args, kwargs)
}

// Factory builds one plugin instance.
type Factory func() Plugin

// Registry holds the plugins enabled at startup. It is never modified
// after NewRegistry returns.
type Registry struct {
	plugins map[string]Plugin
}

// NewRegistry instantiates every name in enabled from table. Names missing
// from table are logged and skipped. An empty enabled list loads the whole
// table.
func NewRegistry(table map[string]Factory, enabled []string) *Registry {
	r := &Registry{plugins: make(map[string]Plugin)}
	if len(enabled) == 0 {
		for name := range table {
			enabled = append(enabled, name)
		}
	}
	for _, name := range enabled {
		factory, ok := table[name]
		if !ok {
			logx.Errorf("Error loading plugin %s: not available", name)
			continue
		}
		r.plugins[name] = factory()
		logx.Infof("Loaded plugin: %s", name)
	}
	return r
}

// Get returns the named plugin.
func (r *Registry) Get(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// List returns the loaded plugin names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named plugin. A panic inside the plugin is reported as
// a plugin error.
func (r *Registry) Execute(ctx context.Context, name string, args []any, kwargs map[string]any) (result any, err error) {
	const op = "execute plugin"
	p, ok := r.plugins[name]
	if !ok {
		logx.WithContext(ctx).Infof("Plugin %s not found", name)
		return nil, apperr.New(apperr.KindPluginNotFound, op, "plugin %s not found", name)
	}

	defer func() {
		if v := recover(); v != nil {
			err = apperr.Wrap(apperr.KindPlugin, op+" "+name, fmt.Errorf("panic: %v", v))
		}
		if err != nil {
			logx.WithContext(ctx).Errorf("Error executing plugin %s: %v", name, err)
		}
	}()

	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	result, err = p.Execute(ctx, args, kwargs)
	if err != nil && apperr.KindOf(err) != apperr.KindPlugin {
		err = apperr.Wrap(apperr.KindPlugin, op+" "+name, err)
	}
	return result, err
}
