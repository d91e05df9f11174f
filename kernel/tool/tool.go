package tool

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// Declaration describes a callable tool for prompt construction.
type Declaration struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Tool is the executable tool contract. Run is only ever invoked on the
// bridge executor goroutine, so implementations may touch host-owned state
// without locking.
type Tool interface {
	Name() string
	Description() string
	Declaration() Declaration
	Run(context.Context, map[string]any) (map[string]any, error)
}

// UnknownToolError reports a lookup miss together with every registered
// name, so callers can surface the full vocabulary to the requester.
type UnknownToolError struct {
	Name      string
	Available []string
}

func (e *UnknownToolError) Error() string {
	if e == nil {
		return "tool: unknown tool"
	}
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Registry is a fixed name-indexed tool table built once at process start.
type Registry struct {
	tools map[string]Tool
	names []string
}

// NewRegistry indexes tools by name. Names must be unique and non-empty.
func NewRegistry(tools []Tool) (*Registry, error) {
	out := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool: empty name")
		}
		if _, exists := out[name]; exists {
			return nil, fmt.Errorf("tool: duplicate tool %q", name)
		}
		out[name] = t
	}
	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{tools: out, names: names}, nil
}

// Lookup resolves a tool by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name, Available: r.Names()}
	}
	return t, nil
}

// Names returns the sorted registered tool names.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Declarations returns prompt-visible declarations in name order.
func (r *Registry) Declarations() []Declaration {
	decls := make([]Declaration, 0, len(r.names))
	for _, name := range r.names {
		decls = append(decls, r.tools[name].Declaration())
	}
	return decls
}
