// Package tools exposes engine operations as named tools for a
// conversational front-end.
//
// A Registry maps a tool name to a typed handler and the JSON schema of its
// arguments. The registry is plain data: tools are registered explicitly
// and exported as OpenAI function definitions, and a function call returned
// by the model is dispatched back to its handler. Dispatch always returns
// text, so the conversational layer never sees a raw error.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/shelfsense/shelfsense-go/pkg/logging"
)

var (
	// ErrUnknownTool indicates that no tool is registered under a name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool indicates that a name is already registered.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrInvalidArguments indicates that call arguments could not be decoded
	// or failed validation.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Handler runs one tool. arguments is the JSON object sent by the model.
type Handler func(ctx context.Context, arguments string) (string, error)

// Tool is one registered capability.
type Tool struct {
	// Name is the function name exposed to the model.
	Name string

	// Description tells the model when to call the tool.
	Description string

	// Category groups the tool for query routing (see ClassifyQuery).
	Category string

	// Parameters is the JSON schema of the arguments object.
	Parameters jsonschema.Definition

	Handler Handler
}

// Registry holds tools in registration order. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		log:   logging.With("tools"),
	}
}

// Register adds a tool. Names must be unique and a handler is required.
func (r *Registry) Register(t Tool) error {
	if strings.TrimSpace(t.Name) == "" || t.Handler == nil {
		return fmt.Errorf("Register: %w: tool needs a name and a handler", ErrInvalidArguments)
	}
	if t.Parameters.Type == "" {
		t.Parameters = jsonschema.Definition{Type: jsonschema.Object, Properties: map[string]jsonschema.Definition{}}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("Register: %w: %s", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Tools returns the tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, len(r.order))
	for i, name := range r.order {
		out[i] = r.tools[name]
	}
	return out
}

// FunctionDefinitions exports every tool as an OpenAI function definition.
func (r *Registry) FunctionDefinitions() []openai.FunctionDefinition {
	return definitions(r.Tools())
}

func definitions(tools []Tool) []openai.FunctionDefinition {
	out := make([]openai.FunctionDefinition, len(tools))
	for i, t := range tools {
		out[i] = openai.FunctionDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		}
	}
	return out
}

// Call runs the named tool and returns its raw result.
func (r *Registry) Call(ctx context.Context, name, arguments string) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("Call: %w: %s", ErrUnknownTool, name)
	}
	return t.Handler(ctx, arguments)
}

// Dispatch runs a function call returned by the model. Errors are turned
// into descriptive text.
func (r *Registry) Dispatch(ctx context.Context, call openai.FunctionCall) string {
	r.log.Debug().Str("tool", call.Name).Msg("dispatching tool call")

	out, err := r.Call(ctx, call.Name, call.Arguments)
	switch {
	case err == nil:
		return out
	case errors.Is(err, ErrUnknownTool):
		return fmt.Sprintf("Unknown tool %q. Available tools: %s.", call.Name, strings.Join(r.Names(), ", "))
	case errors.Is(err, ErrInvalidArguments):
		return fmt.Sprintf("Invalid arguments for %s: %v", call.Name, err)
	default:
		r.log.Error().Err(err).Str("tool", call.Name).Msg("tool call failed")
		return fmt.Sprintf("Failed to run %s due to an error: %v", call.Name, err)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Typed adapts a handler taking a decoded argument struct. Empty arguments
// decode to the zero value; the struct's validate tags are then checked.
//
// Example:
//
//	type zoneArgs struct {
//	    ZoneID string `json:"zone_id" validate:"required"`
//	}
//	handler := tools.Typed(func(ctx context.Context, in zoneArgs) (string, error) {
//	    return "Zone " + in.ZoneID, nil
//	})
func Typed[T any](fn func(ctx context.Context, in T) (string, error)) Handler {
	return func(ctx context.Context, arguments string) (string, error) {
		var in T
		if s := strings.TrimSpace(arguments); s != "" && s != "null" {
			if err := json.Unmarshal([]byte(s), &in); err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
		}
		if err := validate.Struct(&in); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		return fn(ctx, in)
	}
}
