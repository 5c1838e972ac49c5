package tools_test

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsense/shelfsense-go/pkg/tools"
)

type echoArgs struct {
	Zone  string `json:"zone" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func echoTool() tools.Tool {
	return tools.Tool{
		Name:        "echo",
		Description: "Echoes the zone.",
		Category:    tools.CategoryOptimization,
		Parameters: jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: map[string]jsonschema.Definition{"zone": {Type: jsonschema.String}},
			Required:   []string{"zone"},
		},
		Handler: tools.Typed(func(ctx context.Context, in echoArgs) (string, error) {
			if in.Zone == "boom" {
				return "", errors.New("exploded")
			}
			return "zone " + in.Zone, nil
		}),
	}
}

func TestRegistry_Register(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(echoTool()))

	err := r.Register(echoTool())
	assert.True(t, errors.Is(err, tools.ErrDuplicateTool))

	err = r.Register(tools.Tool{Name: "no-handler"})
	assert.True(t, errors.Is(err, tools.ErrInvalidArguments))

	require.NoError(t, r.Register(tools.Tool{
		Name:    "bare",
		Handler: func(ctx context.Context, _ string) (string, error) { return "ok", nil },
	}))
	assert.Equal(t, []string{"echo", "bare"}, r.Names())

	bare, ok := r.Lookup("bare")
	require.True(t, ok)
	assert.Equal(t, jsonschema.Object, bare.Parameters.Type)
}

func TestRegistry_FunctionDefinitions(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(echoTool()))

	defs := r.FunctionDefinitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "echo", defs[0].Name)
	assert.Equal(t, "Echoes the zone.", defs[0].Description)

	params, ok := defs[0].Parameters.(jsonschema.Definition)
	require.True(t, ok)
	assert.Equal(t, []string{"zone"}, params.Required)
}

func TestRegistry_Dispatch(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(echoTool()))
	ctx := context.Background()

	tests := []struct {
		name     string
		call     openai.FunctionCall
		expected string
	}{
		{
			name:     "typed arguments",
			call:     openai.FunctionCall{Name: "echo", Arguments: `{"zone":"A1","count":2}`},
			expected: "zone A1",
		},
		{
			name:     "unknown tool",
			call:     openai.FunctionCall{Name: "nope"},
			expected: `Unknown tool "nope". Available tools: echo.`,
		},
		{
			name:     "handler error",
			call:     openai.FunctionCall{Name: "echo", Arguments: `{"zone":"boom"}`},
			expected: "Failed to run echo due to an error: exploded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Dispatch(ctx, tt.call))
		})
	}

	t.Run("invalid arguments", func(t *testing.T) {
		for _, args := range []string{`{"zone":`, `{}`, `{"zone":"A1","count":-1}`} {
			out := r.Dispatch(ctx, openai.FunctionCall{Name: "echo", Arguments: args})
			assert.Contains(t, out, "Invalid arguments for echo", args)
		}
	})

	t.Run("call returns raw errors", func(t *testing.T) {
		_, err := r.Call(ctx, "echo", "")
		assert.True(t, errors.Is(err, tools.ErrInvalidArguments))
		_, err = r.Call(ctx, "nope", "")
		assert.True(t, errors.Is(err, tools.ErrUnknownTool))
	})
}
