package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/tools"
)

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeWarnings(w io.Writer, warnings []core.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w, "\nWarnings:")
	for _, warn := range warnings {
		fmt.Fprintf(w, "  - %s\n", warn)
	}
}

// joinWarnings returns the warnings of both stages in a new slice, leaving the
// inputs untouched.
func joinWarnings(first, second []core.Warning) []core.Warning {
	out := make([]core.Warning, 0, len(first)+len(second))
	out = append(out, first...)
	return append(out, second...)
}

// show prints the result of one lookup. JSON output encodes what fetch
// returns; text output is the answer of the named engine tool, so the CLI
// and the chat front-end phrase results the same way.
func show(cmd *cobra.Command, e *core.Engine, tool string, args interface{},
	fetch func(ctx context.Context) (interface{}, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if output == outputJSON {
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), v)
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encoding tool arguments: %w", err)
	}
	text, err := tools.ForEngine(e).Call(ctx, tool, string(raw))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
