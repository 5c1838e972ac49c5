package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List, route or call the engine tools",
	Long: `The engine tools are the capabilities offered to a chat front-end as
OpenAI function definitions.

Examples:
  shelfsense tools list -o json
  shelfsense tools route "which zones are cold?"
  shelfsense tools call get_zone_performance '{"zone_id":"A1"}'`,
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the engine tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			reg := tools.ForEngine(e)
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), reg.FunctionDefinitions())
			}
			return printTools(cmd, reg.Tools())
		})
	},
}

var toolsRouteCmd = &cobra.Command{
	Use:   "route QUERY",
	Short: "Show which tools a question is routed to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			query := strings.Join(args, " ")
			reg := tools.ForEngine(e)
			if output == outputJSON {
				category, defs := reg.RouteDefinitions(query)
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"category":  category,
					"functions": defs,
				})
			}
			category, routed := reg.Route(query)
			fmt.Fprintf(cmd.OutOrStdout(), "Category: %s\n", category)
			return printTools(cmd, routed)
		})
	},
}

var toolsCallCmd = &cobra.Command{
	Use:   "call NAME [ARGUMENTS]",
	Short: "Call one tool the way the chat front-end does",
	Long: `Call a tool with JSON arguments and print its answer. Errors are
reported as text, exactly as a model would receive them.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			call := openai.FunctionCall{Name: args[0]}
			if len(args) == 2 {
				call.Arguments = args[1]
			}
			answer := tools.ForEngine(e).Dispatch(ctx, call)
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"tool": call.Name, "answer": answer})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		})
	},
}

func init() {
	toolsCmd.AddCommand(toolsListCmd, toolsRouteCmd, toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

func printTools(cmd *cobra.Command, list []tools.Tool) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tDESCRIPTION")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Category, t.Description)
	}
	return w.Flush()
}
