package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/logging"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var (
	// Global flags
	cfgFile  string
	output   string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shelfsense",
	Short: "ShelfSense relocation intelligence engine",
	Long: `shelfsense scores every product against the store zones and plans
relocations that bring high-demand products to where the customers are.

Pipeline:
  insights   Merge layout, movements and online views
  score      Score every product and zone
  plan       Plan relocations and record them in the decision log
  run        Run the whole pipeline and write the output tables

Lookups:
  zone       Performance of one zone
  product    Insights for one product
  zones      Hot and cold zones
  explain    Why a product is (or is not) being moved
  simulate   What-if estimate of moving a product
  outcomes   Past relocations from the decision log
  stock      Low stock alerts
  declines   Products with declining sales

Memory:
  record     Record the observed outcome of a relocation

Tools:
  tools      List, route or call the engine tools`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if output != outputText && output != outputJSON {
			return fmt.Errorf("unsupported output format %q (want %s or %s)", output, outputText, outputJSON)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (.json, .yaml or .env; default: environment)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", outputText, "Output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

// openEngine loads the configuration, initializes logging and creates the
// engine.
func openEngine() (*core.Engine, error) {
	cfg, err := core.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.Init(cfg.Logging)

	return core.NewEngine(cfg)
}

// withEngine runs fn against a freshly opened engine and closes it afterwards.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *core.Engine) error) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("closing engine")
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, e)
}
