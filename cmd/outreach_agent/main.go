// Package main provides the entry point for the outreach agent CLI and webhook server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/observability"
)

// rootOptions carries the loaded configuration to every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "outreach_agent",
		Short: "Job outreach assistant",
		Long: `Outreach agent finds contacts for tracked job applications, drafts LinkedIn messages for them and routes every draft through human approval.

Configuration is read from .env, an optional JSON file (--config) and the environment, in that order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json file (environment variables override it)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print human-readable summaries to stderr")

	cmd.AddCommand(
		newServeCmd(opts),
		newContextCmd(opts),
		newGenerateCmd(opts),
		newRefineCmd(opts),
		newRouteCmd(opts),
		newSkillCheckCmd(opts),
		newNetworkCmd(opts),
		newClassifyCmd(opts),
		newContentCmd(opts),
		newDiscoverCmd(opts),
		newReadyCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load(logOut io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.verbose {
		cfg.Verbose = true
	}

	o.cfg = cfg
	o.logger = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: logOut})
	slog.SetDefault(o.logger)
	return nil
}

// printer returns a verbose printer on stderr, or nil when not verbose.
func (o *rootOptions) printer(cmd *cobra.Command) *observability.Printer {
	if o.cfg == nil || !o.cfg.Verbose {
		return nil
	}
	return observability.NewPrinter(cmd.ErrOrStderr())
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
