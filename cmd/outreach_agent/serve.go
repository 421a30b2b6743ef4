package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/server"
	"github.com/jonathan/outreach-agent/internal/server/ratelimit"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Long:  `Start an HTTP server that exposes the health check and the webhook that automation workflows use to trigger agent actions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var cl closers
			defer cl.close()

			deps, err := buildDependencies(ctx, cfg, opts.logger, &cl)
			if err != nil {
				return err
			}

			rl := cfg.RateLimit
			srv := server.New(server.Config{
				Port:      cfg.Port,
				RateLimit: ratelimit.NewConfig(rl.Enabled, rl.Limit, rl.Window, rl.Whitelist, rl.Blacklist),
			}, deps, opts.logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides PORT)")
	return cmd
}
