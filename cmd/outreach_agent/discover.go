package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/types"
)

func newDiscoverCmd(opts *rootOptions) *cobra.Command {
	var (
		jobID   string
		pending bool
		status  string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find hiring managers, recruiters and team members for jobs",
		Long: `Search for contacts at the company of one job (--job-id) or of every job still waiting for contacts (--pending), save them to the record store and mark the jobs.

The job posting is scraped for a location to narrow the search.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (jobID == "") == !pending {
				return fmt.Errorf("exactly one of --job-id or --pending must be provided")
			}

			ctx := cmd.Context()
			var cl closers
			defer cl.close()

			store, err := openJobStore(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			rdb, err := openRedis(ctx, opts.cfg, &cl)
			if err != nil {
				return err
			}
			discoverer, err := newDiscoverer(opts.cfg, store, rdb, opts.logger)
			if err != nil {
				return err
			}

			p := opts.printer(cmd)
			if jobID != "" {
				result, err := discoverer.DiscoverForJob(ctx, jobID, limit)
				if err != nil {
					return err
				}
				if p != nil {
					p.PrintDiscovery(result)
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			results, err := discoverer.DiscoverPending(ctx, status, limit)
			if err != nil {
				return err
			}
			if p != nil {
				for _, r := range results {
					p.PrintDiscovery(r)
				}
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job record ID")
	cmd.Flags().BoolVar(&pending, "pending", false, "Process every job that still needs contacts")
	cmd.Flags().StringVar(&status, "status", "", "Job status filter for --pending (default: In progress)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Contacts per category (default 3)")
	return cmd
}

func newReadyCmd(opts *rootOptions) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "ready",
		Short: "List contacts waiting for outreach",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openJobStore(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			filter := make([]types.OutreachStatus, 0, len(statuses))
			for _, s := range statuses {
				filter = append(filter, types.OutreachStatus(s))
			}
			contacts, err := store.GetContactsReadyForOutreach(cmd.Context(), filter...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"count":    len(contacts),
				"contacts": contacts,
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Outreach statuses to include (default: Ready)")
	return cmd
}
