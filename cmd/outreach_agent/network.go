package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/network"
	"github.com/jonathan/outreach-agent/internal/types"
)

func newNetworkCmd(opts *rootOptions) *cobra.Command {
	var (
		csvPath       string
		jobsFromStore bool
		exact         bool
		company       string
	)

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Find connections who work at companies you applied to",
		Long: `Parse a LinkedIn connections export and match it against in-progress job applications from the record store (--jobs-from-store), or look up connections at one company (--company).

Without either flag only the network statistics are printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open connections export: %w", err)
			}
			defer func() { _ = file.Close() }()

			conns, err := network.ParseCSV(file)
			if err != nil {
				return err
			}

			stats := network.Stats(conns)
			out := map[string]any{"network_stats": stats}
			p := opts.printer(cmd)

			if company != "" {
				out["company"] = company
				out["connections"] = network.FindByCompany(conns, company)
			}

			if jobsFromStore {
				store, err := openJobStore(opts.cfg, opts.logger)
				if err != nil {
					return err
				}
				var jobs []types.JobApplication
				if jobs, err = store.GetActiveJobs(cmd.Context()); err != nil {
					return err
				}
				overlap := network.AnalyzeOverlap(conns, jobs, !exact)
				out["overlap"] = overlap
				if p != nil {
					p.PrintOverlap(overlap)
				}
			}

			if p != nil {
				p.PrintNetworkStats(stats)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to Connections.csv export (required)")
	cmd.Flags().BoolVar(&jobsFromStore, "jobs-from-store", false, "Match against in-progress jobs in the record store")
	cmd.Flags().BoolVar(&exact, "exact", false, "Require exact company names instead of fuzzy matching")
	cmd.Flags().StringVar(&company, "company", "", "List connections at this company")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
