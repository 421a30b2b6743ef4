package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/content"
)

func newContentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "content <knowledge-page-id>",
		Short: "Turn a knowledge page into a LinkedIn post and a video script",
		Long:  "Read a knowledge-base page, draft a LinkedIn post and a 60-second video script from it, and save both as a Drafting page in the content database linked to the source.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := openLLM(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			pages, err := openKnowledge(opts.cfg, opts.logger)
			if err != nil {
				return err
			}

			pkg, err := content.NewEngine(client, pages, opts.logger).GeneratePackage(ctx, args[0])
			var step *content.StepError
			if err != nil && !(pkg != nil && errors.As(err, &step) && step.Step == "save") {
				return err
			}
			if printErr := printJSON(cmd.OutOrStdout(), pkg); printErr != nil {
				return printErr
			}
			// The drafts are printed before a save failure is reported.
			return err
		},
	}
}
