package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSkillCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		jobDescFile   string
		skill         string
		applicationID int
		role          string
	)

	cmd := &cobra.Command{
		Use:   "skill-check",
		Short: "Check whether a job asks for a skill the resume lacks",
		Long:  "Compare a job description against the tailored resume for --application-id, or the generic resume for --role, and report a gap for the skill.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			jd, err := os.ReadFile(jobDescFile)
			if err != nil {
				return fmt.Errorf("failed to read job description: %w", err)
			}
			if skill == "" {
				skill = opts.cfg.TargetSkill
			}

			var cl closers
			defer cl.close()
			resumes, err := openResumes(ctx, opts.cfg, opts.logger, &cl)
			if err != nil {
				return err
			}

			var appID *int
			if cmd.Flags().Changed("application-id") {
				appID = &applicationID
			}
			match, err := resumes.CheckSkill(ctx, string(jd), skill, appID, role)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), match)
		},
	}

	cmd.Flags().StringVarP(&jobDescFile, "job-description", "j", "", "Path to job description text file (required)")
	cmd.Flags().StringVar(&skill, "skill", "", "Skill keyword (default: configured target skill)")
	cmd.Flags().IntVar(&applicationID, "application-id", 0, "Application ID of a tailored resume")
	cmd.Flags().StringVar(&role, "role", "", "Job role used to pick the generic resume")
	_ = cmd.MarkFlagRequired("job-description")
	return cmd
}
