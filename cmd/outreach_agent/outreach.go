package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/outreach"
	"github.com/jonathan/outreach-agent/internal/types"
)

// openContextResolver wires the record store and the resume store.
func openContextResolver(ctx context.Context, opts *rootOptions, cl *closers) (*outreach.ContextResolver, error) {
	store, err := openJobStore(opts.cfg, opts.logger)
	if err != nil {
		return nil, err
	}
	resumes, err := openResumes(ctx, opts.cfg, opts.logger, cl)
	if err != nil {
		return nil, err
	}
	return outreach.NewContextResolver(store, resumes, opts.cfg.TargetSkill, opts.logger), nil
}

func newContextCmd(opts *rootOptions) *cobra.Command {
	var contactID string

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Resolve everything needed to draft a message for a contact",
		Long:  "Look up the contact and its job application, resolve the cold email or resume fallback, check the target skill and pick the message pipeline.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var cl closers
			defer cl.close()

			resolver, err := openContextResolver(ctx, opts, &cl)
			if err != nil {
				return err
			}
			oc, err := resolver.Resolve(ctx, contactID)
			if err != nil {
				return err
			}

			if p := opts.printer(cmd); p != nil {
				p.PrintOutreachContext(oc)
			}
			return printJSON(cmd.OutOrStdout(), oc)
		},
	}

	cmd.Flags().StringVar(&contactID, "contact-id", "", "Contact record ID (required)")
	_ = cmd.MarkFlagRequired("contact-id")
	return cmd
}

type generateFlags struct {
	contactID     string
	name          string
	title         string
	contactType   string
	degree        string
	source        string
	company       string
	role          string
	jobDescFile   string
	coldEmailFile string
	highlights    string
	connectedOn   string
}

// input builds the message input from flags. The job description and cold
// email are read from files.
func (f *generateFlags) input() (outreach.MessageInput, error) {
	in := outreach.MessageInput{
		ContactName:      f.name,
		ContactTitle:     f.title,
		ContactType:      types.ContactType(f.contactType),
		ConnectionDegree: types.ConnectionDegree(f.degree),
		ContactSource:    types.ContactSource(f.source),
		Company:          f.company,
		Role:             f.role,
		ConnectedOn:      f.connectedOn,
		Value:            outreach.ValueInput{ResumeHighlights: f.highlights},
	}
	if f.jobDescFile != "" {
		data, err := os.ReadFile(f.jobDescFile)
		if err != nil {
			return in, fmt.Errorf("failed to read job description: %w", err)
		}
		in.JobDescription = string(data)
	}
	if f.coldEmailFile != "" {
		data, err := os.ReadFile(f.coldEmailFile)
		if err != nil {
			return in, fmt.Errorf("failed to read cold email: %w", err)
		}
		in.Value.ColdEmail = string(data)
	}
	return in, nil
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft an outreach message",
		Long: `Draft a message for a stored contact (--contact-id) or for a contact described by flags.

First-degree connections and imported network contacts get an unconstrained direct message; everyone else gets a connection note within the length limit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var cl closers
			defer cl.close()

			var in outreach.MessageInput
			if f.contactID != "" {
				resolver, err := openContextResolver(ctx, opts, &cl)
				if err != nil {
					return err
				}
				oc, err := resolver.Resolve(ctx, f.contactID)
				if err != nil {
					return err
				}
				if p := opts.printer(cmd); p != nil {
					p.PrintOutreachContext(oc)
				}
				in = outreach.MessageInputFromContext(oc)
			} else {
				if f.name == "" || f.company == "" || f.role == "" {
					return fmt.Errorf("either --contact-id or --name, --company and --role must be provided")
				}
				var err error
				if in, err = f.input(); err != nil {
					return err
				}
			}

			client, err := openLLM(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			draft, err := newGenerator(client, opts.cfg, opts.logger).GenerateMessage(ctx, in)
			if err != nil {
				return err
			}
			if p := opts.printer(cmd); p != nil {
				p.PrintDraft(draft)
			}
			return printJSON(cmd.OutOrStdout(), draft)
		},
	}

	cmd.Flags().StringVar(&f.contactID, "contact-id", "", "Contact record ID; resolves everything else from the stores")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Contact name")
	cmd.Flags().StringVar(&f.title, "title", "", "Contact job title")
	cmd.Flags().StringVar(&f.contactType, "type", "", "Contact type: hiring_manager, recruiter, team_member")
	cmd.Flags().StringVar(&f.degree, "degree", "", "Connection degree: 1st, 2nd, 3rd")
	cmd.Flags().StringVar(&f.source, "source", "", "Contact source: apollo, csv_import")
	cmd.Flags().StringVarP(&f.company, "company", "c", "", "Company name")
	cmd.Flags().StringVarP(&f.role, "role", "r", "", "Job title applied for")
	cmd.Flags().StringVar(&f.jobDescFile, "job-description", "", "Path to job description text file")
	cmd.Flags().StringVar(&f.coldEmailFile, "cold-email", "", "Path to cold email text file")
	cmd.Flags().StringVar(&f.highlights, "highlights", "", "Resume highlights")
	cmd.Flags().StringVar(&f.connectedOn, "connected-on", "", "Date the connection was made")
	return cmd
}

func newRefineCmd(opts *rootOptions) *cobra.Command {
	var (
		message     string
		instruction string
		pipeline    string
		maxLength   int
	)

	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Edit a draft from an instruction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req := outreach.RefineRequest{
				Message:     message,
				Instruction: instruction,
				Pipeline:    types.Pipeline(pipeline),
			}
			if cmd.Flags().Changed("max-length") {
				req.MaxLength = &maxLength
			}

			client, err := openLLM(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			draft, err := newGenerator(client, opts.cfg, opts.logger).Refine(ctx, req)
			if err != nil {
				return err
			}
			if p := opts.printer(cmd); p != nil {
				p.PrintDraft(draft)
			}
			return printJSON(cmd.OutOrStdout(), draft)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Current message (required)")
	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "Edit instruction (required)")
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "Pipeline: hunter or farmer (default hunter)")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Length limit (default: configured note limit)")
	_ = cmd.MarkFlagRequired("message")
	_ = cmd.MarkFlagRequired("instruction")
	return cmd
}

func newRouteCmd(_ *rootOptions) *cobra.Command {
	var degree, source string

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Show which message pipeline a contact gets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipeline := outreach.Route(types.ConnectionDegree(degree), types.ContactSource(source))
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"connection_degree": degree,
				"contact_source":    source,
				"pipeline":          pipeline,
			})
		},
	}

	cmd.Flags().StringVar(&degree, "degree", "", "Connection degree: 1st, 2nd, 3rd")
	cmd.Flags().StringVar(&source, "source", "", "Contact source: apollo, csv_import")
	return cmd
}
