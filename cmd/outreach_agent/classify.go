package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/brain"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var (
		inputFile string
		file      bool
	)

	cmd := &cobra.Command{
		Use:   "classify [thought]",
		Short: "File a free-text note into a category",
		Long:  "Classify a note as Knowledge, Task, Project, People or Inbox with tags, priority and extracted entities. The note is read from the argument, --in, or stdin. With --file the note is also stored in the knowledge base.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readThought(cmd, args, inputFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := openLLM(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			classifier := brain.NewClassifier(client, opts.logger)
			if file {
				pages, err := openKnowledge(opts.cfg, opts.logger)
				if err != nil {
					return err
				}
				dumped, err := brain.Dump(ctx, classifier, pages, content)
				if err != nil {
					return err
				}
				if p := opts.printer(cmd); p != nil {
					p.PrintClassification(dumped.Classification)
				}
				return printJSON(cmd.OutOrStdout(), dumped)
			}

			result, err := classifier.Classify(ctx, content)
			if err != nil {
				return err
			}
			if p := opts.printer(cmd); p != nil {
				p.PrintClassification(result)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "in", "i", "", "Path to a text file holding the note")
	cmd.Flags().BoolVar(&file, "file", false, "Store the classified note in its knowledge-base database")
	return cmd
}

func readThought(cmd *cobra.Command, args []string, inputFile string) (string, error) {
	var content string
	switch {
	case len(args) == 1:
		content = args[0]
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		content = string(data)
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("thought is empty")
	}
	return content, nil
}
