package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/model"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/spf13/cobra"
)

type outputOptions struct {
	dialect  string
	maxDepth int
	json     bool
	sections bool
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dialect, "dialect", "", "heading dialect: markdown|html|asciidoc|numbered (default: from extension)")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", config.DefaultMaxHeadingDepth, "deepest heading level to include")
	cmd.Flags().BoolVar(&o.json, "json", false, "print the outline as JSON")
	cmd.Flags().BoolVar(&o.sections, "sections", false, "print the text owned by each heading")
}

// newModel builds the scanner for path and wraps it in a model.
func (o *outputOptions) newModel(path string, log *slog.Logger) (*model.Model, error) {
	var (
		scanner parser.Scanner
		dialect = parser.Dialect(o.dialect)
		err     error
	)
	if dialect != "" {
		scanner, err = parser.ForDialect(dialect)
	} else {
		scanner, dialect, err = parser.ForFile(path)
	}
	if err != nil {
		return nil, err
	}
	return model.New(path, scanner,
		model.WithLogger(log),
		model.WithDialect(string(dialect)),
		model.WithMaxDepth(o.maxDepth),
	), nil
}

func readDocument(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return parser.ReadText(f, path, true)
}

func showCmd(logger func() *slog.Logger) *cobra.Command {
	var opts outputOptions

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the outline of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			m, err := opts.newModel(path, logger())
			if err != nil {
				return err
			}
			defer m.Destroy()

			text, err := readDocument(path)
			if err != nil {
				return err
			}
			out, err := m.Update(text)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), out, text, opts)
		},
	}
	opts.register(cmd)
	return cmd
}
