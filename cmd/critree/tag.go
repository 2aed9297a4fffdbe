package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/parser"
)

var tagCmd = &cobra.Command{
	Use:   "tag <file>",
	Short: "Tag the criteria in a document and print the hierarchy",
	Long: `Parse a document, build the criteria hierarchy of every section and print
the tagged lines.

Lines that appear before any criteria heading are treated as the --kind
section.

Examples:
  critree tag protocol.txt
  critree tag --kind exclusion --output json exclusions.md
  critree tag --output text protocol.docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := criteria.ParseSectionKind(viper.GetString("kind"))
		sections, title, err := tagFile(args[0], kind, newLogger())
		if err != nil {
			return err
		}
		return writeSections(cmd.OutOrStdout(), viper.GetString("output"), title, sections)
	},
}

func init() {
	tagCmd.Flags().String("kind", "eligibility", "section kind for lines before any criteria heading")
	tagCmd.Flags().StringP("output", "o", "yaml", "output format: yaml, json or text")
	tagCmd.Flags().Bool("pdftotext", true, "fall back to pdftotext when the PDF reader fails")
}

func tagFile(path string, kind criteria.SectionKind, log *slog.Logger) ([]doctree.TaggedSection, string, error) {
	p, err := parser.ForFile(path, parser.Options{
		DefaultKind:       kind,
		FallbackPdftotext: viper.GetBool("pdftotext"),
	})
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := p.Parse(f, path)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.LineCount() == 0 {
		log.Warn("no criteria lines found", "file", path)
	}

	sections, err := doc.Tag(criteria.NewBuilder(log))
	if err != nil {
		return nil, "", err
	}
	return sections, doc.Title, nil
}

type taggedOutput struct {
	Title    string                  `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []doctree.TaggedSection `json:"sections" yaml:"sections"`
}

func writeSections(w io.Writer, format, title string, sections []doctree.TaggedSection) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(taggedOutput{Title: title, Sections: sections})
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(taggedOutput{Title: title, Sections: sections}); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for i, s := range sections {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprint(w, doctree.Build(s.Kind, s.Lines).Render())
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q (want yaml, json or text)", format)
}
