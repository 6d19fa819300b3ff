// Command docgen generates documents from the command line: it takes a
// docx template (local file or URL), placeholder data (inline JSON, a
// JSON file, or a CSV file), and writes one output file per record.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docgenius/docgenius/internal/config"
	"github.com/docgenius/docgenius/internal/export"
	"github.com/docgenius/docgenius/internal/logging"
	"github.com/docgenius/docgenius/internal/record"
	"github.com/docgenius/docgenius/internal/render"
	"github.com/docgenius/docgenius/internal/template"
)

type cliOptions struct {
	input       string
	templateRef string
	outputDir   string
	format      string
	openDelim   string
	closeDelim  string
	filenameKey string
	logLevel    string
}

func main() {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "docgen",
		Short: "Generate documents from a docx template and placeholder data",
		Long: `docgen fills placeholder tags in a docx template with values from
JSON or CSV data and writes docx, pdf, or markdown files.

The --input flag accepts three shapes:
  - inline JSON: an object for one document, or an array for many
  - a path to a .json file with the same shapes
  - a path to a .csv file, one document per row

The --template flag accepts a local .docx path or an http(s) URL.
Markdown output needs no template.`,
		Example: `  docgen --input '{"name":"Acme"}' --template contract.docx
  docgen --input clients.csv --template https://example.com/t.docx --format pdf
  docgen --input clients.csv --format md --filename-key name`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	flags := root.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "inline JSON, or path to a .json or .csv file (required)")
	flags.StringVarP(&opts.templateRef, "template", "t", "", "docx template path or URL (required unless --format md)")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "generated_files", "directory for output files")
	flags.StringVarP(&opts.format, "format", "f", export.FormatDocx, "output format: docx, pdf, or md")
	flags.StringVar(&opts.openDelim, "open-delim", render.DefaultOpenDelimiter, "placeholder opening delimiter")
	flags.StringVar(&opts.closeDelim, "close-delim", render.DefaultCloseDelimiter, "placeholder closing delimiter")
	flags.StringVar(&opts.filenameKey, "filename-key", "", "record field whose value names each output file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cobra.CheckErr(root.MarkFlagRequired("input"))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *cliOptions) error {
	logging.Setup(opts.logLevel, "text")

	switch opts.format {
	case export.FormatDocx, export.FormatPDF, export.FormatMarkdown:
	default:
		return fmt.Errorf("unsupported format %q: must be docx, pdf, or md", opts.format)
	}

	batch, err := loadBatch(opts.input)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		fmt.Fprintln(os.Stderr, "no records in input, nothing to generate")
		return nil
	}

	var tmpl []byte
	if opts.format != export.FormatMarkdown {
		if opts.templateRef == "" {
			return fmt.Errorf("--template is required for %s output", opts.format)
		}
		tmpl, err = loadTemplate(ctx, opts.templateRef)
		if err != nil {
			return err
		}
	}

	paths, err := export.WriteBatch(render.New(), tmpl, batch, export.Options{
		OutputDir:   opts.outputDir,
		Format:      opts.format,
		FilenameKey: opts.filenameKey,
		OpenDelim:   opts.openDelim,
		CloseDelim:  opts.closeDelim,
	})
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

// loadBatch turns the --input value into a record batch. Inline JSON is
// recognized by its first character; anything else is treated as a file
// path, routed by extension.
func loadBatch(input string) (record.Batch, error) {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return batchFromJSON([]byte(trimmed))
	}

	if strings.HasSuffix(strings.ToLower(trimmed), ".json") {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		return batchFromJSON(data)
	}

	// Everything else goes through the normalizer, which accepts .csv
	// paths and rejects the rest with a clear error.
	return record.NormalizeValue(trimmed)
}

func batchFromJSON(data []byte) (record.Batch, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing JSON input: %w", err)
	}
	return record.NormalizeValue(v)
}

// loadTemplate reads the template bytes from a local path or downloads
// them when the reference is an http(s) URL.
func loadTemplate(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		fetcher := template.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxTemplateSize)
		return fetcher.Fetch(ctx, ref)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return data, nil
}
