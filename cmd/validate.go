package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bibjson/bibjson"
	"github.com/lehigh-university-libraries/bibjson/bibtex"
)

var (
	validateInput   string
	validateVerbose bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a BibTeX bibliography without converting",
	Long: `Validate a BibTeX bibliography by running the full conversion
without producing output.

The command reports how many entries parsed and how many diagnostics
the conversion raised (missing required fields, unknown entry types).
Useful for checking data quality before conversion.

Input defaults to stdin.

Examples:
  bibjson validate -i refs.bib
  bibjson validate -i refs.bib --verbose
  cat refs.bib | bibjson validate`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Input file (default: stdin)")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Show detailed information")
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	input, inputName, cleanup, err := openInput(validateInput)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	entries, err := bibtex.Parse(input, nil)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var diagnostics int
	logger := slog.New(&countingHandler{
		next: slog.Default().Handler(),
		n:    &diagnostics,
	})

	coll, err := bibjson.NewMapper(logger).Collection(entries, bibjson.Metadata{
		"collection": "validate",
	})
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Valid: parsed %d entries from %s, %d diagnostics\n",
		len(entries), inputName, diagnostics)

	if validateVerbose {
		fmt.Println("\nRecord summary:")
		for i, r := range coll.Records {
			fmt.Printf("\n  Record %d:\n", i+1)
			fmt.Printf("    Citekey: %s\n", r.Citekey)
			fmt.Printf("    Type: %s\n", r.Type)
			fmt.Printf("    Title: %s\n", truncate(r.Title, 60))
			fmt.Printf("    Authors: %d\n", len(r.Author))
			if r.Journal != nil {
				fmt.Printf("    Journal: %s\n", truncate(r.Journal.Name, 60))
			}
		}
	}

	return nil
}

// countingHandler counts log records on their way to the wrapped
// handler, so validate can report how many diagnostics a conversion
// raised.
type countingHandler struct {
	next slog.Handler
	n    *int
}

func (h *countingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *countingHandler) Handle(ctx context.Context, r slog.Record) error {
	*h.n++
	return h.next.Handle(ctx, r)
}

func (h *countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &countingHandler{next: h.next.WithAttrs(attrs), n: h.n}
}

func (h *countingHandler) WithGroup(name string) slog.Handler {
	return &countingHandler{next: h.next.WithGroup(name), n: h.n}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
