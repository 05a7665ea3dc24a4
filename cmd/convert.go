package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/bibjson/bibjson"
	"github.com/lehigh-university-libraries/bibjson/bibtex"
)

var (
	inputFile      string
	outputFile     string
	collectionName string
	sourceName     string
	metaPairs      []string
	metaFile       string
	pretty         bool
	keepLaTeX      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert BibTeX input to a BibJSON collection",
	Long: `Convert a BibTeX bibliography to a BibJSON collection.

Input defaults to stdin, output defaults to stdout. The collection
name is required; it can come from --collection or from a metadata
file. Additional metadata keys are carried into the output verbatim.

Examples:
  # stdin to stdout
  cat refs.bib | bibjson convert --collection mycoll

  # Explicit input and output files
  bibjson convert --collection mycoll -i refs.bib -o refs.json

  # Extra metadata, pretty-printed
  bibjson convert --collection mycoll --source refs.bib \
    --meta created=2026-08-27 --pretty -i refs.bib

  # Metadata from a YAML file
  bibjson convert --meta-file collection.yaml -i refs.bib`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file (default: stdin)")
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().StringVar(&collectionName, "collection", "", "Collection name for the output metadata")
	convertCmd.Flags().StringVar(&sourceName, "source", "", "Source identifier for the output metadata")
	convertCmd.Flags().StringSliceVar(&metaPairs, "meta", nil, "Additional metadata as key=value (repeatable)")
	convertCmd.Flags().StringVar(&metaFile, "meta-file", "", "YAML file with collection metadata")
	convertCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	convertCmd.Flags().BoolVar(&keepLaTeX, "keep-latex", false, "Keep LaTeX escape sequences instead of converting to Unicode")
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	input, inputName, cleanup, err := openInput(inputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var output io.Writer
	if outputFile != "" {
		f, createErr := os.Create(outputFile)
		if createErr != nil {
			return fmt.Errorf("creating output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		output = f
	} else {
		output = os.Stdout
	}

	meta, err := buildMetadata()
	if err != nil {
		return err
	}

	coll, n, err := convert(input, meta)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Parsed %d entries from %s\n", n, inputName)

	return writeCollection(output, coll)
}

// openInput opens the named file, or stdin when name is empty. The
// returned cleanup closes the file and is a no-op for stdin.
func openInput(name string) (io.Reader, string, func() error, error) {
	if name == "" {
		return os.Stdin, "stdin", func() error { return nil }, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, "", nil, fmt.Errorf("opening input file: %w", err)
	}
	cleanup := func() error {
		if cerr := f.Close(); cerr != nil {
			return fmt.Errorf("closing input file: %w", cerr)
		}
		return nil
	}
	return f, name, cleanup, nil
}

// convert parses BibTeX input and builds the collection.
func convert(input io.Reader, meta bibjson.Metadata) (*bibjson.Collection, int, error) {
	opts := bibtex.DefaultOptions()
	opts.ConvertToUnicode = !keepLaTeX

	entries, err := bibtex.Parse(input, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing input: %w", err)
	}

	coll, err := bibjson.NewCollection(entries, meta)
	if err != nil {
		return nil, 0, err
	}
	return coll, len(entries), nil
}

// buildMetadata assembles collection metadata from the metadata file
// and flags. Flags win over file values.
func buildMetadata() (bibjson.Metadata, error) {
	meta := bibjson.Metadata{}

	if metaFile != "" {
		data, err := os.ReadFile(metaFile)
		if err != nil {
			return nil, fmt.Errorf("reading metadata file: %w", err)
		}
		if err := yaml.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("parsing metadata file: %w", err)
		}
	}

	for _, pair := range metaPairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --meta value %q, expected key=value", pair)
		}
		meta[k] = v
	}

	if collectionName != "" {
		meta["collection"] = collectionName
	}
	if sourceName != "" {
		meta["source"] = sourceName
	}

	return meta, nil
}

func writeCollection(w io.Writer, c *bibjson.Collection) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("serializing output: %w", err)
	}
	return nil
}
