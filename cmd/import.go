package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bibjson/store"
)

var dbPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert BibTeX input and store it in a SQLite database",
	Long: `Convert a BibTeX bibliography and persist the resulting records in a
local SQLite database.

Stored records are assigned database ids; the original citation key
is kept in each record's citekey field. Importing a collection again
replaces its previously stored records.

Examples:
  bibjson import --collection mycoll -i refs.bib --db refs.db
  cat refs.bib | bibjson import --collection mycoll --db refs.db`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file (default: stdin)")
	importCmd.Flags().StringVar(&collectionName, "collection", "", "Collection name for the stored metadata")
	importCmd.Flags().StringVar(&sourceName, "source", "", "Source identifier for the stored metadata")
	importCmd.Flags().StringSliceVar(&metaPairs, "meta", nil, "Additional metadata as key=value (repeatable)")
	importCmd.Flags().StringVar(&metaFile, "meta-file", "", "YAML file with collection metadata")
	importCmd.Flags().BoolVar(&keepLaTeX, "keep-latex", false, "Keep LaTeX escape sequences instead of converting to Unicode")
	importCmd.Flags().StringVar(&dbPath, "db", "bibjson.db", "SQLite database path")
}

func runImport(cmd *cobra.Command, args []string) (err error) {
	input, inputName, cleanup, err := openInput(inputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	meta, err := buildMetadata()
	if err != nil {
		return err
	}

	coll, n, err := convert(input, meta)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Parsed %d entries from %s\n", n, inputName)

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing database: %w", cerr)
		}
	}()

	stored, err := db.SaveCollection(cmd.Context(), coll)
	if err != nil {
		return fmt.Errorf("storing collection: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Stored %d records in %s\n", stored, dbPath)
	return nil
}
