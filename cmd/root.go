// Package cmd provides CLI commands for bibjson.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "bibjson",
	Short: "Convert BibTeX bibliographies to BibJSON",
	Long: `bibjson converts BibTeX bibliographies into BibJSON collections.

A collection wraps the converted records together with caller-supplied
metadata. Missing required fields and unknown entry types are reported
as diagnostics on stderr without aborting the conversion.

Examples:
  bibjson convert --collection mycoll -i refs.bib -o refs.json
  cat refs.bib | bibjson convert --collection mycoll --pretty
  bibjson validate -i refs.bib
  bibjson import --collection mycoll -i refs.bib --db refs.db`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()
	setupLogger()
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
}
