package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/statement-extractor/internal/engine"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/extractors"
	"github.com/insightdelivered/statement-extractor/internal/securities"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <statement.pdf> [more.pdf ...]",
		Short: "Extract transactions from statement files into CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args)
		},
	}

	cmd.Flags().String("output", "", "output CSV path (defaults to the input name with .csv)")
	cmd.Flags().Bool("text", false, "treat inputs as already-decoded plain text, not PDF")
	cmd.Flags().Bool("header", true, "include a source header row in the CSV")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("text", cmd.Flags().Lookup("text"))
	_ = viper.BindPFlag("header", cmd.Flags().Lookup("header"))

	return cmd
}

func runExtract(paths []string) error {
	log := newLogger()

	resolver := securities.NewMemoryResolver()
	registry := extractors.New(resolver)

	for _, path := range paths {
		if err := extractFile(log, registry, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func extractFile(log zerolog.Logger, registry *engine.Registry, path string) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	dt, err := registry.Classify(doc)
	if err != nil {
		return err
	}
	log.Info().Str("file", path).Str("document_type", dt.Label()).Msg("classified")

	items, err := dt.Parse(doc)
	if err != nil {
		return err
	}

	failed := 0
	for _, item := range items {
		if item.Failed() {
			failed++
			log.Warn().Str("file", path).Int("line", item.Line).Str("reason", item.Failure).Msg("match failed")
		}
	}
	log.Info().Str("file", path).Int("items", len(items)).Int("failed", failed).Msg("extracted")

	outPath := viper.GetString("output")
	if outPath == "" {
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
	}

	w := &writer.CSVWriter{
		IncludeHeader: viper.GetBool("header"),
		Source:        filepath.Base(path) + " (" + dt.Label() + ")",
	}
	if err := w.WriteToFile(outPath, items); err != nil {
		return err
	}
	log.Info().Str("output", outPath).Msg("written")
	return nil
}

func loadDocument(path string) (*engine.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file not found: %w", err)
	}

	if viper.GetBool("text") || strings.ToLower(filepath.Ext(path)) != ".pdf" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return engine.NewDocument(string(b)), nil
	}

	pages, err := extractor.ExtractText(path)
	if err != nil {
		return nil, err
	}
	return engine.NewDocumentFromPages(pages), nil
}
