// Package cli implements the statement-extractor command line interface.
package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd assembles the command tree. Configuration comes from flags
// first, then STMX_-prefixed environment variables.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "statement-extractor",
		Short: "Extract structured transactions from broker and bank statement PDFs",
		Long: `statement-extractor converts semi-structured statement text produced
from broker/bank PDF statements into typed financial transactions
(buys, sells, dividends, deposits, fees, interest, transfers).

Institutions are detected automatically from fingerprints in the
statement text; unsupported formats are rejected with a clear error
instead of producing half-parsed data.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	viper.SetEnvPrefix("STMX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(newExtractCmd())
	root.AddCommand(newServeCmd())
	return root
}

// newLogger builds the process logger. Console output for humans on a
// terminal, JSON otherwise.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}

	var log zerolog.Logger
	if fi, err := os.Stderr.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
