package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/statement-extractor/internal/api"
	"github.com/insightdelivered/statement-extractor/internal/extractors"
	"github.com/insightdelivered/statement-extractor/internal/securities"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe() error {
	log := newLogger()

	// One shared resolver for the process: Resolve is idempotent and
	// thread-safe, so concurrent requests reuse instrument handles.
	resolver := securities.NewMemoryResolver()
	registry := extractors.New(resolver)

	srv := api.NewServer(registry, log)
	addr := viper.GetString("addr")
	log.Info().Str("addr", addr).Msg("listening")
	return srv.App().Listen(addr)
}
