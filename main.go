package main

import (
	"os"

	"github.com/insightdelivered/statement-extractor/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
