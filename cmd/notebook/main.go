package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/notebook-cli/internal/adapters/driving/cli"
)

func main() {
	// A local .env can carry API keys during development; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
