package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/lazypower/kaizen/internal/cli"
	"github.com/lazypower/kaizen/internal/logger"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()
	// Re-read KAIZEN_DEBUG now that .env may have set it.
	logger.SetOutput(os.Stderr)

	// cobra has already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
