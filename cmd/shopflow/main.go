package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/qanai/shopflow/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()
	config.SetupLogging(os.Getenv, os.Stderr)
	if envErr != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "shopflow",
		Usage:   "Browser test of the search, select and add-to-cart flow",
		Version: version,
		Commands: []*cli.Command{
			RunCommand(),
			DataCommand(),
			SampleDataCommand(),
			StoreCommand(),
			HistoryCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
