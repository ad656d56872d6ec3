package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/tillberg/autorestart"

	"github.com/soyeahso/obiefood/internal/cli"
)

func main() {
	// Optional .env for local development; missing files are fine.
	godotenv.Load()

	go autorestart.RestartOnChange()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
