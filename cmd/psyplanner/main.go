package main

import (
	"os"

	"psyplanner/internal/cli"
	"psyplanner/internal/logging"
)

func main() {
	logging.Setup()

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
