package main

import (
	"os"

	"github.com/shadecraft/backend/cmd/configurator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
