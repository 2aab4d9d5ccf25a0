package main

import (
	"os"

	deckmindcmder "github.com/deckmind/deckmind/cmd/deckmind"
)

func main() {
	cmd := deckmindcmder.NewDeckmindCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
