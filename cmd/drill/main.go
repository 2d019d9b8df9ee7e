package main

import (
	"os"

	"github.com/conorfennell/drill/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
