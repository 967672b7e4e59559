package main

import (
	"os"

	"github.com/kstocklab/kstock/cmd/kstock/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
