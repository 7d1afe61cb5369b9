package main

import (
	"os"

	"github.com/shutterbook/simulator/cmd/shutterbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
