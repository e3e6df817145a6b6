package main

import (
	"os"

	"github.com/bianoble/mcstarter/cmd/mcstarter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
