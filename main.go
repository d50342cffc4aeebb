package main

import (
	"os"

	"github.com/hydradancer/hostctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
