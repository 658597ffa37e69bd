package main

import (
	"os"

	"github.com/quarrydata/quarry/cmd/quarry/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
