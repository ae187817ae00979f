package main

import (
	"os"

	"github.com/softswan/softswan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
