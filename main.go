package main

import (
	"os"

	"github.com/brewline/maitre/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
