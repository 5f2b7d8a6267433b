package main

import (
	"os"

	"github.com/terraincognita07/tempo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
