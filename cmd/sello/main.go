package main

import (
	"os"

	"github.com/sello-app/sello/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
