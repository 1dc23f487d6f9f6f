package main

import (
	"fmt"
	"os"

	"github.com/ordodb/ordo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ordo: %v\n", err)
		os.Exit(1)
	}
}
