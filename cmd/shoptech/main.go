package main

import (
	"os"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
