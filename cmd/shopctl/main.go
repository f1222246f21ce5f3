package main

import (
	"os"

	"storefront-api/cmd/shopctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
