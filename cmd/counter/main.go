package main

import (
	"os"

	"github.com/bnema/solana-counter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
