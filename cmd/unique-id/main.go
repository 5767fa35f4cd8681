package main

import (
	"os"
	"time"

	"github.com/dostini/maelstrom-node/pkg/cli"
)

func main() {
	rootCmd := cli.NewRootCmd("unique-id", "Node that generates ids unique across the cluster",
		newGenerateHandler(time.Now))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
