package main

import (
	"os"

	"github.com/dostini/maelstrom-node/pkg/cli"
)

func main() {
	rootCmd := cli.NewRootCmd("echo", "Node that echoes every echo request back", echoHandler{})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
