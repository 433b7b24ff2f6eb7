// Command cfiletool builds and inspects standalone CFiles: flat files
// holding a sorted run of (key, value) pairs indexed by a persisted
// B-tree, the same structure a tablet server's column stores use
// internally.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

func main() {
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelInfo, true)))

	app := &cli.App{
		Name:  "cfiletool",
		Usage: "build and inspect CFile B-tree indexes",
		Commands: []*cli.Command{
			buildCommand,
			dumpCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cfiletool:", err)
		os.Exit(1)
	}
}
