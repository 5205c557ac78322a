// Command demes is the CLI front-end for the demes resolver, converter,
// and forward-traversal engine.
package main

import (
	"fmt"
	"os"

	"github.com/popdemes/demes/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
