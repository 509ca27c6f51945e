// Package main is the laneplanner command itself.
package main

import (
	"fmt"
	"os"

	"go.viam.com/laneplanner/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "laneplanner: %v\n", err)
		os.Exit(1)
	}
}
