package main

import (
	"fmt"
	"os"

	"github.com/mcncl/jsonprop/internal/cli"
	"github.com/mcncl/jsonprop/internal/errors"
)

func main() {
	rt := &cli.Runtime{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	if err := cli.Run(os.Args[1:], rt); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonprop --help\n")
		os.Exit(1)
	}
}
