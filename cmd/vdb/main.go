package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/brimdata/vdb/cli"
	"github.com/brimdata/vdb/cmd/vdb/root"
)

func main() {
	if err := root.New().Execute(); err != nil {
		if !errors.Is(err, cli.ErrInvalid) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
