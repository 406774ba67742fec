package main

import (
	"fmt"
	"os"

	"github.com/example/orbita/internal/cli"
	"github.com/example/orbita/internal/version"
)

func main() {
	if err := cli.RootCmd(version.String()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
