package main

import (
	"context"
	"os"

	"github.com/linkvault/linkvault/internal/cli"
)

func main() {
	root := cli.NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
