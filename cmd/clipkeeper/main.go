package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/clipkeeper/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
