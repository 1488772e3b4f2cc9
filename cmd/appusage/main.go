package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/actionsum/appusage/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrAccessDenied) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
