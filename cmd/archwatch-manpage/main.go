package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/archwatch/internal/cli"
	"github.com/spf13/cobra/doc"
)

func main() {
	rootCmd := cli.NewRootCmd()

	err := doc.GenMan(rootCmd, cli.ManHeader(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
