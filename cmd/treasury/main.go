// Command treasury runs the bounty escrow and spending budget runtime.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/treasury/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
