// Command ethiocal is a command-line front end to the calendar package.
package main

import (
	"fmt"
	"os"

	"github.com/zapponejosh/ethiocal/cmd/ethiocal/commands"
	"github.com/zapponejosh/ethiocal/internal/calendar"
)

func main() {
	rootCmd := commands.NewRootCommand(calendar.SystemClock{})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
