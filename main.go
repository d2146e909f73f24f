// alertprefs is the CLI for the emergency alert preference model.
package main

import (
	"fmt"
	"os"

	"alertprefs/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
