// Command clockface renders and runs the analog clock face.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/clockface/cmd/clockface/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
