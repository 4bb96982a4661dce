package cmd

import (
	"fmt"
	"runtime"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the clockface version, build time and Go runtime.",
		Usage: "clockface version",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("version takes no arguments")
			}
			printVersion()
			return nil
		},
	})
}

func printVersion() {
	fmt.Fprintf(stdout, "clockface version %s (built %s, %s %s/%s)\n",
		Version, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
