// Package cmd implements the clockface CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (render, run, version).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/clockface/cmd/clockface/internal/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "clockface",
	Short: "clockface - an animated analog clock",
	Long: `clockface draws an analog clock face whose hands sweep from one
second to the next. It can render a single frame or run a live clock
with a debug server.

Use "clockface <command> --help" for more information about a command.`,
	Usage: "clockface [--config FILE] <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// configPath is the config file used by every command.
var configPath = config.DefaultFile

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return execute(os.Args[1:])
}

func execute(args []string) error {
	if env := os.Getenv("CLOCKFACE_CONFIG"); env != "" {
		configPath = env
	}

	// Handle no arguments
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --config
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version":
			if len(filteredArgs) == 0 {
				printVersion()
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--config":
			if len(filteredArgs) > 0 {
				filteredArgs = append(filteredArgs, arg)
				continue
			}
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			} else {
				return fmt.Errorf("--config requires a file path")
			}
		default:
			if value, ok := strings.CutPrefix(arg, "--config="); ok && len(filteredArgs) == 0 {
				configPath = value
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func printHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintf(stdout, "  --config FILE        Config file (default: %s)\n", config.DefaultFile)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Environment:")
	fmt.Fprintln(stdout, "  CLOCKFACE_CONFIG     Config file override (lower priority than --config)")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  clockface render --time 10:08:30 --out clock.png")
	fmt.Fprintln(stdout, "  clockface run --debug-addr 127.0.0.1:9999")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
