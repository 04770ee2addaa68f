// selfstore reads and writes the payload stored inside an executable.
//
// Usage:
//
//	selfstore read  --exe <path> [--digest]
//	selfstore write --exe <path> (--text <s> | --file <path>) [--out <path>]
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if os.Getenv("SELFSTORE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "read":
		err = readCmd(args, os.Stdin, os.Stdout)
	case "write":
		err = writeCmd(args, logger)
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`selfstore - Inspect and modify payloads stored inside executables

USAGE
    selfstore <command> [flags]

COMMANDS
    read     Print the payload of an executable (--exe - reads from stdin)
    write    Store a payload in an executable

EXAMPLES
    # Show what an executable has stored
    selfstore read --exe ./echo

    # Compare payloads without printing them
    selfstore read --exe ./echo --digest

    # Create a copy of an executable carrying a file as payload
    selfstore write --exe ./echo --file notes.txt --out ./echo-with-notes

    # Replace the payload in place
    selfstore write --exe ./echo --text "hello"

ENVIRONMENT
    SELFSTORE_DEBUG      Enable debug logging
`)
}
