// tdash renders a live test dashboard from go test -json output.
//
// Usage:
//
//	go test -json ./... | tdash
//	tdash watch --cmd "go test -json ./..." "**/*.go" go.mod
//
// The dashboard is a colored status bar (red: failing, yellow: slow,
// green: passing, cyan: nothing ran) followed by counts and the tests that
// were slow or failed.
package main

import (
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitTestFailure = 1
	ExitUsageError  = 2
	ExitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, exitCode: ExitSuccess}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	// Errors from flag parsing and argument validation leave exitCode
	// untouched; subcommands set their own code and report their own errors.
	if err := root.Execute(); err != nil && a.exitCode == ExitSuccess {
		a.exitCode = ExitUsageError
		fmt.Fprintf(stderr, "tdash: %v\n", err)
	}
	return a.exitCode
}
