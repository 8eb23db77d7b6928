//go:build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"golang.org/x/term"

	"github.com/dkoosis/tdash/internal/logging"
	"github.com/dkoosis/tdash/pkg/gotest"
	"github.com/dkoosis/tdash/pkg/sink"
)

const (
	modulePath = "github.com/dkoosis/tdash"
	binPath    = "./bin/tdash"
)

// Default target - build the binary
var Default = Build

// Build builds the tdash binary with version information
func Build() error {
	date := time.Now().UTC().Format(time.RFC3339)
	ldflags := fmt.Sprintf("-s -w -X '%[1]s/internal/version.Version=%[2]s' -X '%[1]s/internal/version.CommitHash=%[3]s' -X '%[1]s/internal/version.BuildDate=%[4]s'",
		modulePath, gitVersion(), gitCommit(), date)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/tdash"); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Println("Built:", binPath)
	return nil
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm("./bin")
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests and renders them on the tdash dashboard
func (Test) All() error {
	return dashboardTest("./...")
}

// Race runs tests with race detector
func (Test) Race() error {
	return dashboardTest("-race", "./...")
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs all linters
func (l Lint) All() error {
	if err := l.Vet(); err != nil {
		return err
	}
	return l.Golangci()
}

// Vet runs go vet
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint, skipping when it is not installed
func (Lint) Golangci() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println("golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "--timeout=5m", "./...")
}

// dashboardTest pipes go test -json through the dashboard.
func dashboardTest(args ...string) error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "go", append([]string{"test", "-json"}, args...)...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	var out sink.Sink = sink.NewPlain(os.Stdout)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		width, _, _ := term.GetSize(int(os.Stdout.Fd()))
		out = sink.NewTerminal(os.Stdout, width)
	}
	logger := logging.New(os.Stderr, log.WarnLevel.String())
	summary, _, streamErr := gotest.Run(ctx, stdout, out, logger)
	waitErr := cmd.Wait()

	switch {
	case streamErr != nil:
		return streamErr
	case summary.Failing > 0:
		return fmt.Errorf("%d failing", summary.Failing)
	case waitErr != nil:
		return waitErr
	}
	return nil
}

func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(v)
}

func gitCommit() string {
	c, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(c)
}
