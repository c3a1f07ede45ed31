package runner

import (
	"context"
	"strings"
)

// Runner starts external tools (npx generators, package managers) and waits
// for them. Implementations must honour ctx cancellation.
type Runner interface {
	// Run executes name with args in dir. Output is captured; on failure the
	// error is a *CommandError carrying stderr.
	Run(ctx context.Context, dir, name string, args ...string) error

	// Version runs "<name> --version" and returns the trimmed output.
	Version(ctx context.Context, name string) (string, error)
}

// CommandError reports a failed child process.
type CommandError struct {
	Dir    string
	Name   string
	Args   []string
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	msg := "command failed: " + e.CommandLine() + ": " + e.Err.Error()
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLines(s, 5)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine renders the command as typed in a shell.
func (e *CommandError) CommandLine() string {
	return strings.Join(append([]string{e.Name}, e.Args...), " ")
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
