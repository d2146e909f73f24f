package e2etests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes alertprefs commands against a sandbox directory.
type Runner struct {
	Cmd string // path to alertprefs binary
}

// SetupSandbox initializes a fresh .alertprefs directory under dir.
// Extra args are passed through to init (e.g. --snapshot-format toml).
func (r *Runner) SetupSandbox(dir string, args ...string) (string, error) {
	result := r.Run(dir, append([]string{"init"}, args...)...)
	if result.ExitCode != 0 {
		return "", fmt.Errorf("init sandbox failed (exit %d)\nstderr: %s", result.ExitCode, result.Stderr)
	}
	return dir, nil
}

// RunResult holds the output of a command execution.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes an alertprefs command with the given arguments.
// It sets ALERTPREFS_DIR to the sandbox path so the command finds the right
// .alertprefs directory no matter where the test runs.
func (r *Runner) Run(sandbox string, args ...string) RunResult {
	cmd := exec.Command(r.Cmd, args...)
	cmd.Env = append(os.Environ(), "ALERTPREFS_DIR="+sandbox, "LOG_LEVEL=error")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// RunJSON executes a command with --json appended and decodes stdout into v.
func (r *Runner) RunJSON(sandbox string, v any, args ...string) error {
	result := r.Run(sandbox, append(args, "--json")...)
	if result.ExitCode != 0 {
		return fmt.Errorf("command %v failed (exit %d): %s", args, result.ExitCode, result.Stderr)
	}
	if err := json.Unmarshal([]byte(result.Stdout), v); err != nil {
		return fmt.Errorf("decoding %v output: %w\n%s", args, err, result.Stdout)
	}
	return nil
}
