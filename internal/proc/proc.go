// Package proc runs external tools for the build pipeline.
package proc

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/qobs-build/apmbuild/internal/msg"
)

// Command is a single external tool invocation.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory, empty means the current one
	Env  []string // extra KEY=VALUE pairs appended to the process environment
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes commands. It blocks until the child exits and returns
// everything the child wrote to stdout and stderr.
type Runner interface {
	Run(c Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec. Child output is streamed to
// Stream (indented) while also being captured for error reporting.
type ExecRunner struct {
	Stream io.Writer
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stream: &msg.IndentWriter{Indent: "    ", W: msg.Out}}
}

func (r *ExecRunner) Run(c Command) ([]byte, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var captured bytes.Buffer
	var w io.Writer = &captured
	if r.Stream != nil {
		w = io.MultiWriter(&captured, r.Stream)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	return captured.Bytes(), err
}

// ExitCode extracts the exit status from an error returned by Run.
// It returns -1 when the process never started or was killed by a signal.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
