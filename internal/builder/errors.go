package builder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSource     = errors.New("missing source")
	ErrToolInvocation    = errors.New("tool invocation failed")
	ErrShimCompile       = errors.New("shim compile failed")
	ErrBindingGeneration = errors.New("binding generation failed")
	errUnknownProfile    = errors.New("unknown profile")
)

// StageError is a fatal pipeline failure. Kind is one of the Err* sentinels
// and is matched by errors.Is.
type StageError struct {
	Kind     error
	Stage    string
	Path     string // the path the stage was working on, if any
	Command  string // the failing command line, if a tool was run
	ExitCode int    // -1 when the tool never started
	Output   []byte // tool diagnostics, verbatim
	Hint     string // remediation for the user
	Err      error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Stage != "" {
		fmt.Fprintf(&sb, ": %s", e.Stage)
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, ": %s", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if e.Command != "" {
		fmt.Fprintf(&sb, "\n\ncommand: %s", e.Command)
		if e.ExitCode >= 0 {
			fmt.Fprintf(&sb, " (exit status %d)", e.ExitCode)
		}
	}
	if len(e.Output) > 0 {
		fmt.Fprintf(&sb, "\n\noutput:\n%s", strings.TrimRight(string(e.Output), "\n"))
	}
	if e.Hint != "" {
		fmt.Fprintf(&sb, "\n\n%s", e.Hint)
	}
	return sb.String()
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
