package builder

import (
	"errors"
	"strings"
	"testing"
)

func TestStageError(t *testing.T) {
	cause := errors.New("exit status 2")
	err := error(&StageError{
		Kind:     ErrToolInvocation,
		Stage:    "compile",
		Path:     "/out/build",
		Command:  "ninja",
		ExitCode: 2,
		Output:   []byte("FAILED: foo.o\n"),
		Hint:     "see above",
		Err:      cause,
	})

	if !errors.Is(err, ErrToolInvocation) || !errors.Is(err, cause) {
		t.Error("errors.Is does not match kind and cause")
	}
	if errors.Is(err, ErrShimCompile) {
		t.Error("matched the wrong kind")
	}

	text := err.Error()
	for _, want := range []string{
		"tool invocation failed: compile: /out/build: exit status 2",
		"command: ninja (exit status 2)",
		"output:\nFAILED: foo.o",
		"see above",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("error text missing %q:\n%s", want, text)
		}
	}

	noStart := (&StageError{Kind: ErrToolInvocation, Command: "meson setup", ExitCode: -1}).Error()
	if strings.Contains(noStart, "exit status") {
		t.Errorf("exit status shown for a tool that never started: %s", noStart)
	}
}
