package proc

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestCommandString(t *testing.T) {
	if got := (Command{Name: "ninja"}).String(); got != "ninja" {
		t.Errorf("String() = %q", got)
	}
	if got := (Command{Name: "ninja", Args: []string{"install"}}).String(); got != "ninja install" {
		t.Errorf("String() = %q", got)
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	var stream bytes.Buffer
	r := &ExecRunner{Stream: &stream}

	out, err := r.Run(Command{Name: "sh", Args: []string{"-c", "echo out; echo err 1>&2; exit 3"}})
	if err == nil {
		t.Fatal("expected non-zero exit error")
	}
	if code := ExitCode(err); code != 3 {
		t.Errorf("ExitCode = %d, want 3", code)
	}
	for _, want := range []string{"out", "err"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("captured output %q missing %q", out, want)
		}
		if !strings.Contains(stream.String(), want) {
			t.Errorf("streamed output %q missing %q", stream.String(), want)
		}
	}
}

func TestExecRunnerEnvAndDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	dir := t.TempDir()
	r := &ExecRunner{}
	out, err := r.Run(Command{
		Name: "sh",
		Args: []string{"-c", "echo $APMBUILD_TEST_VAR; pwd"},
		Dir:  dir,
		Env:  []string{"APMBUILD_TEST_VAR=hello"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(string(out), "hello") {
		t.Errorf("output %q missing env value", out)
	}
}

func TestExitCodeNotStarted(t *testing.T) {
	r := &ExecRunner{}
	_, err := r.Run(Command{Name: "apmbuild-definitely-not-a-tool"})
	if err == nil {
		t.Fatal("expected error for missing tool")
	}
	if code := ExitCode(err); code != -1 {
		t.Errorf("ExitCode = %d, want -1", code)
	}
	if code := ExitCode(errors.New("plain")); code != -1 {
		t.Errorf("ExitCode(plain) = %d, want -1", code)
	}
}
