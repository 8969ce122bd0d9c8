package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func TestConfigEnvPatch(t *testing.T) {
	dir := t.TempDir()
	env := NewConfigEnv(dir, Target{OS: "linux", Arch: "amd64", Profile: "debug"})

	const before = "project('webrtc-audio-processing', 'c', 'cpp',\n  default_options : ['cpp_std=c++14'])\n"
	const after = "project('webrtc-audio-processing', 'c', 'cpp',\n  default_options : ['cpp_std=c++17'])\n"
	writeFile(t, filepath.Join(dir, "src", "meson.build"), before)

	dmp := diffmatchpatch.New()
	patchText := dmp.PatchToText(dmp.PatchMake(before, after))

	applied, err := env.Patch("src/meson.build", patchText)
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatal("patch not applied")
	}
	data, err := os.ReadFile(filepath.Join(dir, "src", "meson.build"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != after {
		t.Errorf("patched file = %q, want %q", data, after)
	}

	if _, err := env.Patch("../outside.txt", patchText); err == nil {
		t.Error("patching outside the manifest root succeeded")
	}
}

func TestConfigEnvRunScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "VERSION"), "1.3")
	env := NewConfigEnv(dir, Target{OS: "linux", Arch: "amd64", Profile: "release"})

	tests := []struct {
		script  string
		wantErr bool
	}{
		{"", false},
		{`Exists("VERSION") && ReadFile("VERSION") == "1.3"`, false},
		{`target_os == "linux" && profile == "release"`, false},
		{`Exists("missing")`, true},
		{`1 + 1`, true},
		{`ReadFile("../etc/passwd") != ""`, true},
		{`this is not expr`, true},
	}
	for _, tt := range tests {
		err := env.RunScript("prepare", tt.script)
		if (err != nil) != tt.wantErr {
			t.Errorf("RunScript(%q) error = %v, wantErr %v", tt.script, err, tt.wantErr)
		}
	}
}
