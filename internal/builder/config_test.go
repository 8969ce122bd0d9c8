package builder

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func testEnv(t *testing.T, os, profile string) ConfigEnv {
	t.Helper()
	return NewConfigEnv(t.TempDir(), Target{OS: os, Arch: "amd64", Profile: profile})
}

func TestParseConfigFromFileMissing(t *testing.T) {
	cfg, err := ParseConfigFromFile(filepath.Join(t.TempDir(), ConfigFilename), testEnv(t, "linux", "debug"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.Dir != defaultSourceDir || cfg.Native.System != "meson" {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if !slices.Equal(cfg.Profiles(), []string{"debug", "release"}) {
		t.Errorf("Profiles() = %q", cfg.Profiles())
	}
}

func TestParseConfigConditionalSections(t *testing.T) {
	const src = `
[native]
args = ["-Dfoo=1"]

[native.'target_os == "windows"']
args = ["-Ddefault_library=static"]
env = { CC = "cl" }

[native.'profile == "release"']
args = ["-Db_lto=true"]

[shim.defines]
APM_HEADLESS = "1"
`

	tests := []struct {
		os, profile string
		wantArgs    []string
		wantEnv     map[string]string
	}{
		{"linux", "debug", []string{"-Dfoo=1"}, nil},
		{"windows", "debug", []string{"-Dfoo=1", "-Ddefault_library=static"}, map[string]string{"CC": "cl"}},
		{"linux", "release", []string{"-Dfoo=1", "-Db_lto=true"}, nil},
		// conditional tables merge in key order
		{"windows", "release", []string{"-Dfoo=1", "-Db_lto=true", "-Ddefault_library=static"}, map[string]string{"CC": "cl"}},
	}

	for _, tt := range tests {
		t.Run(tt.os+"_"+tt.profile, func(t *testing.T) {
			cfg, err := ParseConfig(strings.NewReader(src), testEnv(t, tt.os, tt.profile))
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(cfg.Native.Args, tt.wantArgs) {
				t.Errorf("Args = %q, want %q", cfg.Native.Args, tt.wantArgs)
			}
			if len(cfg.Native.Env) != len(tt.wantEnv) || cfg.Native.Env["CC"] != tt.wantEnv["CC"] {
				t.Errorf("Env = %v, want %v", cfg.Native.Env, tt.wantEnv)
			}
			// defaults untouched by the file survive
			if !slices.Equal(cfg.Native.Libraries, []string{defaultLibrary}) {
				t.Errorf("Libraries = %q", cfg.Native.Libraries)
			}
			if cfg.Shim.Defines["WEBRTC_APM_DEBUG_DUMP"] != "0" || cfg.Shim.Defines["APM_HEADLESS"] != "1" {
				t.Errorf("Shim.Defines = %v, want default merged with file", cfg.Shim.Defines)
			}
		})
	}
}

func TestParseConfigInterpolation(t *testing.T) {
	const src = `
[bindings]
output = "bindings-{{ target_os }}-{{ profile }}.yaml"
`
	cfg, err := ParseConfig(strings.NewReader(src), testEnv(t, "darwin", "release"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bindings.Output != "bindings-darwin-release.yaml" {
		t.Errorf("Output = %q", cfg.Bindings.Output)
	}
	if cfg.Bindings.Header != "wrapper.h" {
		t.Errorf("Header = %q, want default kept", cfg.Bindings.Header)
	}
}

func TestParseConfigProfilesAndWatch(t *testing.T) {
	const src = `
watch = ["patches/**/*.patch", "meson_options.txt"]

[profile.fast]
buildtype = "debugoptimized"
`
	cfg, err := ParseConfig(strings.NewReader(src), testEnv(t, "linux", "debug"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(cfg.Profiles(), []string{"debug", "fast", "release"}) {
		t.Errorf("Profiles() = %q", cfg.Profiles())
	}
	if cfg.Profile["fast"].BuildType != "debugoptimized" {
		t.Errorf("fast = %+v", cfg.Profile["fast"])
	}
	if _, ok := cfg.Profile["release"].Defines["NDEBUG"]; !ok {
		t.Error("release profile lost NDEBUG")
	}
	if !slices.Equal(cfg.Watch, []string{"patches/**/*.patch", "meson_options.txt"}) {
		t.Errorf("Watch = %q", cfg.Watch)
	}
}

func TestParseConfigProfileWithoutBuildType(t *testing.T) {
	const src = `
[profile.release.defines]
APM_TRACE = "0"

[profile.minsize]
`
	cfg, err := ParseConfig(strings.NewReader(src), testEnv(t, "linux", "release"))
	if err != nil {
		t.Fatal(err)
	}

	release := cfg.Profile["release"]
	if release.BuildType != "release" {
		t.Errorf("release buildtype = %q, want release", release.BuildType)
	}
	if _, ok := release.Defines["NDEBUG"]; ok || release.Defines["APM_TRACE"] != "0" {
		t.Errorf("release defines = %v, want the table from the manifest only", release.Defines)
	}
	if got := cfg.Profile["minsize"].BuildType; got != "minsize" {
		t.Errorf("minsize buildtype = %q", got)
	}
	if got := cfg.Profile["debug"].BuildType; got != "debug" {
		t.Errorf("debug buildtype = %q", got)
	}
}

func TestParseConfigErrors(t *testing.T) {
	for name, src := range map[string]string{
		"no libraries":     "[native]\nlibraries = []\n",
		"watch not a list": "watch = \"*.patch\"\n",
		"section not table": "native = 1\n",
		"bad interpolation": "[source]\ndir = \"{{ nope( }}\"\n",
		"bad toml":         "[native\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig(strings.NewReader(src), testEnv(t, "linux", "debug")); err == nil {
				t.Error("ParseConfig succeeded, want error")
			}
		})
	}
}
