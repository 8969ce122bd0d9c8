package gen

import (
	"slices"
	"strings"
	"testing"
)

func testParams() Params {
	return Params{
		SourceDir: "/src/webrtc-src",
		BuildDir:  "/out/build",
		Prefix:    "/out",
		BuildType: "release",
		CxxStd:    "c++17",
		Args:      []string{"-Dextra=true"},
	}
}

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", SystemMeson, SystemCMake} {
		bs, err := New(name, "", ProgramsFromEnv(envFrom(nil)))
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		want := name
		if want == "" {
			want = SystemMeson
		}
		if bs.Name() != want {
			t.Errorf("New(%q).Name() = %q, want %q", name, bs.Name(), want)
		}
	}

	if _, err := New("bazel", "", Programs{}); err == nil || !strings.Contains(err.Error(), "cmake, meson") {
		t.Errorf("New(bazel) error = %v, want list of known systems", err)
	}
}

func TestMesonCommands(t *testing.T) {
	m := &Meson{progs: ProgramsFromEnv(envFrom(nil))}
	p := testParams()

	cfg := m.Configure(p)
	if cfg.Name != "meson" || cfg.Dir != p.BuildDir {
		t.Fatalf("configure = %s in %s", cfg, cfg.Dir)
	}
	want := []string{"setup", "--prefix=/out", "--buildtype=release", "-Dcpp_std=c++17", "-Dextra=true", "/src/webrtc-src"}
	if !slices.Equal(cfg.Args, want) {
		t.Errorf("configure args = %q, want %q", cfg.Args, want)
	}

	compile := m.Compile(p)
	if compile.Name != "ninja" || len(compile.Args) != 0 || compile.Dir != p.BuildDir {
		t.Errorf("compile = %s in %s, want bare ninja in build dir", compile, compile.Dir)
	}

	install := m.Install(p)
	if install.Name != "ninja" || !slices.Equal(install.Args, []string{"install"}) || install.Dir != p.BuildDir {
		t.Errorf("install = %s in %s", install, install.Dir)
	}
}

func TestMesonToolOverride(t *testing.T) {
	m := &Meson{progs: ProgramsFromEnv(envFrom(map[string]string{
		"MESON": "/opt/meson/bin/meson",
		"NINJA": "samu",
	}))}
	if got := m.Configure(testParams()).Name; got != "/opt/meson/bin/meson" {
		t.Errorf("configure tool = %q", got)
	}
	if got := m.Tools(); !slices.Equal(got, []string{"/opt/meson/bin/meson", "samu"}) {
		t.Errorf("Tools() = %q", got)
	}
}

func TestCMakeCommands(t *testing.T) {
	progs := ProgramsFromEnv(envFrom(nil))

	tests := []struct {
		generator string
		executor  string
	}{
		{GeneratorNinja, "ninja"},
		{GeneratorUnixMakefiles, "make"},
	}

	for _, tt := range tests {
		c := NewCMake(tt.generator, progs)
		p := testParams()

		cfg := c.Configure(p)
		joined := strings.Join(cfg.Args, " ")
		for _, want := range []string{
			"/src/webrtc-src",
			"-G " + tt.generator,
			"-DCMAKE_INSTALL_PREFIX=/out",
			"-DCMAKE_BUILD_TYPE=Release",
			"-DCMAKE_CXX_STANDARD=17",
		} {
			if !strings.Contains(joined, want) {
				t.Errorf("%s: configure args %q missing %q", tt.generator, joined, want)
			}
		}
		if cfg.Dir != p.BuildDir {
			t.Errorf("%s: configure dir = %q", tt.generator, cfg.Dir)
		}

		if got := c.Compile(p); got.Name != tt.executor || len(got.Args) != 0 {
			t.Errorf("%s: compile = %s, want %s", tt.generator, got, tt.executor)
		}
		if got := c.Install(p); got.Name != tt.executor || !slices.Equal(got.Args, []string{"install"}) {
			t.Errorf("%s: install = %s", tt.generator, got)
		}
	}
}

func TestCMakeDefaultGenerator(t *testing.T) {
	if c := NewCMake("", ProgramsFromEnv(envFrom(nil))); c.generator != GeneratorNinja {
		t.Errorf("default generator = %q, want %q", c.generator, GeneratorNinja)
	}

	progs := ProgramsFromEnv(envFrom(map[string]string{"CMAKE_GENERATOR": GeneratorUnixMakefiles, "MAKE": "gmake"}))
	c := NewCMake("", progs)
	if c.generator != GeneratorUnixMakefiles {
		t.Errorf("generator from env = %q", c.generator)
	}
	if got := c.Tools(); !slices.Equal(got, []string{"cmake", "gmake"}) {
		t.Errorf("Tools() = %q", got)
	}
}

func TestStdNumber(t *testing.T) {
	for in, want := range map[string]string{"c++17": "17", "gnu++20": "20", "14": "14"} {
		if got := stdNumber(in); got != want {
			t.Errorf("stdNumber(%q) = %q, want %q", in, got, want)
		}
	}
}
