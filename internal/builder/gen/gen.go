// Package gen holds the configure backends that can drive the vendored
// source tree's own build system.
package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/qobs-build/apmbuild/internal/proc"
)

const (
	SystemMeson = "meson"
	SystemCMake = "cmake"
)

// Params are the inputs shared by every backend invocation.
type Params struct {
	SourceDir string
	BuildDir  string
	Prefix    string   // install prefix
	BuildType string   // backend-neutral build type, e.g. "debug", "release"
	CxxStd    string   // e.g. "c++17"
	Args      []string // extra configure arguments
	Env       []string // extra KEY=VALUE pairs for every step
}

// BuildSystem produces the three commands of a configure → compile → install
// sequence. Compile and install always run inside Params.BuildDir.
type BuildSystem interface {
	Name() string
	Configure(p Params) proc.Command
	Compile(p Params) proc.Command
	Install(p Params) proc.Command
	// Tools lists the executables the backend needs on PATH.
	Tools() []string
}

// New returns the backend registered under name. generator is only
// meaningful for cmake.
func New(name, generator string, progs Programs) (BuildSystem, error) {
	switch name {
	case SystemMeson, "":
		return &Meson{progs: progs}, nil
	case SystemCMake:
		return NewCMake(generator, progs), nil
	default:
		return nil, fmt.Errorf("unknown build system %q, known: %s", name, strings.Join(Systems(), ", "))
	}
}

func Systems() []string {
	s := []string{SystemMeson, SystemCMake}
	slices.Sort(s)
	return s
}
