package gen

import (
	"github.com/qobs-build/apmbuild/internal/proc"
)

// Meson drives `meson setup` followed by ninja, the vendored tree's native
// build convention.
type Meson struct {
	progs Programs
}

func (m *Meson) Name() string { return SystemMeson }

func (m *Meson) Tools() []string { return []string{m.progs.Meson, m.progs.Ninja} }

var mesonBuildTypes = map[string]string{
	"debug":          "debug",
	"release":        "release",
	"debugoptimized": "debugoptimized",
	"minsize":        "minsize",
	"plain":          "plain",
}

// Configure runs from inside the build directory with the source tree as the
// only positional argument; meson takes the working directory as the build dir.
func (m *Meson) Configure(p Params) proc.Command {
	buildType, ok := mesonBuildTypes[p.BuildType]
	if !ok {
		buildType = p.BuildType
	}

	args := []string{
		"setup",
		"--prefix=" + p.Prefix,
		"--buildtype=" + buildType,
	}
	if p.CxxStd != "" {
		args = append(args, "-Dcpp_std="+p.CxxStd)
	}
	args = append(args, p.Args...)
	args = append(args, p.SourceDir)

	return proc.Command{Name: m.progs.Meson, Args: args, Dir: p.BuildDir, Env: p.Env}
}

func (m *Meson) Compile(p Params) proc.Command {
	return proc.Command{Name: m.progs.Ninja, Dir: p.BuildDir, Env: p.Env}
}

func (m *Meson) Install(p Params) proc.Command {
	return proc.Command{Name: m.progs.Ninja, Args: []string{"install"}, Dir: p.BuildDir, Env: p.Env}
}
