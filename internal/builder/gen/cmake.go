package gen

import (
	"github.com/qobs-build/apmbuild/internal/proc"
)

const (
	GeneratorNinja         = "Ninja"
	GeneratorUnixMakefiles = "Unix Makefiles"
)

// CMake configures with cmake and builds with the executor matching the
// selected generator, so "install" is always a target of the same tool.
type CMake struct {
	generator string
	progs     Programs
}

func NewCMake(generator string, progs Programs) *CMake {
	if generator == "" {
		generator = orDefault(progs.CMakeGenerator, GeneratorNinja)
	}
	return &CMake{generator: generator, progs: progs}
}

func (c *CMake) Name() string { return SystemCMake }

func (c *CMake) Tools() []string { return []string{c.progs.CMake, c.executor()} }

var cmakeBuildTypes = map[string]string{
	"debug":          "Debug",
	"release":        "Release",
	"debugoptimized": "RelWithDebInfo",
	"minsize":        "MinSizeRel",
}

func (c *CMake) Configure(p Params) proc.Command {
	buildType, ok := cmakeBuildTypes[p.BuildType]
	if !ok {
		buildType = p.BuildType
	}

	args := []string{
		p.SourceDir,
		"-G", c.generator,
		"-DCMAKE_INSTALL_PREFIX=" + p.Prefix,
		"-DCMAKE_BUILD_TYPE=" + buildType,
	}
	if p.CxxStd != "" {
		args = append(args,
			"-DCMAKE_CXX_STANDARD="+stdNumber(p.CxxStd),
			"-DCMAKE_CXX_STANDARD_REQUIRED=ON",
		)
	}
	args = append(args, p.Args...)

	return proc.Command{Name: c.progs.CMake, Args: args, Dir: p.BuildDir, Env: p.Env}
}

func (c *CMake) Compile(p Params) proc.Command {
	return proc.Command{Name: c.executor(), Dir: p.BuildDir, Env: p.Env}
}

func (c *CMake) Install(p Params) proc.Command {
	return proc.Command{Name: c.executor(), Args: []string{"install"}, Dir: p.BuildDir, Env: p.Env}
}

func (c *CMake) executor() string {
	if c.generator == GeneratorUnixMakefiles {
		return c.progs.Make
	}
	return c.progs.Ninja
}
