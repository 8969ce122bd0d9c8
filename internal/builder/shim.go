package builder

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/qobs-build/apmbuild/internal/meta"
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/qobs-build/apmbuild/internal/proc"
)

// platformDefines are the preprocessor symbols the vendored headers expect
// to be set by whoever includes them.
var platformDefines = map[string][]string{
	"linux":   {"WEBRTC_POSIX", "WEBRTC_LINUX"},
	"android": {"WEBRTC_POSIX", "WEBRTC_LINUX", "WEBRTC_ANDROID"},
	"darwin":  {"WEBRTC_POSIX", "WEBRTC_MAC"},
	"ios":     {"WEBRTC_POSIX", "WEBRTC_MAC", "WEBRTC_IOS"},
	"freebsd": {"WEBRTC_POSIX", "WEBRTC_BSD"},
	"windows": {"WEBRTC_WIN", "NOMINMAX"},
}

// shimJob is a fully planned shim build: compile one translation unit, then
// archive the object into a static library.
type shimJob struct {
	out     meta.Shim
	object  string
	compile proc.Command
	archive proc.Command
}

func shimDefines(req Request, cfg *Config) map[string]string {
	defines := make(map[string]string)
	for _, d := range platformDefines[req.OS] {
		defines[d] = ""
	}
	maps.Copy(defines, cfg.Shim.Defines)
	maps.Copy(defines, cfg.Profile[req.Profile].Defines)
	return defines
}

func defineFlag(prefix, name, value string) string {
	if value == "" {
		return prefix + name
	}
	return prefix + name + "=" + value
}

func planShim(req Request, cfg *Config, cc compiler) shimJob {
	source := req.ManifestPath(cfg.Shim.Source)
	dir := filepath.Join(req.OutDir, "shim")
	includeDir := filepath.Join(req.Prefix(), "include")
	includes := []string{filepath.Join(includeDir, cfg.Native.IncludeSubdir), includeDir}
	defines := shimDefines(req, cfg)
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	release := cfg.Profile[req.Profile].BuildType != "debug"

	job := shimJob{out: meta.Shim{Dir: dir, Name: cfg.Shim.Name}}

	if cc.msvc() {
		job.object = filepath.Join(dir, base+".obj")
		job.out.Archive = filepath.Join(dir, cfg.Shim.Name+".lib")

		args := []string{"/nologo", "/EHsc", "/std:" + cfg.Native.CxxStd}
		if release {
			args = append(args, "/O2")
		} else {
			args = append(args, "/Zi")
		}
		for _, inc := range includes {
			args = append(args, "/I"+inc)
		}
		for _, name := range slices.Sorted(maps.Keys(defines)) {
			args = append(args, defineFlag("/D", name, defines[name]))
		}
		args = append(args, cfg.Shim.Cflags...)
		args = append(args, "/c", source, "/Fo"+job.object)

		job.compile = proc.Command{Name: cc.cxx, Args: args, Dir: dir}
		job.archive = proc.Command{Name: cc.ar, Args: []string{"/nologo", "/OUT:" + job.out.Archive, job.object}, Dir: dir}
		return job
	}

	job.object = filepath.Join(dir, base+".o")
	job.out.Archive = filepath.Join(dir, "lib"+cfg.Shim.Name+".a")

	args := []string{"-std=" + cfg.Native.CxxStd}
	if release {
		args = append(args, "-O2")
	} else {
		args = append(args, "-g")
	}
	if req.OS != "windows" {
		args = append(args, "-fPIC")
	}
	for _, inc := range includes {
		args = append(args, "-I"+inc)
	}
	for _, name := range slices.Sorted(maps.Keys(defines)) {
		args = append(args, defineFlag("-D", name, defines[name]))
	}
	args = append(args, cfg.Shim.Cflags...)
	args = append(args, "-c", source, "-o", job.object)

	job.compile = proc.Command{Name: cc.cxx, Args: args, Dir: dir}
	job.archive = proc.Command{Name: cc.ar, Args: []string{"rcs", job.out.Archive, job.object}, Dir: dir}
	return job
}

// compileShim builds the shim library. On failure the shim directory is
// removed so no half-built archive is left behind.
func (b *Builder) compileShim(req Request) (*meta.Shim, error) {
	cc := b.cc
	job := planShim(req, b.cfg, cc)
	if cc.cxx == "" {
		return nil, &StageError{
			Kind:     ErrShimCompile,
			Stage:    "shim",
			Path:     req.ManifestPath(b.cfg.Shim.Source),
			ExitCode: -1,
			Hint:     "no C++ compiler found; set CXX",
		}
	}

	if err := os.RemoveAll(job.out.Dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(job.out.Dir, 0755); err != nil {
		return nil, err
	}

	fail := func(step string, c proc.Command, output []byte, err error) (*meta.Shim, error) {
		os.RemoveAll(job.out.Dir)
		return nil, &StageError{
			Kind:     ErrShimCompile,
			Stage:    step,
			Path:     req.ManifestPath(b.cfg.Shim.Source),
			Command:  c.String(),
			ExitCode: proc.ExitCode(err),
			Output:   output,
			Err:      err,
		}
	}

	msg.Status("Compiling", "%s", b.cfg.Shim.Source)
	if output, err := b.runner.Run(job.compile); err != nil {
		return fail("shim compile", job.compile, output, err)
	}

	msg.Status("Archiving", "%s", filepath.Base(job.out.Archive))
	if output, err := b.runner.Run(job.archive); err != nil {
		return fail("shim archive", job.archive, output, err)
	}

	return &job.out, nil
}
