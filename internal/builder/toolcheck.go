package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/qobs-build/apmbuild/internal/proc"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
)

// minVersions are the oldest tool releases the vendored build is known to
// work with, keyed by the default program name.
var minVersions = map[string]string{
	"meson": "v0.63.0",
	"ninja": "v1.8.2",
	"cmake": "v3.16.0",
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Tool is an executable the pipeline needs.
type Tool struct {
	Name       string // what the tool is for, e.g. "configure"
	Program    string
	MinVersion string // semver with a leading "v", empty for any
	Optional   bool
}

// ToolStatus is the outcome of probing one Tool.
type ToolStatus struct {
	Tool
	Path    string
	Version string
	Err     error
}

func (s ToolStatus) OK() bool { return s.Err == nil }

// RequiredTools lists what a build with b needs: the backend's tools plus the
// compiler and archiver for the shim.
func (b *Builder) RequiredTools() []Tool {
	tools := b.sys.Tools()
	list := []Tool{
		{Name: "configure", Program: tools[0], MinVersion: minVersions[b.sys.Name()]},
	}
	if len(tools) > 1 {
		list = append(list, Tool{Name: "build", Program: tools[1], MinVersion: minVersions[programName(tools[1])]})
	}

	cc := b.cc
	shimOptional := !fileExists(b.req.ManifestPath(b.cfg.Shim.Source))
	list = append(list,
		Tool{Name: "c++ compiler", Program: cc.cxx, Optional: shimOptional},
		Tool{Name: "archiver", Program: cc.ar, Optional: shimOptional},
	)
	return list
}

// programName strips the directory and .exe suffix so MESON=/opt/bin/meson
// still finds its minimum version.
func programName(program string) string {
	return strings.TrimSuffix(filepath.Base(program), ".exe")
}

// CheckTools probes every tool concurrently. lookPath is exec.LookPath
// outside of tests.
func CheckTools(ctx context.Context, tools []Tool, runner proc.Runner, lookPath func(string) (string, error)) ([]ToolStatus, error) {
	statuses := make([]ToolStatus, len(tools))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, tool := range tools {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			statuses[i] = probeTool(tool, runner, lookPath)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func probeTool(tool Tool, runner proc.Runner, lookPath func(string) (string, error)) ToolStatus {
	status := ToolStatus{Tool: tool}
	if tool.Program == "" {
		status.Err = fmt.Errorf("no %s found", tool.Name)
		return status
	}

	path, err := lookPath(tool.Program)
	if err != nil {
		status.Err = fmt.Errorf("%s not found on PATH", tool.Program)
		return status
	}
	status.Path = path

	args := []string{"--version"}
	if (compiler{cxx: path}).msvc() {
		args = nil // cl.exe prints its banner when called without arguments
	}
	output, _ := runner.Run(proc.Command{Name: path, Args: args})
	if v := versionPattern.Find(output); v != nil {
		status.Version = "v" + string(v)
	}

	if tool.MinVersion == "" {
		return status
	}
	if !semver.IsValid(status.Version) {
		status.Err = fmt.Errorf("could not determine %s version", tool.Program)
		return status
	}
	if semver.Compare(status.Version, tool.MinVersion) < 0 {
		status.Err = fmt.Errorf("%s %s is older than the required %s", tool.Program, status.Version, tool.MinVersion)
	}
	return status
}
