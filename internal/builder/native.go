package builder

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/qobs-build/apmbuild/internal/builder/gen"
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/qobs-build/apmbuild/internal/proc"
)

// buildNative wipes the build directory and runs configure, compile and
// install in order. The first failing step aborts the rest.
func (b *Builder) buildNative(req Request) error {
	buildDir := req.BuildDir()
	if err := os.RemoveAll(buildDir); err != nil {
		return fmt.Errorf("failed to clear build directory: %w", err)
	}
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return err
	}

	p := gen.Params{
		SourceDir: req.SourceDir,
		BuildDir:  buildDir,
		Prefix:    req.Prefix(),
		BuildType: b.cfg.Profile[req.Profile].BuildType,
		CxxStd:    b.cfg.Native.CxxStd,
		Args:      b.cfg.Native.Args,
		Env:       envList(b.cfg.Native.Env),
	}

	steps := []struct {
		stage string
		verb  string
		cmd   proc.Command
	}{
		{"configure", "Configuring", b.sys.Configure(p)},
		{"compile", "Compiling", b.sys.Compile(p)},
		{"install", "Installing", b.sys.Install(p)},
	}

	for _, step := range steps {
		msg.Status(step.verb, "%s (%s)", filepath.Base(req.SourceDir), b.sys.Name())
		output, err := b.runner.Run(step.cmd)
		if err == nil {
			continue
		}

		stageErr := &StageError{
			Kind:     ErrToolInvocation,
			Stage:    step.stage,
			Path:     buildDir,
			Command:  step.cmd.String(),
			ExitCode: proc.ExitCode(err),
			Output:   output,
			Err:      err,
		}
		if stageErr.ExitCode < 0 {
			stageErr.Hint = fmt.Sprintf("is %s installed and on PATH? `apmbuild doctor` lists the tools a build needs", step.cmd.Name)
		}
		return stageErr
	}
	return nil
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		list = append(list, k+"="+env[k])
	}
	return list
}
