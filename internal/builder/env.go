package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ConfigEnv is the environment config expressions and the prepare script are
// evaluated in.
type ConfigEnv struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Profile    string            `expr:"profile"`
	Environ    map[string]string `expr:"environ"`
	basedir    string
}

func NewConfigEnv(basedir string, t Target) ConfigEnv {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			environ[k] = v
		}
	}

	return ConfigEnv{
		TargetOS:   t.OS,
		TargetArch: t.Arch,
		Profile:    t.Profile,
		Environ:    environ,
		basedir:    basedir,
	}
}

// resolve maps path onto the manifest root and rejects anything outside it.
func (env ConfigEnv) resolve(path string) (string, error) {
	fullPath := filepath.Join(env.basedir, path)
	rel, err := filepath.Rel(env.basedir, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside of %q", path, env.basedir)
	}
	return fullPath, nil
}

// Patch applies a diff-match-patch patch text to path. It reports whether any
// hunk applied; a file that already carries the patch is left untouched.
func (env ConfigEnv) Patch(path, patchText string) (bool, error) {
	fullPath, err := env.resolve(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return false, err
	}

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patchText)
	if err != nil {
		return false, fmt.Errorf("invalid patch for %s: %w", path, err)
	}
	patchedText, results := dmp.PatchApply(patches, string(data))

	applied := false
	for _, ok := range results {
		applied = applied || ok
	}
	if !applied || patchedText == string(data) {
		return false, nil
	}

	return true, os.WriteFile(fullPath, []byte(patchedText), 0644)
}

func (env ConfigEnv) ReadFile(path string) (string, error) {
	fullPath, err := env.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether path exists under the manifest root.
func (env ConfigEnv) Exists(path string) bool {
	fullPath, err := env.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// RunScript evaluates script in env. The script must return true.
func (env ConfigEnv) RunScript(name, script string) error {
	if script == "" {
		return nil
	}

	program, err := expr.Compile(script, expr.Env(env))
	if err != nil {
		return fmt.Errorf("failed to compile %s script: %w", name, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return fmt.Errorf("failed to run %s script: %w", name, err)
	}

	if ok, isBool := result.(bool); !isBool || !ok {
		return fmt.Errorf("%s script returned %v, want true\n%s", name, result, script)
	}
	return nil
}
