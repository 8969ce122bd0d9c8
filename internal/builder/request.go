package builder

import (
	"path/filepath"
	"runtime"
)

// Target is the platform triple a build is made for.
type Target struct {
	OS      string
	Arch    string
	Profile string
}

func (t Target) String() string {
	return t.OS + "_" + t.Arch
}

// Options carry the command line overrides. Empty fields fall back to the
// environment, then to defaults.
type Options struct {
	Profile string
	OutDir  string
	System  string
}

// Getenv is the environment lookup used to resolve a request. It is a
// parameter so resolution stays a pure function of its inputs.
type Getenv func(key string) string

// ResolveTarget reads the target once: GOOS/GOARCH select a cross target like
// they do for the go tool, APMBUILD_PROFILE selects the profile.
func ResolveTarget(opts Options, getenv Getenv) Target {
	t := Target{
		OS:      firstNonEmpty(getenv("GOOS"), runtime.GOOS),
		Arch:    firstNonEmpty(getenv("GOARCH"), runtime.GOARCH),
		Profile: firstNonEmpty(opts.Profile, getenv("APMBUILD_PROFILE"), "debug"),
	}
	return t
}

// Request is everything one pipeline run needs to know about where it builds.
// It is created once and passed by value to every stage.
type Request struct {
	Target
	SourceDir   string
	OutDir      string
	ManifestDir string
}

// NewRequest derives the request from the manifest root, the resolved target
// and the parsed config. All paths are absolute.
func NewRequest(manifestDir string, t Target, cfg *Config, opts Options, getenv Getenv) (Request, error) {
	manifestDir, err := filepath.Abs(manifestDir)
	if err != nil {
		return Request{}, err
	}

	outDir := firstNonEmpty(opts.OutDir, getenv("APMBUILD_OUT_DIR"))
	if outDir == "" {
		outDir = filepath.Join(manifestDir, "build", t.String(), t.Profile)
	} else if outDir, err = filepath.Abs(outDir); err != nil {
		return Request{}, err
	}

	sourceDir := cfg.Source.Dir
	if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(manifestDir, sourceDir)
	}

	return Request{
		Target:      t,
		SourceDir:   filepath.Clean(sourceDir),
		OutDir:      filepath.Clean(outDir),
		ManifestDir: manifestDir,
	}, nil
}

// BuildDir is the scratch directory wiped at the start of every run.
func (r Request) BuildDir() string { return filepath.Join(r.OutDir, "build") }

// Prefix is the install prefix handed to the vendored build.
func (r Request) Prefix() string { return r.OutDir }

// ManifestPath resolves a manifest-relative path.
func (r Request) ManifestPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(r.ManifestDir, rel)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
