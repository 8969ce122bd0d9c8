package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qobs-build/apmbuild/internal/builder/gen"
	"github.com/qobs-build/apmbuild/internal/meta"
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/qobs-build/apmbuild/internal/proc"
)

// Builder runs the pipeline for one manifest root. Everything it reads from
// the environment is captured once when the Builder is created: the target
// and paths in req, the tools in sys and cc.
type Builder struct {
	cfg    *Config
	req    Request
	env    ConfigEnv
	sys    gen.BuildSystem
	cc     compiler
	runner proc.Runner
}

// Result is what a successful run produced.
type Result struct {
	Metadata *meta.Metadata
	Manifest string // path of the written apmbuild.json
	CgoFile  string // path of the cgo directives file, if one was written
	Shim     StageOutcome
	Bindings StageOutcome
}

func NewBuilderInDirectory(path string, opts Options) (*Builder, error) {
	var err error
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	target := ResolveTarget(opts, os.Getenv)
	env := NewConfigEnv(path, target)
	cfg, err := ParseConfigFromFile(filepath.Join(path, ConfigFilename), env)
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Profile[target.Profile]; !ok {
		return nil, fmt.Errorf("%w %q, known profiles: %s", errUnknownProfile, target.Profile, strings.Join(cfg.Profiles(), ", "))
	}

	req, err := NewRequest(path, target, cfg, opts, os.Getenv)
	if err != nil {
		return nil, err
	}
	sys, err := gen.New(firstNonEmpty(opts.System, cfg.Native.System), cfg.Native.Generator, gen.ProgramsFromEnv(os.Getenv))
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:    cfg,
		req:    req,
		env:    env,
		sys:    sys,
		cc:     findCompiler(os.Getenv),
		runner: proc.NewExecRunner(),
	}, nil
}

func (b *Builder) Request() Request { return b.req }

func (b *Builder) Config() *Config { return b.cfg }

// BuildSystem is the configure backend this builder drives.
func (b *Builder) BuildSystem() gen.BuildSystem { return b.sys }

// Build runs every stage in order and writes the build metadata. Mandatory
// stages abort on the first failure; the shim and binding stages run only
// when their input file exists.
func (b *Builder) Build() (*Result, error) {
	req := b.req

	if err := LocateSource(req, b.cfg.Source.Remote); err != nil {
		return nil, err
	}
	if err := b.env.RunScript("prepare", b.cfg.Source.Prepare); err != nil {
		return nil, &StageError{Kind: ErrToolInvocation, Stage: "prepare", Path: req.ManifestPath(ConfigFilename), ExitCode: -1, Err: err}
	}
	if err := b.buildNative(req); err != nil {
		return nil, err
	}

	m := &meta.Metadata{OS: req.OS, Arch: req.Arch, Profile: req.Profile}
	b.resolveArtifact(req, m)

	result := &Result{Metadata: m}
	var err error
	if result.Shim, err = b.shimStage(req, m).execute(); err != nil {
		return nil, err
	}
	if result.Bindings, err = b.bindingStage(req, m).execute(); err != nil {
		return nil, err
	}

	if err := b.addRerunTriggers(req, m); err != nil {
		return nil, err
	}
	if err := b.emit(req, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (b *Builder) resolveArtifact(req Request, m *meta.Metadata) {
	res := ResolveArtifact(req.Prefix(), req.OS, b.cfg.Native.LibDirs, b.cfg.Native.Libraries)
	if res.Link.Confirmed {
		msg.Status("Found", "%s", res.Link.Path)
	} else {
		msg.Warn("no compiled library found under %s, linking %s by name", req.Prefix(), res.Link.Name)
		m.Warn("library %s not found under %s", res.Link.Name, req.Prefix())
	}

	m.AddLinkSearch(res.SearchPaths...)
	m.Link = res.Link

	includeDir := filepath.Join(req.Prefix(), "include")
	m.AddInclude(includeDir, filepath.Join(includeDir, b.cfg.Native.IncludeSubdir))
}

func (b *Builder) shimStage(req Request, m *meta.Metadata) optionalStage {
	return optionalStage{
		name:  "shim",
		input: req.ManifestPath(b.cfg.Shim.Source),
		run: func() error {
			shim, err := b.compileShim(req)
			if err != nil {
				return err
			}
			m.Shim = shim
			m.AddLinkSearch(shim.Dir)
			return nil
		},
	}
}

func (b *Builder) bindingStage(req Request, m *meta.Metadata) optionalStage {
	return optionalStage{
		name:  "bindings",
		input: req.ManifestPath(b.cfg.Bindings.Header),
		run: func() error {
			out, err := b.generateBindings(req)
			if err != nil {
				return err
			}
			m.Bindings = out
			return nil
		},
	}
}

// addRerunTriggers lists every input whose change should make the host run
// the pipeline again.
func (b *Builder) addRerunTriggers(req Request, m *meta.Metadata) error {
	m.AddRerun(
		req.ManifestPath(ConfigFilename),
		req.SourceDir,
		req.ManifestPath(b.cfg.Shim.Source),
		req.ManifestPath(b.cfg.Shim.Header),
		req.ManifestPath(b.cfg.Bindings.Header),
	)

	fsys := os.DirFS(req.ManifestDir)
	for _, pattern := range b.cfg.Watch {
		if filepath.IsAbs(pattern) {
			m.AddRerun(filepath.Clean(pattern))
			continue
		}
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("watch pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			m.AddRerun(filepath.Join(req.ManifestDir, filepath.FromSlash(match)))
		}
	}
	return nil
}

// emit writes the manifest and, when configured, the cgo directives file.
func (b *Builder) emit(req Request, result *Result) error {
	result.Manifest = filepath.Join(req.OutDir, meta.ManifestFilename)
	if err := result.Metadata.Save(result.Manifest); err != nil {
		return fmt.Errorf("failed to write build metadata: %w", err)
	}

	if b.cfg.Cgo.Dir != "" {
		path, err := meta.WriteCgo(result.Metadata, req.ManifestPath(b.cfg.Cgo.Dir), b.cfg.Cgo.Package)
		if err != nil {
			return fmt.Errorf("failed to write cgo directives: %w", err)
		}
		result.CgoFile = path
		msg.Status("Generated", "%s", path)
	}
	return nil
}

// Fetch clones the vendored tree into the configured source directory.
func (b *Builder) Fetch() error {
	return FetchSource(b.req, b.cfg.Source.Remote)
}

// Clean removes the output directory of the current target and profile.
func (b *Builder) Clean() error {
	if _, err := os.Stat(b.req.OutDir); os.IsNotExist(err) {
		return nil
	}
	msg.Status("Removing", "%s", b.req.OutDir)
	return os.RemoveAll(b.req.OutDir)
}
