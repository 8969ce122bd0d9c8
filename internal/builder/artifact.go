package builder

import (
	"os"
	"path/filepath"

	"github.com/qobs-build/apmbuild/internal/meta"
)

// libExtensions lists valid library extensions per target OS, highest
// priority first. Static archives always win.
var libExtensions = map[string][]string{
	"windows": {"lib", "a"},
	"darwin":  {"a", "dylib"},
	"ios":     {"a", "dylib"},
}

var defaultLibExtensions = []string{"a", "so", "dylib"}

// LibExtensions returns the extension search order for targetOS.
func LibExtensions(targetOS string) []string {
	if exts, ok := libExtensions[targetOS]; ok {
		return exts
	}
	return defaultLibExtensions
}

// Candidate is one place the compiled library might live.
type Candidate struct {
	Dir  string
	Name string
	Ext  string
}

func (c Candidate) Filename() string { return "lib" + c.Name + "." + c.Ext }

func (c Candidate) Path() string { return filepath.Join(c.Dir, c.Filename()) }

// Candidates expands dirs × names × exts in search order.
func Candidates(dirs, names, exts []string) []Candidate {
	list := make([]Candidate, 0, len(dirs)*len(names)*len(exts))
	for _, dir := range dirs {
		for _, name := range names {
			for _, ext := range exts {
				list = append(list, Candidate{Dir: dir, Name: name, Ext: ext})
			}
		}
	}
	return list
}

// FindFirst returns the first candidate whose file exists.
func FindFirst(candidates []Candidate, exists func(path string) bool) (Candidate, bool) {
	for _, c := range candidates {
		if exists(c.Path()) {
			return c, true
		}
	}
	return Candidate{}, false
}

// Resolution is the outcome of artifact resolution.
type Resolution struct {
	// SearchPaths are the existing library directories visited before the
	// search stopped, in order.
	SearchPaths []string
	Link        meta.LinkDirective
}

// ResolveArtifact looks for the installed library under prefix. It always
// produces exactly one link directive: the first match, or a fallback naming
// names[0] for the linker's default search path to find.
func ResolveArtifact(prefix, targetOS string, libDirs, names []string) Resolution {
	var dirs []string
	for _, d := range libDirs {
		dir := filepath.Join(prefix, d)
		if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
			dirs = append(dirs, dir)
		}
	}

	match, found := FindFirst(Candidates(dirs, names, LibExtensions(targetOS)), fileExists)
	if !found {
		return Resolution{
			SearchPaths: dirs,
			Link: meta.LinkDirective{
				Name: names[0],
				Kind: meta.LinkStatic,
			},
		}
	}

	var visited []string
	for _, dir := range dirs {
		visited = append(visited, dir)
		if dir == match.Dir {
			break
		}
	}

	return Resolution{
		SearchPaths: visited,
		Link: meta.LinkDirective{
			SearchPath: match.Dir,
			Name:       match.Name,
			Kind:       meta.LinkStatic,
			Path:       match.Path(),
			Confirmed:  true,
		},
	}
}

func fileExists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}
