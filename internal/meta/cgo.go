package meta

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
)

// systemLibs are the C++ runtime libraries a static link of the vendored
// library needs, per target OS.
var systemLibs = map[string][]string{
	"linux":   {"stdc++", "m", "pthread"},
	"android": {"c++_static", "m"},
	"freebsd": {"c++", "m", "pthread"},
	"darwin":  {"c++"},
	"ios":     {"c++"},
	"windows": nil,
}

// CgoFilename carries the GOOS/GOARCH suffix so the go tool only compiles
// the file for the target it was generated for.
func CgoFilename(goos, goarch string) string {
	return "zz_apmbuild_" + goos + "_" + goarch + ".go"
}

func cgoQuote(s string) string {
	s = filepath.ToSlash(s)
	if strings.ContainsAny(s, " \t'") {
		return `"` + s + `"`
	}
	return s
}

func writeln(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
	sb.WriteByte('\n')
}

// RenderCgo renders a Go file whose cgo preamble links the package against
// the artifacts described by m.
func RenderCgo(m *Metadata, pkg string) ([]byte, error) {
	var cflags []string
	for _, dir := range m.IncludeDirs {
		cflags = append(cflags, "-I"+cgoQuote(dir))
	}

	var ldflags []string
	for _, dir := range m.LinkSearch {
		ldflags = append(ldflags, "-L"+cgoQuote(dir))
	}
	if m.Shim != nil {
		// the shim references the library, so it goes first on the link line
		ldflags = append(ldflags, "-l"+m.Shim.Name)
	}
	ldflags = append(ldflags, "-l"+m.Link.Name)
	for _, lib := range systemLibs[m.OS] {
		ldflags = append(ldflags, "-l"+lib)
	}

	var sb strings.Builder
	writeln(&sb, "// Code generated by apmbuild; DO NOT EDIT.")
	writeln(&sb)
	writeln(&sb, "package ", pkg)
	writeln(&sb)
	writeln(&sb, "/*")
	if len(cflags) > 0 {
		writeln(&sb, "#cgo CFLAGS: ", strings.Join(cflags, " "))
		writeln(&sb, "#cgo CXXFLAGS: ", strings.Join(cflags, " "))
	}
	writeln(&sb, "#cgo LDFLAGS: ", strings.Join(ldflags, " "))
	writeln(&sb, "*/")
	writeln(&sb, `import "C"`)

	src, err := format.Source([]byte(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("generated cgo file does not parse: %w", err)
	}
	return src, nil
}

// WriteCgo writes the cgo file for m into dir and returns its path.
func WriteCgo(m *Metadata, dir, pkg string) (string, error) {
	src, err := RenderCgo(m, pkg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, CgoFilename(m.OS, m.Arch))
	return path, os.WriteFile(path, src, 0644)
}
