// Package meta describes what a pipeline run hands back to the host build:
// rebuild triggers, linker search paths, the link directive and the
// generated binding descriptor.
package meta

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// ManifestFilename is written into the output directory after every run.
const ManifestFilename = "apmbuild.json"

const LinkStatic = "static"

// LinkDirective tells the host linker which library to link and where to
// look for it. When Confirmed is false the artifact was not found on disk and
// the directive names the library by convention.
type LinkDirective struct {
	SearchPath string `json:"search_path,omitempty"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Path       string `json:"path,omitempty"`
	Confirmed  bool   `json:"confirmed"`
}

func (l LinkDirective) String() string {
	return l.Kind + "=" + l.Name
}

// Shim is the static library built from the optional shim source.
type Shim struct {
	Dir     string `json:"dir"`
	Name    string `json:"name"`
	Archive string `json:"archive"`
}

type Metadata struct {
	OS             string        `json:"os"`
	Arch           string        `json:"arch"`
	Profile        string        `json:"profile"`
	RerunIfChanged []string      `json:"rerun_if_changed"`
	IncludeDirs    []string      `json:"include_dirs,omitempty"`
	LinkSearch     []string      `json:"link_search,omitempty"`
	Link           LinkDirective `json:"link"`
	Shim           *Shim         `json:"shim,omitempty"`
	Bindings       string        `json:"bindings,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		if item != "" && !slices.Contains(list, item) {
			list = append(list, item)
		}
	}
	return list
}

func (m *Metadata) AddRerun(paths ...string) {
	m.RerunIfChanged = appendUnique(m.RerunIfChanged, paths...)
}

func (m *Metadata) AddLinkSearch(dirs ...string) {
	m.LinkSearch = appendUnique(m.LinkSearch, dirs...)
}

func (m *Metadata) AddInclude(dirs ...string) {
	m.IncludeDirs = appendUnique(m.IncludeDirs, dirs...)
}

func (m *Metadata) Warn(format string, a ...any) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, a...))
}

// WriteLines renders m as `apmbuild:key=value` lines, one directive per line,
// for hosts that scrape build output.
func (m *Metadata) WriteLines(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range m.RerunIfChanged {
		fmt.Fprintf(bw, "apmbuild:rerun-if-changed=%s\n", p)
	}
	for _, dir := range m.IncludeDirs {
		fmt.Fprintf(bw, "apmbuild:include=%s\n", dir)
	}
	for _, dir := range m.LinkSearch {
		fmt.Fprintf(bw, "apmbuild:link-search=native=%s\n", dir)
	}
	if m.Shim != nil {
		fmt.Fprintf(bw, "apmbuild:link-lib=%s=%s\n", LinkStatic, m.Shim.Name)
	}
	fmt.Fprintf(bw, "apmbuild:link-lib=%s\n", m.Link)
	if m.Bindings != "" {
		fmt.Fprintf(bw, "apmbuild:bindings=%s\n", m.Bindings)
	}
	for _, warning := range m.Warnings {
		fmt.Fprintf(bw, "apmbuild:warning=%s\n", warning)
	}
	return bw.Flush()
}

// Save writes m as indented JSON to path.
func (m *Metadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Load reads a manifest written by Save.
func Load(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Metadata
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}
