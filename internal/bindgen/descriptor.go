// Package bindgen reads the C header that declares the shim's interface and
// writes a language-neutral descriptor of its functions, types and constants.
package bindgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var descriptorNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("apmbuild/bindgen"))

func descriptorID(src []byte) string {
	return uuid.NewSHA1(descriptorNamespace, src).String()
}

// ErrNoDeclarations is returned when a header yields nothing to bind.
var ErrNoDeclarations = errors.New("header declares no functions, types or constants")

type Param struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

type Function struct {
	Name     string  `json:"name" yaml:"name"`
	Returns  string  `json:"returns" yaml:"returns"`
	Params   []Param `json:"params" yaml:"params"`
	Variadic bool    `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Inline   bool    `json:"inline,omitempty" yaml:"inline,omitempty"`
	Doc      string  `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type Field struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Bits string `json:"bits,omitempty" yaml:"bits,omitempty"`
}

type Enumerator struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

const (
	KindStruct   = "struct"
	KindUnion    = "union"
	KindEnum     = "enum"
	KindOpaque   = "opaque"
	KindAlias    = "alias"
	KindCallback = "callback"
)

type Type struct {
	Name        string       `json:"name" yaml:"name"`
	Kind        string       `json:"kind" yaml:"kind"`
	Tag         string       `json:"tag,omitempty" yaml:"tag,omitempty"`
	Underlying  string       `json:"underlying,omitempty" yaml:"underlying,omitempty"`
	Fields      []Field      `json:"fields,omitempty" yaml:"fields,omitempty"`
	Enumerators []Enumerator `json:"enumerators,omitempty" yaml:"enumerators,omitempty"`
	Doc         string       `json:"doc,omitempty" yaml:"doc,omitempty"`
}

const (
	ConstInt    = "int"
	ConstFloat  = "float"
	ConstString = "string"
	ConstChar   = "char"
	ConstExpr   = "expr"
)

type Constant struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
	Doc   string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type Variable struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Doc  string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Descriptor is everything a foreign-language binding needs from a header.
// ID is derived from the header contents, so an unchanged header always
// yields the same ID.
type Descriptor struct {
	ID        string     `json:"id" yaml:"id"`
	Header    string     `json:"header" yaml:"header"`
	Functions []Function `json:"functions" yaml:"functions"`
	Types     []Type     `json:"types" yaml:"types"`
	Constants []Constant `json:"constants" yaml:"constants"`
	Variables []Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
}

func (d *Descriptor) Empty() bool {
	return len(d.Functions) == 0 && len(d.Types) == 0 && len(d.Constants) == 0 && len(d.Variables) == 0
}

func keep[T any](items []T, name func(T) string, allowed func(string) bool) []T {
	out := items[:0]
	for _, item := range items {
		if allowed(name(item)) {
			out = append(out, item)
		}
	}
	return out
}

// Filter drops every declaration whose name matches none of the patterns.
// An empty pattern list keeps everything.
func (d *Descriptor) Filter(patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return fmt.Errorf("invalid allow pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	allowed := func(name string) bool {
		for _, re := range res {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}

	d.Functions = keep(d.Functions, func(f Function) string { return f.Name }, allowed)
	d.Types = keep(d.Types, func(t Type) string { return t.Name }, allowed)
	d.Constants = keep(d.Constants, func(c Constant) string { return c.Name }, allowed)
	d.Variables = keep(d.Variables, func(v Variable) string { return v.Name }, allowed)
	return nil
}

// FormatFor picks the descriptor encoding from the output file extension.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func (d *Descriptor) Encode(w io.Writer, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return fmt.Errorf("unknown descriptor format %q", format)
	}
}

// WriteFile writes d to path through a temporary file in the same
// directory, so readers never observe a partially written descriptor.
func WriteFile(path string, d *Descriptor) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = d.Encode(tmp, FormatFor(path)); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Generate parses header, applies the allow list and writes the descriptor
// to out. Nothing is written when the header yields no declarations.
func Generate(header, out string, allow []string) (*Descriptor, error) {
	src, err := os.ReadFile(header)
	if err != nil {
		return nil, err
	}
	d, err := Parse(filepath.Base(header), src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", header, err)
	}
	if err := d.Filter(allow); err != nil {
		return nil, err
	}
	if d.Empty() {
		return nil, ErrNoDeclarations
	}
	if err := WriteFile(out, d); err != nil {
		return nil, err
	}
	return d, nil
}
