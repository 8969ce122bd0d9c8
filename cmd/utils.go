package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/qobs-build/apmbuild/internal/builder"
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/spf13/cobra"
)

// EnumValue is a flag restricted to a fixed set of values. An empty default
// means "not set", letting apmbuild.toml decide.
type EnumValue struct {
	value      string
	allowed    map[string]string // value -> help text
	defaultVal string
}

func NewEnumValue(defaultVal string, allowed map[string]string) EnumValue {
	if _, ok := allowed[defaultVal]; defaultVal != "" && !ok {
		panic(fmt.Sprintf("default value %q not in allowed set", defaultVal))
	}
	return EnumValue{
		value:      defaultVal,
		allowed:    allowed,
		defaultVal: defaultVal,
	}
}

func (e *EnumValue) String() string     { return e.value }
func (e *EnumValue) HelpString() string { return "[" + strings.Join(e.AllowedKeys(), ", ") + "]" }
func (e *EnumValue) Type() string       { return "enum" }
func (e *EnumValue) Value() string      { return e.value }

func (e *EnumValue) Set(v string) error {
	if _, ok := e.allowed[v]; ok {
		e.value = v
		return nil
	}
	return fmt.Errorf("must be one of: %s", strings.Join(e.AllowedKeys(), ", "))
}

func (e *EnumValue) AllowedKeys() []string {
	return slices.Sorted(maps.Keys(e.allowed))
}

func (e *EnumValue) CompletionFunc() func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		items := make([]string, 0, len(e.allowed))
		for _, k := range e.AllowedKeys() {
			if help := e.allowed[k]; help != "" {
				items = append(items, fmt.Sprintf("%s\t%s", k, help))
			} else {
				items = append(items, k)
			}
		}
		return items, cobra.ShellCompDirectiveNoFileComp
	}
}

// targetPath is the manifest root named on the command line, "." by default.
func targetPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func mustBuilder(args []string) *builder.Builder {
	b, err := builder.NewBuilderInDirectory(targetPath(args), builder.Options{
		Profile: flagProfile,
		OutDir:  flagOut,
		System:  flagSystem.Value(),
	})
	if err != nil {
		msg.Fatal("%v", err)
	}
	return b
}
