package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFilename is looked up in the manifest root. It is optional.
const ConfigFilename = "apmbuild.toml"

const (
	defaultSourceDir = "webrtc-src"
	defaultRemote    = "https://github.com/cross-platform/webrtc-audio-processing.git"
	defaultLibrary   = "webrtc_audio_processing"
)

var defaultProfiles = map[string]ProfileSection{
	"debug": {
		BuildType: "debug",
	},
	"release": {
		BuildType: "release",
		Defines:   map[string]string{"NDEBUG": ""},
	},
}

type Config struct {
	Source   SourceSection             `toml:"source"`
	Native   NativeSection             `toml:"native"`
	Shim     ShimSection               `toml:"shim"`
	Bindings BindingsSection           `toml:"bindings"`
	Cgo      CgoSection                `toml:"cgo"`
	Profile  map[string]ProfileSection `toml:"profile"`
	// Watch holds extra doublestar patterns, relative to the manifest root,
	// whose matches invalidate the host's cached build.
	Watch []string `toml:"watch"`
}

// SourceSection defines the [source] section
type SourceSection struct {
	Dir     string `toml:"dir"`
	Remote  string `toml:"remote"`
	Prepare string `toml:"prepare"` // expr script run before configure, must return true
}

// NativeSection defines the [native] section
type NativeSection struct {
	System        string            `toml:"system"`
	Generator     string            `toml:"generator"`
	CxxStd        string            `toml:"cxx_std"`
	Args          []string          `toml:"args"`
	Env           map[string]string `toml:"env"`
	Libraries     []string          `toml:"libraries"`
	LibDirs       []string          `toml:"lib_dirs"`
	IncludeSubdir string            `toml:"include_subdir"`
}

// ShimSection defines the [shim] section
type ShimSection struct {
	Source  string            `toml:"source"`
	Header  string            `toml:"header"`
	Name    string            `toml:"name"`
	Defines map[string]string `toml:"defines"`
	Cflags  []string          `toml:"cflags"`
}

// BindingsSection defines the [bindings] section
type BindingsSection struct {
	Header string   `toml:"header"`
	Output string   `toml:"output"`
	Allow  []string `toml:"allow"`
}

// CgoSection defines the [cgo] section. An empty Dir disables the cgo file.
type CgoSection struct {
	Dir     string `toml:"dir"`
	Package string `toml:"package"`
}

// ProfileSection defines the [profile.*] section
type ProfileSection struct {
	BuildType string            `toml:"buildtype"`
	Defines   map[string]string `toml:"defines"`
}

// DefaultConfig is what a manifest root without apmbuild.toml builds with.
func DefaultConfig() *Config {
	profiles := make(map[string]ProfileSection, len(defaultProfiles))
	for name, p := range defaultProfiles {
		p.Defines = maps.Clone(p.Defines)
		profiles[name] = p
	}

	return &Config{
		Source: SourceSection{
			Dir:    defaultSourceDir,
			Remote: defaultRemote,
		},
		Native: NativeSection{
			System:        "meson",
			CxxStd:        "c++17",
			Libraries:     []string{defaultLibrary},
			LibDirs:       []string{"lib", "lib64"},
			IncludeSubdir: "webrtc-audio-processing-1",
		},
		Shim: ShimSection{
			Source:  "wrapper.cpp",
			Header:  "wrapper.h",
			Name:    "apm_shim",
			Defines: map[string]string{"WEBRTC_APM_DEBUG_DUMP": "0"},
		},
		Bindings: BindingsSection{
			Header: "wrapper.h",
			Output: "bindings.json",
		},
		Cgo: CgoSection{
			Package: "apm",
		},
		Profile: profiles,
	}
}

func (c Config) Profiles() []string {
	return slices.Sorted(maps.Keys(c.Profile))
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// overlay replaces every field of dst that is set in src. Maps are merged
// key by key so a partial table keeps the defaults it does not mention.
func overlay[T any](dst *T, src T) {
	dstElem := reflect.ValueOf(dst).Elem()
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() != reflect.Struct {
		mergeValue(dstElem, srcVal)
		return
	}

	for i := range srcVal.NumField() {
		srcField, dstField := srcVal.Field(i), dstElem.Field(i)
		if !dstField.CanSet() || srcField.IsZero() {
			continue
		}
		if srcField.Kind() == reflect.Map {
			mergeValue(dstField, srcField)
			continue
		}
		dstField.Set(srcField)
	}
}

// mergeInto merges the fields of src into dst. Slices are appended, maps are
// merged key by key, bools are or-ed and any other non-zero field overwrites.
func mergeInto[T any](dst *T, src T) {
	dstElem := reflect.ValueOf(dst).Elem()
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() != reflect.Struct {
		// maps and other non-struct sections
		mergeValue(dstElem, srcVal)
		return
	}

	for i := range srcVal.NumField() {
		if dstElem.Field(i).CanSet() {
			mergeValue(dstElem.Field(i), srcVal.Field(i))
		}
	}
}

func mergeValue(dst, src reflect.Value) {
	switch dst.Kind() {
	case reflect.Slice:
		if !src.IsNil() {
			dst.Set(reflect.AppendSlice(dst, src))
		}
	case reflect.Map:
		if src.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
		for _, key := range src.MapKeys() {
			dst.SetMapIndex(key, src.MapIndex(key))
		}
	case reflect.Bool:
		dst.SetBool(dst.Bool() || src.Bool())
	default:
		if !src.IsZero() {
			dst.Set(src)
		}
	}
}

// unmarshalConditionalSection parses [name] over dst. Plain fields replace the
// defaults; sub-tables whose key is a valid boolean expression are merged on
// top, in key order, when the expression evaluates to true.
func unmarshalConditionalSection[T any](rawCfg map[string]any, name string, dst *T, env ConfigEnv) error {
	sectionData, ok := rawCfg[name]
	if !ok {
		return nil
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid [%s] section format: expected a table", name)
	}

	baseFields := make(map[string]any)
	conditionalFields := make(map[string]map[string]any)

	for key, val := range sectionMap {
		subMap, isTable := val.(map[string]any)
		if isTable && isExpression(key, env) {
			conditionalFields[key] = subMap
			continue
		}
		baseFields[key] = val
	}

	if len(baseFields) > 0 {
		var base T
		if err := toml.Unmarshal([]byte(mustMarshal(baseFields)), &base); err != nil {
			return fmt.Errorf("failed to parse base [%s] section: %w", name, err)
		}
		overlay(dst, base)
	}

	for _, expression := range slices.Sorted(maps.Keys(conditionalFields)) {
		matched, err := evalBool(expression, env)
		if err != nil {
			return fmt.Errorf("[%s.%q]: %w", name, expression, err)
		}
		if !matched {
			continue
		}

		var condSection T
		if err := toml.Unmarshal([]byte(mustMarshal(conditionalFields[expression])), &condSection); err != nil {
			return fmt.Errorf("failed to parse conditional section [%s.%q]: %w", name, expression, err)
		}
		mergeInto(dst, condSection)
	}

	return nil
}

func isExpression(key string, env ConfigEnv) bool {
	_, err := expr.Compile(key, expr.Env(env), expr.AsBool())
	return err == nil
}

func evalBool(expression string, env ConfigEnv) (bool, error) {
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("failed to compile expression: %w", err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("failed to run expression: %w", err)
	}
	matched, _ := result.(bool)
	return matched, nil
}

var exprRegex = regexp.MustCompile(`\{\{(.+?)\}\}`)

// evaluateString replaces every {{...}} expression in s with its value
func evaluateString(s string, env ConfigEnv) (string, error) {
	var firstErr error
	out := exprRegex.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		expression := strings.TrimSpace(match[2 : len(match)-2])
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			firstErr = fmt.Errorf("failed to compile expression %q: %w", expression, err)
			return match
		}
		result, err := expr.Run(program, env)
		if err != nil {
			firstErr = fmt.Errorf("failed to run expression %q: %w", expression, err)
			return match
		}
		return fmt.Sprint(result)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// processExpressions recursively walks the parsed TOML data and evaluates expressions in strings
func processExpressions(data any, env ConfigEnv) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			processedVal, err := processExpressions(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = processedVal
		}
		return v, nil
	case []any:
		for i, item := range v {
			processedItem, err := processExpressions(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = processedItem
		}
		return v, nil
	case string:
		return evaluateString(v, env)
	default:
		return data, nil
	}
}

func parseStringList(rawCfg map[string]any, name string) ([]string, error) {
	raw, ok := rawCfg[name]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid %q: expected an array of strings", name)
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("invalid %q entry %v: expected a string", name, item)
		}
		list = append(list, s)
	}
	return list, nil
}

// ParseConfig parses apmbuild.toml on top of DefaultConfig
func ParseConfig(rdr io.Reader, env ConfigEnv) (*Config, error) {
	var rawConfig map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawConfig); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	processedConfig, err := processExpressions(rawConfig, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in config: %w", err)
	}
	rawConfig = processedConfig.(map[string]any)

	cfg := DefaultConfig()

	if err := unmarshalConditionalSection(rawConfig, "source", &cfg.Source, env); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(rawConfig, "native", &cfg.Native, env); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(rawConfig, "shim", &cfg.Shim, env); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(rawConfig, "bindings", &cfg.Bindings, env); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(rawConfig, "cgo", &cfg.Cgo, env); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(rawConfig, "profile", &cfg.Profile, env); err != nil {
		return nil, err
	}
	if cfg.Watch, err = parseStringList(rawConfig, "watch"); err != nil {
		return nil, err
	}
	// a profile without buildtype builds as the backend type of the same name
	for name, profile := range cfg.Profile {
		if profile.BuildType == "" {
			profile.BuildType = name
			cfg.Profile[name] = profile
		}
	}

	if len(cfg.Native.Libraries) == 0 {
		return nil, errors.New("[native] libraries must name at least one library")
	}

	return cfg, nil
}

// ParseConfigFromFile parses a config file from a filepath. A missing file
// yields DefaultConfig.
func ParseConfigFromFile(path string, env ConfigEnv) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := ParseConfig(bufio.NewReader(f), env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
