//go:build !windows

package builder

func findVisualStudioCompiler() string { return "" }
