//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build compiles the apmbuild binary into ./bin.
func Build() error {
	mg.Deps(Generate)
	return sh.RunV("go", "build", "-o", binPath(), ".")
}

// Generate runs go generate over the module.
func Generate() error {
	return sh.RunV("go", "generate", "./...")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Lint vets the module.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check lints and tests.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes ./bin.
func Clean() error {
	return sh.Rm("bin")
}

func binPath() string {
	name := "bin/apmbuild"
	if os.Getenv("GOOS") == "windows" || (os.Getenv("GOOS") == "" && os.PathSeparator == '\\') {
		name += ".exe"
	}
	return name
}
