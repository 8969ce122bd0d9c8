package builder

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	commonCxxCompilers = []string{"clang++", "g++", "c++", "icpx", "cl"}
	commonArchivers    = []string{"ar", "llvm-ar", "lib"}
)

// compiler is a C++ compiler plus the archiver used to bundle its objects.
type compiler struct {
	cxx string
	ar  string
}

// msvc reports whether the compiler speaks cl.exe style flags.
func (c compiler) msvc() bool {
	base := strings.ToLower(filepath.Base(c.cxx))
	base = strings.TrimSuffix(base, ".exe")
	return base == "cl" || base == "clang-cl"
}

// findCompiler attempts to find a suitable C++ compiler on the system. CXX
// and AR win over PATH lookup; on Windows a Visual Studio installation is
// the last resort. It runs once per Builder.
func findCompiler(getenv Getenv) compiler {
	var c compiler
	c.cxx = getenv("CXX")
	if c.cxx == "" {
		for _, candidate := range commonCxxCompilers {
			if path, err := exec.LookPath(candidate); err == nil {
				c.cxx = path
				break
			}
		}
	}
	if c.cxx == "" {
		c.cxx = findVisualStudioCompiler()
	}

	c.ar = getenv("AR")
	if c.ar == "" && c.msvc() {
		c.ar = filepath.Join(filepath.Dir(c.cxx), "lib.exe")
		if _, err := os.Stat(c.ar); err != nil {
			c.ar = "lib"
		}
	}
	if c.ar == "" {
		c.ar = "ar"
		for _, candidate := range commonArchivers {
			if path, err := exec.LookPath(candidate); err == nil {
				c.ar = path
				break
			}
		}
	}
	return c
}
