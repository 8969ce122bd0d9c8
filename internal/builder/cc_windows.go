package builder

import (
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/heaths/go-vssetup"
)

var msvcHostArch = map[string]string{
	"amd64": "x64",
	"386":   "x86",
	"arm64": "arm64",
}

// findVisualStudioCompiler looks through the Visual Studio instances known to
// the setup configuration API for a cl.exe that targets the host.
func findVisualStudioCompiler() string {
	instances, err := vssetup.Instances(false)
	if err != nil {
		return ""
	}

	arch := msvcHostArch[runtime.GOARCH]
	if arch == "" {
		return ""
	}

	for _, instance := range instances {
		root, err := instance.InstallationPath()
		if err != nil || root == "" {
			continue
		}
		pattern := filepath.ToSlash(filepath.Join(root, "VC", "Tools", "MSVC", "*", "bin", "Host"+arch, arch, "cl.exe"))
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		// toolset directories are versioned, the newest sorts last
		slices.Sort(matches)
		return matches[len(matches)-1]
	}
	return ""
}
