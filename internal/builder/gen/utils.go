package gen

import (
	"strings"
)

// Programs are the executables the backends run, resolved once.
type Programs struct {
	Meson          string
	Ninja          string
	CMake          string
	Make           string
	CMakeGenerator string // empty selects Ninja
}

// ProgramsFromEnv honours MESON, NINJA, CMAKE, MAKE and CMAKE_GENERATOR.
func ProgramsFromEnv(getenv func(string) string) Programs {
	return Programs{
		Meson:          orDefault(getenv("MESON"), "meson"),
		Ninja:          orDefault(getenv("NINJA"), "ninja"),
		CMake:          orDefault(getenv("CMAKE"), "cmake"),
		Make:           orDefault(getenv("MAKE"), "make"),
		CMakeGenerator: getenv("CMAKE_GENERATOR"),
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// stdNumber strips the dialect prefix from a language standard: "c++17" and
// "gnu++17" both become "17".
func stdNumber(std string) string {
	if i := strings.LastIndex(std, "++"); i >= 0 {
		return std[i+2:]
	}
	return std
}
