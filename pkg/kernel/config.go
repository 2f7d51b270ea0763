package kernel

import (
	"path/filepath"
	"runtime"
)

// Config stores kernel build configuration.
type Config struct {
	// SourceDir is the root of the kernel tree.
	SourceDir string

	// OutDir is the build output directory, relative to SourceDir.
	OutDir string

	// Arch is the target architecture.
	Arch string

	// Defconfig is the configuration target generated in the first phase.
	Defconfig string

	// Jobs is the compilation parallelism.
	Jobs int

	// LogPath is the file combined build output is written to. It is
	// truncated at the start of each run.
	LogPath string

	// Make is the build tool executable.
	Make string

	// ToolchainBinDir is prepended to PATH of the build tool.
	ToolchainBinDir string
}

// DefaultConfig returns the default kernel build configuration.
func DefaultConfig() Config {
	return Config{
		SourceDir: ".",
		OutDir:    "out",
		Arch:      "arm64",
		Defconfig: "gki_defconfig",
		Jobs:      runtime.NumCPU(),
		LogPath:   "build.log",
		Make:      "make",
	}
}

// ImagePath returns the path the build tool leaves the kernel image at.
func (c Config) ImagePath() string {
	return filepath.Join(c.SourceDir, c.OutDir, "arch", c.Arch, "boot", "Image")
}
