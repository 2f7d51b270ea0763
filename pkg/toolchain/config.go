package toolchain

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
)

//nolint:lll
const defaultURL = "https://android.googlesource.com/platform/prebuilts/clang/host/linux-x86/+archive/refs/heads/main/clang-r487747c.tar.gz"

// Config stores toolchain configuration.
type Config struct {
	// Dir is the directory the toolchain is extracted into.
	Dir string

	// URL is the archive fetched when the toolchain is missing. Both .tar.gz
	// and .tar.xz archives are understood.
	URL string

	// Binary is the compiler executable expected under Dir/bin.
	Binary string
}

// DefaultConfig returns the default toolchain configuration.
func DefaultConfig() Config {
	return Config{
		Dir:    filepath.Join(lo.Must(os.UserCacheDir()), "gkibuild", "toolchains", "clang"),
		URL:    defaultURL,
		Binary: "clang",
	}
}

// BinDir returns the directory containing toolchain executables.
func (c Config) BinDir() string {
	return filepath.Join(c.Dir, "bin")
}

// BinaryPath returns the full path of the compiler executable.
func (c Config) BinaryPath() string {
	return filepath.Join(c.BinDir(), c.Binary)
}
