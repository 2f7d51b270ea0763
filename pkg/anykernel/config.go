package anykernel

// Config stores packaging configuration.
type Config struct {
	// Dir is the local checkout of the packaging template.
	Dir string

	// RepoURL and Branch define the template cloned when Dir is missing.
	RepoURL string
	Branch  string

	// ImageName is the name the kernel image gets inside the template.
	ImageName string

	// OutputDir is where the flashable archive is written.
	OutputDir string
}

// DefaultConfig returns the default packaging configuration.
func DefaultConfig() Config {
	return Config{
		Dir:       "AnyKernel3",
		RepoURL:   "https://github.com/osm0sis/AnyKernel3.git",
		Branch:    "master",
		ImageName: "Image",
		OutputDir: ".",
	}
}
