package gkibuild

import (
	"github.com/outofforest/gkibuild/pkg/anykernel"
	"github.com/outofforest/gkibuild/pkg/kernel"
	"github.com/outofforest/gkibuild/pkg/notify"
	"github.com/outofforest/gkibuild/pkg/toolchain"
)

// Config is the configuration of the build pipeline.
type Config struct {
	// Title identifies the build in notifications.
	Title string

	Toolchain toolchain.Config
	Kernel    kernel.Config
	AnyKernel anykernel.Config
	Notify    notify.Config
}

// Configurator defines function modifying the pipeline configuration.
type Configurator func(c *Config)

// NewConfig builds the pipeline configuration from defaults, environment and
// configurators.
func NewConfig(configurators ...Configurator) Config {
	config := Config{
		Title:     "GKI kernel build",
		Toolchain: toolchain.DefaultConfig(),
		Kernel:    kernel.DefaultConfig(),
		AnyKernel: anykernel.DefaultConfig(),
		Notify:    notify.ConfigFromEnv(),
	}

	for _, configurator := range configurators {
		configurator(&config)
	}

	// Compiler binaries must win over whatever the host has on PATH.
	if config.Kernel.ToolchainBinDir == "" {
		config.Kernel.ToolchainBinDir = config.Toolchain.BinDir()
	}

	return config
}

// Title sets the build title used in notifications.
func Title(title string) Configurator {
	return func(c *Config) {
		c.Title = title
	}
}

// Toolchain sets the toolchain directory and the archive fetched when it is
// missing.
func Toolchain(dir, url string) Configurator {
	return func(c *Config) {
		c.Toolchain.Dir = dir
		c.Toolchain.URL = url
	}
}

// KernelSource sets the directory containing the kernel tree.
func KernelSource(dir string) Configurator {
	return func(c *Config) {
		c.Kernel.SourceDir = dir
	}
}

// Defconfig sets the build configuration target generated in the first phase.
func Defconfig(name string) Configurator {
	return func(c *Config) {
		c.Kernel.Defconfig = name
	}
}

// Arch sets the target architecture.
func Arch(arch string) Configurator {
	return func(c *Config) {
		c.Kernel.Arch = arch
	}
}

// AnyKernelRepo sets the packaging template repository and branch cloned when
// the template is missing locally.
func AnyKernelRepo(repoURL, branch string) Configurator {
	return func(c *Config) {
		c.AnyKernel.RepoURL = repoURL
		c.AnyKernel.Branch = branch
	}
}

// EmailNotification enables the email notification channel.
func EmailNotification(host string, port int, from, to string) Configurator {
	return func(c *Config) {
		c.Notify.Email.Host = host
		c.Notify.Email.Port = port
		c.Notify.Email.From = from
		c.Notify.Email.To = to
	}
}

// EmailAuth sets SMTP credentials for the email notification channel.
func EmailAuth(username, password string) Configurator {
	return func(c *Config) {
		c.Notify.Email.Username = username
		c.Notify.Email.Password = password
	}
}
