package kernel

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/libexec"
	"github.com/outofforest/logger"
)

// Build runs the two-phase kernel build: configuration generation followed by
// image compilation. Combined output of both phases goes to the build log and
// the logger. The build tool's real exit status decides the result of each
// phase.
func Build(ctx context.Context, config Config) error {
	log := logger.Get(ctx)

	logF, err := os.OpenFile(config.LogPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.WithStack(err)
	}
	defer logF.Close()

	start := time.Now()

	log.Info("Generating kernel configuration", zap.String("defconfig", config.Defconfig))
	if err := runMake(ctx, config, logF, config.Defconfig); err != nil {
		return errors.Wrap(err, "generating kernel configuration failed")
	}

	log.Info("Compiling kernel", zap.Int("jobs", config.Jobs))
	if err := runMake(ctx, config, logF, "-j"+strconv.Itoa(config.Jobs)); err != nil {
		return errors.Wrap(err, "kernel compilation failed")
	}

	log.Info("Kernel built", zap.String("elapsed", formatDuration(time.Since(start))))

	return nil
}

func runMake(ctx context.Context, config Config, logW io.Writer, target string) error {
	streamLog := newStreamLogger(logger.Get(ctx))
	defer streamLog.Flush()

	out := io.MultiWriter(logW, streamLog)

	cmd := exec.Command(config.Make, "O="+config.OutDir, "ARCH="+config.Arch, "LLVM=1", target)
	cmd.Dir = config.SourceDir
	cmd.Stdout = out
	cmd.Stderr = out
	if config.ToolchainBinDir != "" {
		cmd.Env = append(os.Environ(),
			"PATH="+config.ToolchainBinDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}

	return libexec.Exec(ctx, cmd)
}

// formatDuration renders duration as minutes and seconds, e.g. "2m 5s".
func formatDuration(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
