package gkibuild

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/outofforest/gkibuild/pkg/anykernel"
	"github.com/outofforest/gkibuild/pkg/kernel"
	"github.com/outofforest/gkibuild/pkg/notify"
	"github.com/outofforest/gkibuild/pkg/toolchain"
	"github.com/outofforest/logger"
	"github.com/outofforest/run"
)

// Main is the entrypoint of the build pipeline.
func Main(configurators ...Configurator) {
	run.New().Run(context.Background(), "gkibuild", func(ctx context.Context) error {
		err := Build(ctx, NewConfig(configurators...))
		if err != nil {
			logger.Get(ctx).Error("Build failed", zap.Error(err))
		}
		return err
	})
}

// Build runs the pipeline: toolchain provisioning, kernel build, flashable
// archive packaging and notification. First failure aborts the chain,
// notification failures excepted.
func Build(ctx context.Context, config Config) error {
	log := logger.Get(ctx)
	start := time.Now()

	if err := toolchain.Ensure(ctx, config.Toolchain); err != nil {
		return err
	}
	if err := toolchain.Verify(ctx, config.Toolchain); err != nil {
		return err
	}
	if err := kernel.Build(ctx, config.Kernel); err != nil {
		return err
	}
	archivePath, kernelVersion, err := anykernel.Package(ctx, config.AnyKernel, config.Kernel.ImagePath())
	if err != nil {
		return err
	}

	notify.Send(ctx, config.Notify, notify.Report{
		Title:         config.Title,
		KernelVersion: kernelVersion,
		ArchivePath:   archivePath,
	})

	log.Info("Pipeline finished",
		zap.String("archive", archivePath),
		zap.Duration("elapsed", time.Since(start).Round(time.Second)))

	return nil
}
