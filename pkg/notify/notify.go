package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
)

const safetyReminder = "Flash at your own risk. Keep a backup of your current boot image."

// Report describes a finished build.
type Report struct {
	Title         string
	KernelVersion string
	ArchivePath   string
}

// Send delivers the report through all configured channels. Channels missing
// credentials are skipped, failures are logged. Notification never fails the
// build, so no error is returned.
func Send(ctx context.Context, config Config, report Report) {
	log := logger.Get(ctx)

	//nolint:errcheck // channels report their own errors through the logger
	_ = parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("telegram", parallel.Continue, func(ctx context.Context) error {
			log := logger.Get(ctx)
			if !config.Telegram.Configured() {
				log.Info("Telegram notification skipped, credentials not configured")
				return nil
			}
			if err := sendTelegram(ctx, config.Telegram, report); err != nil {
				log.Error("Telegram notification failed", zap.Error(err))
				return nil
			}
			log.Info("Telegram notification sent")
			return nil
		})
		spawn("email", parallel.Continue, func(ctx context.Context) error {
			log := logger.Get(ctx)
			if !config.Email.Configured() {
				log.Info("Email notification skipped, relay not configured")
				return nil
			}
			if err := sendEmail(ctx, config.Email, report); err != nil {
				log.Error("Email notification failed", zap.Error(err))
				return nil
			}
			log.Info("Email notification sent")
			return nil
		})
		return nil
	})

	log.Info("Notification finished")
}

func caption(report Report) string {
	version := report.KernelVersion
	if version == "" {
		version = "unknown kernel version"
	}
	return fmt.Sprintf("%s\n%s\n\n%s", report.Title, version, safetyReminder)
}
