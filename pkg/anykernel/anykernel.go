package anykernel

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/libexec"
	"github.com/outofforest/logger"
)

// Package merges the kernel image into the packaging template and compresses
// the template into a flashable archive named with the current timestamp.
// It returns the archive path and the kernel version line found in the image.
func Package(ctx context.Context, config Config, imagePath string) (string, string, error) {
	log := logger.Get(ctx)

	if _, err := os.Stat(imagePath); err != nil {
		return "", "", errors.Wrapf(err, "kernel image %q not found", imagePath)
	}

	version, err := ScanVersion(imagePath)
	if err != nil {
		return "", "", err
	}
	if version == "" {
		log.Warn("Kernel version marker not found in image", zap.String("image", imagePath))
	} else {
		log.Info("Kernel image ready", zap.String("version", version))
	}

	if err := ensureTemplate(ctx, config); err != nil {
		return "", "", err
	}

	templateImage := filepath.Join(config.Dir, config.ImageName)
	if err := os.Remove(templateImage); err != nil && !os.IsNotExist(err) {
		return "", "", errors.WithStack(err)
	}
	if err := copyFile(templateImage, imagePath); err != nil {
		return "", "", err
	}

	archivePath := filepath.Join(config.OutputDir,
		"gki-"+time.Now().Format("20060102-1504")+".zip")
	log.Info("Creating flashable archive", zap.String("archive", archivePath))

	if err := compress(config.Dir, archivePath); err != nil {
		return "", "", errors.Wrapf(err, "creating archive %q failed", archivePath)
	}
	if _, err := os.Stat(archivePath); err != nil {
		return "", "", errors.Wrapf(err, "archive %q not produced", archivePath)
	}

	return archivePath, version, nil
}

func ensureTemplate(ctx context.Context, config Config) error {
	if _, err := os.Stat(config.Dir); err == nil {
		return nil
	}

	logger.Get(ctx).Info("Cloning packaging template",
		zap.String("repo", config.RepoURL), zap.String("branch", config.Branch))

	cmd := exec.Command("git", "clone", "--depth", "1",
		"--branch", config.Branch, config.RepoURL, config.Dir)
	if err := libexec.Exec(ctx, cmd); err != nil {
		return errors.Wrapf(err, "cloning packaging template %q failed", config.RepoURL)
	}

	return nil
}

func copyFile(dstPath, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return errors.WithStack(err)
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return errors.WithStack(err)
}
