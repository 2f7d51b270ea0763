package toolchain

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/libexec"
	"github.com/outofforest/logger"
)

// Ensure makes the toolchain available locally, downloading and extracting
// the archive when the compiler is missing. Nothing is fetched if the
// compiler is already in place.
func Ensure(ctx context.Context, config Config) (retErr error) {
	log := logger.Get(ctx)

	if _, err := os.Stat(config.BinaryPath()); err == nil {
		log.Info("Toolchain already present", zap.String("dir", config.Dir))
		return nil
	}

	log.Info("Downloading toolchain", zap.String("url", config.URL))

	dirTmp := config.Dir + ".tmp"
	if err := os.RemoveAll(dirTmp); err != nil {
		return errors.WithStack(err)
	}
	if err := os.MkdirAll(dirTmp, 0o700); err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if retErr != nil {
			_ = os.RemoveAll(dirTmp)
		}
	}()

	reader, err := streamFromURL(ctx, config.URL)
	if err != nil {
		return errors.Wrapf(err, "downloading toolchain %q failed", config.URL)
	}
	defer reader.Close()

	if err := inflate(config.URL, reader, dirTmp); err != nil {
		return errors.Wrapf(err, "extracting toolchain %q failed", config.URL)
	}

	// A previous partial extraction may have left a tree without the binary.
	if err := os.RemoveAll(config.Dir); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.Rename(dirTmp, config.Dir))
}

// Verify checks that the compiler is present and logs the first line of its
// self-reported version.
func Verify(ctx context.Context, config Config) error {
	if _, err := os.Stat(config.BinaryPath()); err != nil {
		return errors.Wrapf(err, "compiler %q not found after provisioning", config.BinaryPath())
	}

	buf := &bytes.Buffer{}
	cmd := exec.Command(config.BinaryPath(), "--version")
	cmd.Stdout = buf
	if err := libexec.Exec(ctx, cmd); err != nil {
		return errors.Wrapf(err, "running %q failed", config.Binary)
	}

	version, _, _ := strings.Cut(strings.TrimSpace(buf.String()), "\n")
	logger.Get(ctx).Info("Toolchain ready", zap.String("version", version))

	return nil
}

func streamFromURL(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Errorf("unexpected status code %d, url: %q", resp.StatusCode, url)
	}

	return resp.Body, nil
}
