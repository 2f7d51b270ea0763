package notify

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// sendTelegram uploads the archive with its caption to a Telegram chat using
// the bot API. The archive is streamed, never buffered whole.
func sendTelegram(ctx context.Context, config TelegramConfig, report Report) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeDocument(mw, config.ChatID, report))
	}()

	url := config.APIBaseURL + "/bot" + config.Token + "/sendDocument"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}

	return nil
}

func writeDocument(mw *multipart.Writer, chatID string, report Report) error {
	if err := mw.WriteField("chat_id", chatID); err != nil {
		return errors.WithStack(err)
	}
	if err := mw.WriteField("caption", caption(report)); err != nil {
		return errors.WithStack(err)
	}

	part, err := mw.CreateFormFile("document", filepath.Base(report.ArchivePath))
	if err != nil {
		return errors.WithStack(err)
	}

	f, err := os.Open(report.ArchivePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	if _, err := io.Copy(part, f); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(mw.Close())
}
