package anykernel

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

var versionMarker = []byte("Linux version ")

const scanChunkSize = 1 << 20

// ScanVersion extracts the kernel version line embedded in the image binary.
// The image is scanned as a byte stream, so size doesn't matter. Empty string
// is returned when the marker is not present.
func ScanVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	buf := make([]byte, 0, scanChunkSize+len(versionMarker))
	chunk := make([]byte, scanChunkSize)
	for {
		n, err := f.Read(chunk)
		buf = append(buf, chunk[:n]...)

		if i := bytes.Index(buf, versionMarker); i >= 0 {
			return readLine(f, buf[i:])
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return "", nil
		default:
			return "", errors.WithStack(err)
		}

		// Keep the tail in case the marker straddles a chunk boundary.
		if len(buf) > len(versionMarker) {
			buf = append(buf[:0], buf[len(buf)-len(versionMarker)+1:]...)
		}
	}
}

// readLine completes the version line, pulling more bytes from the image when
// the terminator hasn't been buffered yet.
func readLine(r io.Reader, buf []byte) (string, error) {
	line := append([]byte{}, buf...)
	chunk := make([]byte, 512)
	for {
		if i := bytes.IndexAny(line, "\n\x00"); i >= 0 {
			return string(bytes.TrimRight(line[:i], "\r")), nil
		}

		n, err := r.Read(chunk)
		line = append(line, chunk[:n]...)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return string(bytes.TrimRight(line, "\r")), nil
		default:
			return "", errors.WithStack(err)
		}
	}
}
