package toolchain

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// inflate extracts a tar archive into dir. Compression is detected from the
// archive name.
func inflate(name string, r io.Reader, dir string) error {
	var cr io.Reader
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return errors.WithStack(err)
		}
		defer gr.Close()
		cr = gr
	case strings.HasSuffix(name, ".tar.xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return errors.WithStack(err)
		}
		cr = xr
	default:
		return errors.Errorf("unsupported archive format: %q", name)
	}

	tr := tar.NewReader(cr)
loop:
	for {
		hdr, err := tr.Next()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			break loop
		default:
			return errors.WithStack(err)
		}

		path, err := sanitizePath(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o700); err != nil {
				return errors.WithStack(err)
			}
		case tar.TypeReg:
			if err := storeFile(path, os.FileMode(hdr.Mode), tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return errors.WithStack(err)
			}
			if err := os.Symlink(hdr.Linkname, path); err != nil && !os.IsExist(err) {
				return errors.WithStack(err)
			}
		default:
			// Hard links, devices and the like don't appear in toolchain
			// archives, skip them instead of failing the extraction.
		}
	}

	return nil
}

func storeFile(path string, mode os.FileMode, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.WithStack(err)
	}

	f, err := os.OpenFile(path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, mode.Perm())
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	_, err = io.Copy(f, r)
	return errors.WithStack(err)
}

func sanitizePath(dir, name string) (string, error) {
	path := filepath.Join(dir, filepath.Clean(name))
	if path != dir && !strings.HasPrefix(path, dir+string(os.PathSeparator)) {
		return "", errors.Errorf("archive entry %q escapes extraction dir", name)
	}
	return path, nil
}
