package anykernel

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Files the flashable archive must not carry: version-control metadata and
// repository documentation.
var excludedNames = map[string]struct{}{
	".gitignore": {},
	"README.md":  {},
}

func compress(dir, archivePath string) (retErr error) {
	f, err := os.OpenFile(archivePath, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	defer func() {
		if retErr != nil {
			_ = os.Remove(archivePath)
		}
	}()

	w := zip.NewWriter(f)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WithStack(err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.WithStack(err)
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if _, excluded := excludedNames[rel]; excluded {
			return nil
		}

		return addToArchive(w, path, filepath.ToSlash(rel), d)
	})
	if err != nil {
		return err
	}

	return errors.WithStack(w.Close())
}

func addToArchive(w *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return errors.WithStack(err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return errors.WithStack(err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	entry, err := w.CreateHeader(hdr)
	if err != nil {
		return errors.WithStack(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	_, err = io.Copy(entry, f)
	return errors.WithStack(err)
}
