package utils

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// RemoveFileNoError will remove the file at the given path if it exists. Any
// errors will be suppressed.
func RemoveFileNoError(path string) {
	utils.UncheckedErrorFunc(func() error {
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	})
}

// WriteFileAtomic writes data to path, creating any missing parent directories. The data is
// written to a sibling temp file and renamed into place so readers never see a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrapf(err, "cannot create directory %q", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "cannot create temp file in %q", dir)
	}
	tmpName := tmp.Name()
	defer RemoveFileNoError(tmpName)

	if _, err := tmp.Write(data); err != nil {
		utils.UncheckedError(tmp.Close())
		return errors.Wrapf(err, "cannot write %q", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return errors.Wrapf(os.Rename(tmpName, path), "cannot move file into place at %q", path)
}
