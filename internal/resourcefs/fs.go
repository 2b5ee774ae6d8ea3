// Package resourcefs opens the filesystem application resources are read from and
// platform markers are written to.
package resourcefs

import (
	"io"
	"path"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/common"
	"github.com/pkg/errors"
)

const defaultName = "palmshim-resources"

type Options struct {
	// Name selects the IndexedDB database in the browser.
	Name              string
	RelaxedDurability bool
}

func (o Options) name() string {
	if o.Name == "" {
		return defaultName
	}
	return o.Name
}

// Touch creates the file at p and its parent directories if they do not exist.
// Existing contents are kept.
func Touch(fs hackpadfs.FS, p string) error {
	return writeFile(fs, p, nil, hackpadfs.FlagWriteOnly|hackpadfs.FlagCreate)
}

// WriteFile replaces the contents of p, creating parents as needed.
func WriteFile(fs hackpadfs.FS, p string, data []byte) error {
	return writeFile(fs, p, data, hackpadfs.FlagWriteOnly|hackpadfs.FlagCreate|hackpadfs.FlagTruncate)
}

func writeFile(fs hackpadfs.FS, p string, data []byte, flag int) error {
	p = common.ResolvePath("/", p)
	if dir := path.Dir(p); dir != "." {
		if err := hackpadfs.MkdirAll(fs, dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	f, err := hackpadfs.OpenFile(fs, p, flag, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", p)
	}
	defer f.Close()
	if len(data) == 0 {
		return nil
	}
	w, ok := f.(io.Writer)
	if !ok {
		return errors.Errorf("write %s: file is not writable", p)
	}
	_, err = w.Write(data)
	return errors.Wrapf(err, "write %s", p)
}

// Exists reports whether p can be stat'ed.
func Exists(fs hackpadfs.FS, p string) bool {
	_, err := hackpadfs.Stat(fs, common.ResolvePath("/", p))
	return err == nil
}
