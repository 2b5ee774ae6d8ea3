package resourcefs

import (
	"context"
	gofs "io/fs"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/pkg/errors"
)

// Copy writes every regular file of src into dst under the same path and returns the
// number of files copied. Directories are created as needed.
func Copy(ctx context.Context, dst, src hackpadfs.FS) (int, error) {
	copied := 0
	err := gofs.WalkDir(src, ".", func(p string, entry gofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		data, err := gofs.ReadFile(src, p)
		if err != nil {
			return errors.Wrapf(err, "read %s", p)
		}
		if err := WriteFile(dst, p, data); err != nil {
			return err
		}
		copied++
		return nil
	})
	log.Debugf("resourcefs: copied %d files", copied)
	return copied, err
}
