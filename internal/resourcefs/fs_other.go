//go:build !js
// +build !js

package resourcefs

import (
	"context"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/os"
)

// New returns the host filesystem. Paths are rooted at "/" without the leading slash.
func New(ctx context.Context, opts Options) (hackpadfs.FS, error) {
	return os.NewFS(), nil
}
