package common

import (
	"path"
	"strings"
)

// ResolvePath joins p onto base unless p is already absolute, then strips the leading
// slash so the result is a valid io/fs path.
func ResolvePath(base, p string) string {
	if path.IsAbs(p) {
		p = path.Clean(p)
	} else {
		p = path.Join(base, p)
	}
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// StripFileScheme removes a leading file:// from resource and icon references.
func StripFileScheme(p string) string {
	return strings.TrimPrefix(p, "file://")
}
