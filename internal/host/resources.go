package host

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/common"
	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hashicorp/golang-lru/v2"
	"github.com/johnstarich/go/datasize"
	"github.com/machinebox/progress"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// largeResourceBytes is the size above which reads report progress.
const largeResourceBytes = 1 << 20

var ErrResourceDenied = errors.New("resource path is not allowed")

var (
	allowedResourcePaths = []string{
		"/usr/palm/frameworks",
		"/media/internal",
		"/usr/lib/luna/luna-media",
		"/var/luna/files",
		"/var/luna/data/extractfs",
		"/var/luna/data/im-avatars",
		"/usr/palm/applications/com.palm.app.contacts/sharedWidgets/",
		"/usr/palm/sysmgr/",
		"/usr/palm/public",
		"/var/file-cache/",
		"/usr/lib/luna/system/luna-systemui/images/",
		"/usr/lib/luna/system/luna-systemui/app/FilePicker",
	}
	privilegedResourcePaths = []string{
		"/usr/lib/luna/system/",
		"/usr/palm/applications/",
		"/var/usr/palm/applications/com.palm.",
		"/media/cryptofs/apps/usr/palm/applications/com.palm.",
		"/usr/palm/sysmgr/",
		"/var/usr/palm/applications/com/palm/",
		"/media/cryptofs/apps/usr/palm/applications/com/palm/",
	}
	unprivilegedResourcePaths = []string{
		"/var/usr/palm/applications/",
		"/media/cryptofs/apps/usr/palm/applications/",
	}
)

// ResourceLoader reads application resources from a filesystem, caching recent reads
// and collapsing concurrent reads of the same file.
type ResourceLoader struct {
	fs               hackpadfs.FS
	root             string
	restrict         bool
	privileged       bool
	progressInterval time.Duration

	cache *lru.Cache[string, []byte]
	group singleflight.Group
}

func NewResourceLoader(fs hackpadfs.FS, cfg config.ResourcesConfig, privileged bool) (*ResourceLoader, error) {
	cache, err := lru.New[string, []byte](cfg.CacheEntries)
	if err != nil {
		return nil, errors.Wrap(err, "resource cache")
	}
	root := cfg.Root
	if root == "" {
		root = "/"
	}
	log.Debugf("host: resources under %s, caching %d files, progress above %v", root, cfg.CacheEntries, datasize.Megabytes(1))
	return &ResourceLoader{
		fs:               fs,
		root:             root,
		restrict:         cfg.Restrict,
		privileged:       privileged,
		progressInterval: cfg.ProgressInterval,
		cache:            cache,
	}, nil
}

// Resolve maps a resource reference to its absolute path. References may carry a
// file:// scheme; relative ones are resolved against the resource root.
func (l *ResourceLoader) Resolve(p string) string {
	return "/" + common.ResolvePath(l.root, common.StripFileScheme(p))
}

// Allowed reports whether an absolute path may be read under the current policy.
func (l *ResourceLoader) Allowed(p string) bool {
	if !l.restrict {
		return true
	}
	if hasAnyPrefix(p, allowedResourcePaths) {
		return true
	}
	if l.privileged {
		return hasAnyPrefix(p, privilegedResourcePaths)
	}
	return hasAnyPrefix(p, unprivilegedResourcePaths)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Load returns the contents of the resource at p.
func (l *ResourceLoader) Load(ctx context.Context, p string) ([]byte, error) {
	absPath := l.Resolve(p)
	if !l.Allowed(absPath) {
		return nil, errors.Wrap(ErrResourceDenied, absPath)
	}
	if data, ok := l.cache.Get(absPath); ok {
		return data, nil
	}
	v, err, _ := l.group.Do(absPath, func() (interface{}, error) {
		if data, ok := l.cache.Get(absPath); ok {
			return data, nil
		}
		data, err := l.read(ctx, absPath)
		if err != nil {
			return nil, err
		}
		l.cache.Add(absPath, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Forget drops p from the cache so the next Load reads it again.
func (l *ResourceLoader) Forget(p string) {
	l.cache.Remove(l.Resolve(p))
}

func (l *ResourceLoader) read(ctx context.Context, absPath string) ([]byte, error) {
	name := common.ResolvePath("/", absPath)
	f, err := l.fs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open resource %s", absPath)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat resource %s", absPath)
	}
	if info.IsDir() {
		return nil, errors.Errorf("resource %s is a directory", absPath)
	}

	var r io.Reader = f
	if size := info.Size(); size > largeResourceBytes {
		var stop context.CancelFunc
		r, stop = l.withProgress(ctx, absPath, f, size)
		defer stop()
	}
	data, err := io.ReadAll(r)
	return data, errors.Wrapf(err, "read resource %s", absPath)
}

func (l *ResourceLoader) withProgress(ctx context.Context, absPath string, r io.Reader, size int64) (io.Reader, context.CancelFunc) {
	progressR := progress.NewReader(r)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		for p := range progress.NewTicker(ctx, progressR, size, l.progressInterval) {
			log.Debugf("host: reading %s: %.0f%%", absPath, p.Percent())
		}
	}()
	return progressR, cancel
}
