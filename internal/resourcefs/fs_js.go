//go:build js
// +build js

package resourcefs

import (
	"context"

	"github.com/hack-pad/go-indexeddb/idb"
	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/indexeddb"
)

// New opens the IndexedDB database backing resources in the browser.
func New(ctx context.Context, opts Options) (hackpadfs.FS, error) {
	durability := idb.DurabilityDefault
	if opts.RelaxedDurability {
		durability = idb.DurabilityRelaxed
	}
	return indexeddb.NewFS(ctx, opts.name(), indexeddb.Options{
		TransactionDurability: durability,
	})
}
