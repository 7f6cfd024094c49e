// Package storage selects one of the storage implementations by kind.
package storage

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/leveldb"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Set of storage kinds that can be opened.
const (
	KindMemory  = "memory"
	KindDisk    = "disk"
	KindBolt    = "bolt"
	KindLevelDB = "leveldb"
)

// Kinds lists the storage kinds that can be opened.
var Kinds = []string{KindMemory, KindDisk, KindBolt, KindLevelDB}

// Open constructs the storage of the specified kind at the path. The path is
// a file for disk and bolt, a directory for leveldb, and ignored for memory.
func Open(kind string, path string) (database.Storage, error) {
	switch kind {
	case KindMemory:
		return memory.New()
	case KindDisk:
		return disk.New(path)
	case KindBolt:
		return bolt.New(path)
	case KindLevelDB:
		return leveldb.New(path)
	}

	return nil, fmt.Errorf("unknown storage kind %q, expecting one of %v", kind, Kinds)
}
