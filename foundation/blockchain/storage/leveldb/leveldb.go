// Package leveldb implements the ability to read and write blocks to a
// LevelDB database. Blocks are stored as JSON under the key
// "blocks:" followed by the big endian block number.
package leveldb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const prefixBlocks = "blocks:"

// LevelDB represents the serialization implementation for reading and storing
// blocks in LevelDB. This implements the database.Storage interface.
type LevelDB struct {
	mu    sync.RWMutex
	db    *leveldb.DB
	count uint64
}

// New opens (or creates) a LevelDB database at the specified directory.
func New(dir string) (*LevelDB, error) {
	if dir == "" {
		return nil, errors.New("directory path cannot be empty")
	}

	db, err := leveldb.OpenFile(filepath.Clean(dir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB at %s: %w", dir, err)
	}

	l := LevelDB{
		db: db,
	}

	iter := db.NewIterator(util.BytesPrefix([]byte(prefixBlocks)), nil)
	for iter.Next() {
		l.count++
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count blocks: %w", err)
	}

	return &l, nil
}

// Close closes the underlying database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write stores the block under its number. Blocks must be written in order.
func (l *LevelDB) Write(blockData database.BlockData) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count != blockData.Number {
		return fmt.Errorf("block is out of order, got %d, exp %d", blockData.Number, l.count)
	}

	data, err := json.Marshal(blockData)
	if err != nil {
		return err
	}

	if err := l.db.Put(numberToKey(blockData.Number), data, nil); err != nil {
		return fmt.Errorf("writing block %d: %w", blockData.Number, err)
	}
	l.count++

	return nil
}

// GetBlock returns the contents of the specified block by number.
func (l *LevelDB) GetBlock(num uint64) (database.BlockData, error) {
	val, err := l.db.Get(numberToKey(num), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return database.BlockData{}, database.ErrNotFound
		}
		return database.BlockData{}, fmt.Errorf("reading block %d: %w", num, err)
	}

	var blockData database.BlockData
	if err := json.Unmarshal(val, &blockData); err != nil {
		return database.BlockData{}, fmt.Errorf("decoding block %d: %w", num, err)
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (l *LevelDB) ForEach() database.Iterator {
	return &LevelDBIterator{storage: l}
}

// Reset removes every block from the database in a single batch.
func (l *LevelDB) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := new(leveldb.Batch)

	iter := l.db.NewIterator(util.BytesPrefix([]byte(prefixBlocks)), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	if err := l.db.Write(batch, nil); err != nil {
		return err
	}
	l.count = 0

	return nil
}

// numberToKey converts a block number to a LevelDB key with the blocks prefix.
func numberToKey(num uint64) []byte {
	key := make([]byte, len(prefixBlocks)+8)
	copy(key, prefixBlocks)
	binary.BigEndian.PutUint64(key[len(prefixBlocks):], num)
	return key
}

// =============================================================================

// LevelDBIterator represents the iteration implementation for walking
// through and reading blocks from LevelDB. This implements the database
// Iterator interface.
type LevelDBIterator struct {
	storage *LevelDB // Access to the LevelDB storage API.
	current uint64   // Next block number to read.
	eoc     bool     // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from the database.
func (li *LevelDBIterator) Next() (database.BlockData, error) {
	if li.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := li.storage.GetBlock(li.current)
	if errors.Is(err, database.ErrNotFound) {
		li.eoc = true
	}
	li.current++

	return blockData, err
}

// Done returns the end of chain value.
func (li *LevelDBIterator) Done() bool {
	return li.eoc
}
