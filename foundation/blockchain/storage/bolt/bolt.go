// Package bolt implements the ability to read and write blocks to a bbolt
// database file. Every block lives in a single bucket keyed by its big
// endian block number.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	bolt "go.etcd.io/bbolt"
)

var bucketBlocks = []byte("blocks")

// Bolt represents the serialization implementation for reading and storing
// blocks in a bbolt file. This implements the database.Storage interface.
type Bolt struct {
	db *bolt.DB
}

// New opens (or creates) the bbolt database file at the specified path.
func New(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlocks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Close closes the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Write stores the block under its number. Blocks must be written in order.
func (b *Bolt) Write(blockData database.BlockData) error {
	data, err := json.Marshal(blockData)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketBlocks)

		var next uint64
		if k, _ := bucket.Cursor().Last(); k != nil {
			next = binary.BigEndian.Uint64(k) + 1
		}

		if next != blockData.Number {
			return fmt.Errorf("block is out of order, got %d, exp %d", blockData.Number, next)
		}

		return bucket.Put(numberToKey(blockData.Number), data)
	})
}

// GetBlock returns the contents of the specified block by number.
func (b *Bolt) GetBlock(num uint64) (database.BlockData, error) {
	var blockData database.BlockData

	err := b.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketBlocks).Get(numberToKey(num))
		if val == nil {
			return database.ErrNotFound
		}

		if err := json.Unmarshal(val, &blockData); err != nil {
			return fmt.Errorf("decoding block %d: %w", num, err)
		}

		return nil
	})

	return blockData, err
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (b *Bolt) ForEach() database.Iterator {
	return &BoltIterator{storage: b}
}

// Reset drops and recreates the blocks bucket.
func (b *Bolt) Reset() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketBlocks); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}

		_, err := tx.CreateBucket(bucketBlocks)
		return err
	})
}

func numberToKey(num uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, num)
	return key
}

// =============================================================================

// BoltIterator represents the iteration implementation for walking
// through and reading blocks from bbolt. This implements the database
// Iterator interface.
type BoltIterator struct {
	storage *Bolt  // Access to the Bolt storage API.
	current uint64 // Next block number to read.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from the database.
func (bi *BoltIterator) Next() (database.BlockData, error) {
	if bi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := bi.storage.GetBlock(bi.current)
	if errors.Is(err, database.ErrNotFound) {
		bi.eoc = true
	}
	bi.current++

	return blockData, err
}

// Done returns the end of chain value.
func (bi *BoltIterator) Done() bool {
	return bi.eoc
}
