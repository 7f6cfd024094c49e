// Package disk implements the ability to read and write blocks to a single
// JSON document on disk. The document is an ordered array of block records.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// blocks in a JSON file. The whole document is rewritten for every write so
// the file on disk is always a complete chain. This implements the
// database.Storage interface.
type Disk struct {
	mu     sync.RWMutex
	path   string
	blocks []database.BlockData
}

// New constructs a Disk value for use. A missing file is not an error, it
// represents an empty chain until the first write.
func New(path string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	d := Disk{
		path: path,
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &d, nil
	case err != nil:
		return nil, err
	}

	if len(content) > 0 {
		if err := json.Unmarshal(content, &d.blocks); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	return &d, nil
}

// Close in this implementation has nothing to do since the file is
// written and closed on every write.
func (d *Disk) Close() error {
	return nil
}

// Write appends the block to the chain and rewrites the document.
func (d *Disk) Write(blockData database.BlockData) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l := len(d.blocks); uint64(l) != blockData.Number {
		return fmt.Errorf("block is out of order, got %d, exp %d", blockData.Number, l)
	}

	blocks := append(d.blocks, blockData)
	if err := d.flush(blocks); err != nil {
		return err
	}
	d.blocks = blocks

	return nil
}

// GetBlock returns the contents of the specified block by number.
func (d *Disk) GetBlock(num uint64) (database.BlockData, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if num >= uint64(len(d.blocks)) {
		return database.BlockData{}, database.ErrNotFound
	}

	return d.blocks[num], nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (d *Disk) ForEach() database.Iterator {
	return &DiskIterator{disk: d}
}

// Reset will clear out the blockchain on disk.
func (d *Disk) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.flush(nil); err != nil {
		return err
	}
	d.blocks = nil

	return nil
}

// flush writes the blocks to a temporary file and renames it over the
// document so a failed write never leaves a partial chain behind.
func (d *Disk) flush(blocks []database.BlockData) error {
	if blocks == nil {
		blocks = []database.BlockData{}
	}

	// Marshal the chain for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blocks, "", "    ")
	if err != nil {
		return err
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, d.path)
}

// =============================================================================

// DiskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the database
// Iterator interface.
type DiskIterator struct {
	disk    *Disk  // Access to the Disk storage API.
	current uint64 // Next block number to read.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (di *DiskIterator) Next() (database.BlockData, error) {
	if di.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := di.disk.GetBlock(di.current)
	if errors.Is(err, database.ErrNotFound) {
		di.eoc = true
	}
	di.current++

	return blockData, err
}

// Done returns the end of chain value.
func (di *DiskIterator) Done() bool {
	return di.eoc
}
