// Package database handles the lower level support for the blockchain: the
// transactions, the blocks and their proof of work, and the contract a
// storage implementation needs to satisfy to persist them.
package database

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned by a storage when a block doesn't exist.
var ErrNotFound = errors.New("block not found")

// validate holds the settings and caches for validating block data.
var validate = validator.New()

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// Validate checks the block data has the fields required to construct a
// block.
func (bd BlockData) Validate() error {
	return validate.Struct(bd)
}

// ReadAll walks the iterator and returns the data for every block in the
// storage starting with block number 0.
func ReadAll(storage Storage) ([]BlockData, error) {
	var blocks []BlockData

	iter := storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, blockData)
	}

	return blocks, nil
}
