// Package disk implements the ability to persist the chain using BadgerDB.
package disk

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Keys:
// Snapshot:        "chain:snapshot" -> json snapshot
// Receipt counter: "receipt:next"   -> big endian uint64
// Receipt:         "receipt:r:<seq>" -> json receipt, seq big endian so keys sort in order
var (
	keySnapshot    = []byte("chain:snapshot")
	keyReceiptNext = []byte("receipt:next")
	prefixReceipt  = []byte("receipt:r:")
)

// Disk represents the storage implementation for persisting the chain in a
// BadgerDB database. This implements the storage.Store interface.
type Disk struct {
	db *badger.DB
}

// New opens or creates a BadgerDB database at the given path. If path is
// empty an in-memory database is opened, which is useful for testing.
// Badger's own messages are written to the logger when one is provided.
func New(path string, log *zap.SugaredLogger) (*Disk, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	opts.Logger = nil
	if log != nil {
		opts.Logger = badgerLogger{log: log}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}

	return &Disk{db: db}, nil
}

// Close cleanly releases the database.
func (d *Disk) Close() error {
	return d.db.Close()
}

// Commit writes the snapshot and appends the receipts in a single
// transaction.
func (d *Disk) Commit(snapshot storage.Snapshot, receipts ...database.Receipt) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return d.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keySnapshot, data); err != nil {
			return err
		}

		next, err := readUint64(txn, keyReceiptNext)
		if err != nil {
			return err
		}

		for _, receipt := range receipts {
			data, err := json.Marshal(receipt)
			if err != nil {
				return err
			}

			if err := txn.Set(receiptKey(next), data); err != nil {
				return err
			}
			next++
		}

		return txn.Set(keyReceiptNext, binary.BigEndian.AppendUint64(nil, next))
	})
}

// LoadSnapshot returns the last committed snapshot.
func (d *Disk) LoadSnapshot() (storage.Snapshot, error) {
	var snapshot storage.Snapshot
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keySnapshot)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snapshot)
		})
	})

	if err != nil {
		return storage.Snapshot{}, err
	}

	return snapshot, nil
}

// Receipts returns the receipts in the order they were committed.
func (d *Disk) Receipts() ([]database.Receipt, error) {
	var receipts []database.Receipt
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixReceipt

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var receipt database.Receipt
				if err := json.Unmarshal(val, &receipt); err != nil {
					return err
				}
				receipts = append(receipts, receipt)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return receipts, nil
}

// Reset will clear out the chain.
func (d *Disk) Reset() error {
	return d.db.DropAll()
}

// =============================================================================

// receiptKey builds the key for the receipt with the given sequence.
func receiptKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), prefixReceipt...), seq)
}

// readUint64 reads a counter, a missing key reads as zero.
func readUint64(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var v uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt counter %q", key)
		}
		v = binary.BigEndian.Uint64(val)
		return nil
	})

	return v, err
}
