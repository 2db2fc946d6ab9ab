// Package kv holds the badger helpers shared by the embedded repositories.
// Records are stored as JSON values under human-readable prefixed keys.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

// Get decodes the value stored under key into v.
func Get(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return common.ErrNotFound
		}
		return Wrap(err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return Wrap(err)
		}
		return nil
	})
}

// Exists reports whether key is present.
func Exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, Wrap(err)
	}
	return true, nil
}

// Set stores v as JSON under key.
func Set(txn *badger.Txn, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return Wrap(err)
	}
	if err := txn.Set([]byte(key), b); err != nil {
		return Wrap(err)
	}
	return nil
}

// Delete removes key.
func Delete(txn *badger.Txn, key string) error {
	if err := txn.Delete([]byte(key)); err != nil {
		return Wrap(err)
	}
	return nil
}

// Scan calls fn for every key with prefix, in key order.
func Scan(txn *badger.Txn, prefix string, fn func(key []byte, val []byte) error) error {
	p := []byte(prefix)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		err := item.Value(func(val []byte) error {
			return fn(key, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Keys returns every key with prefix, in key order.
func Keys(txn *badger.Txn, prefix string) ([]string, error) {
	p := []byte(prefix)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys []string
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		keys = append(keys, string(it.Item().Key()))
	}
	return keys, nil
}

// Wrap marks a storage failure as common.ErrPersistence. Sentinels the
// repositories return on purpose pass through unchanged.
func Wrap(err error) error {
	if err == nil || errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrAlreadyExists) ||
		errors.Is(err, common.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: badger: %w", common.ErrPersistence, err)
}
