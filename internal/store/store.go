// Package store persists widget state and cached results.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/datapass/internal/config"
	"github.com/mmcdole/datapass/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names, one per namespace
var (
	bucketResultData = []byte(domain.NamespaceResultData)
	bucketMisc       = []byte(domain.NamespaceMisc)
)

// backend is the raw byte store behind every namespace
type backend interface {
	get(ns, key string) ([]byte, bool)
	put(ns, key string, data []byte) error
	remove(ns, key string) error
	empty(ns string) bool
	Close() error
}

// Open builds the store selected by cfg.Driver
func Open(cfg config.StoreConfig, logger *slog.Logger) (domain.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case config.StoreMemory:
		return NewBoltStore("")
	case config.StoreSQLite:
		path := cfg.Path
		if !strings.HasSuffix(path, ".db") {
			path = filepath.Join(path, "datapass.sqlite")
		}
		logger.Info("opening sqlite store", "path", path)
		return NewSQLiteStore(path)
	case config.StoreBolt, "":
		logger.Info("opening bolt store", "dir", cfg.Path)
		return NewBoltStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// BoltStore keeps each namespace in its own bbolt bucket. Values read
// from disk stay in memory so widget refreshes do not hit the file.
type BoltStore struct {
	db *bolt.DB // nil when memory-only

	mu  sync.RWMutex
	hot map[string][]byte // ns + ":" + key
}

// NewBoltStore opens dir/datapass.db. An empty dir keeps everything in memory.
func NewBoltStore(dir string) (*BoltStore, error) {
	s := &BoltStore{hot: make(map[string][]byte)}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := bolt.Open(filepath.Join(dir, "datapass.db"), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketResultData, bucketMisc} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	s.db = db
	return s, nil
}

// Namespace returns the KeyValueStore for one bucket
func (s *BoltStore) Namespace(name string) domain.KeyValueStore {
	return &namespace{b: s, name: name}
}

func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func hotKey(ns, key string) string { return ns + ":" + key }

func (s *BoltStore) get(ns, key string) ([]byte, bool) {
	s.mu.RLock()
	data, ok := s.hot[hotKey(ns, key)]
	s.mu.RUnlock()
	if ok || s.db == nil {
		return data, ok
	}

	_ = s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(ns)); b != nil {
			// bbolt memory is only valid inside the transaction
			data = bytes.Clone(b.Get([]byte(key)))
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	s.mu.Lock()
	s.hot[hotKey(ns, key)] = data
	s.mu.Unlock()
	return data, true
}

func (s *BoltStore) put(ns, key string, data []byte) error {
	s.mu.Lock()
	s.hot[hotKey(ns, key)] = data
	s.mu.Unlock()
	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(ns))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

func (s *BoltStore) remove(ns, key string) error {
	s.mu.Lock()
	delete(s.hot, hotKey(ns, key))
	s.mu.Unlock()
	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(ns)); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *BoltStore) empty(ns string) bool {
	if s.db != nil {
		empty := true
		_ = s.db.View(func(tx *bolt.Tx) error {
			if b := tx.Bucket([]byte(ns)); b != nil {
				k, _ := b.Cursor().First()
				empty = k == nil
			}
			return nil
		})
		return empty
	}

	prefix := ns + ":"
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k := range s.hot {
		if strings.HasPrefix(k, prefix) {
			return false
		}
	}
	return true
}

// namespace adapts a backend to domain.KeyValueStore with JSON scalars
type namespace struct {
	b    backend
	name string
}

func (n *namespace) getJSON(key string, dest any) bool {
	data, ok := n.b.get(n.name, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (n *namespace) putJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return n.b.put(n.name, key, data)
}

func (n *namespace) GetString(key, def string) string {
	var v string
	if !n.getJSON(key, &v) {
		return def
	}
	return v
}

func (n *namespace) GetInt(key string, def int) int {
	var v int
	if !n.getJSON(key, &v) {
		return def
	}
	return v
}

func (n *namespace) GetLong(key string, def int64) int64 {
	var v int64
	if !n.getJSON(key, &v) {
		return def
	}
	return v
}

func (n *namespace) PutString(key, value string) error { return n.putJSON(key, value) }
func (n *namespace) PutInt(key string, value int) error { return n.putJSON(key, value) }
func (n *namespace) PutLong(key string, value int64) error { return n.putJSON(key, value) }

func (n *namespace) Remove(key string) error { return n.b.remove(n.name, key) }

func (n *namespace) IsEmpty() bool { return n.b.empty(n.name) }
