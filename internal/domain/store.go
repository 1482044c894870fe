package domain

// Namespaces of the key-value store
const (
	NamespaceResultData = "result_data"
	NamespaceMisc       = "misc"
)

// KeyValueStore is one namespace of persistent scalar settings.
// Getters return def when the key is absent or unreadable.
type KeyValueStore interface {
	GetString(key, def string) string
	GetInt(key string, def int) int
	GetLong(key string, def int64) int64

	PutString(key, value string) error
	PutInt(key string, value int) error
	PutLong(key string, value int64) error

	Remove(key string) error

	// IsEmpty reports whether the namespace holds no keys at all
	IsEmpty() bool
}

// Store opens namespaces and owns the backing database
type Store interface {
	Namespace(name string) KeyValueStore
	Close() error
}
