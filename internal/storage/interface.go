package storage

import "github.com/charmbracelet/log"

// Provider is a small durable key/value store. The engine keeps scalars,
// timestamps and JSON records in it; see the typed helpers in codec.go.
//
// Every write must be durable when the call returns. SetMany writes all keys
// atomically: either every value is stored or none is.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Values. Get returns errors.ErrNotFound for a missing key.
	Get(key string) (string, error)
	Set(key, value string) error
	SetMany(values map[string]string) error
	Remove(key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by stores with a versioned SQL schema.
type Migrator interface {
	Migrate(l *log.Logger) (int, error)
	SchemaVersion() (current, latest int, err error)
}
