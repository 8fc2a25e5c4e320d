// Package journal persists wrapper protocol events for later
// inspection and reporting.
package journal

import (
	"context"
	"errors"
	"time"
)

// Event kinds stored in a journal.
const (
	KindCapture = "capture"
	KindInvoke  = "invoke"
	KindUpgrade = "upgrade"
	KindMigrate = "migrate"
)

var ErrUnsupportedStore = errors.New("unsupported journal store type")

// Entry is one recorded protocol event. Fields that do not apply to a
// kind stay empty: a capture has no duration, a migration no class.
type Entry struct {
	ID       int64         `json:"id"`
	At       time.Time     `json:"at"`
	Kind     string        `json:"kind"`
	Class    string        `json:"class,omitempty"`  // owner class for captures and invokes, declared class for upgrades
	Method   string        `json:"method,omitempty"` // wrapped callable, or the attribute name for migrations
	From     string        `json:"from,omitempty"`   // source class (upgrades) or instance id (migrations)
	To       string        `json:"to,omitempty"`
	Outcome  string        `json:"outcome,omitempty"`
	Detail   string        `json:"detail,omitempty"` // error text or extra context
	Duration time.Duration `json:"duration,omitempty"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind    string
	Class   string
	Outcome string
	Limit   int
}

// UpgradePath aggregates successful upgrades between two classes.
type UpgradePath struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// Summary holds aggregate statistics over a journal.
type Summary struct {
	Total    int            `json:"total"`
	ByKind   map[string]int `json:"by_kind"`
	Failures int            `json:"failures"`
	Paths    []UpgradePath  `json:"paths,omitempty"` // most frequent first
}

// Store defines the interface for journal persistence.
// Both the in-memory and the SQLite store implement it.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
	Summarize(ctx context.Context) (*Summary, error)
	Close() error
}

// Config holds journal store configuration.
type Config struct {
	Type string // "memory" or "sqlite"
	Path string // database file, SQLite only
}

// NewStore creates a store based on configuration. An empty type
// defaults to the in-memory store.
func NewStore(config Config) (Store, error) {
	switch config.Type {
	case "memory", "":
		return NewMemStore(), nil
	case "sqlite":
		path := config.Path
		if path == "" {
			path = "retype.db"
		}
		return NewSQLiteStore(path)
	default:
		return nil, ErrUnsupportedStore
	}
}
