package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed journal.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a journal database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL plus a busy timeout keeps concurrent hook appends from
	// tripping over SQLITE_BUSY.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to avoid lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at INTEGER NOT NULL,
		kind TEXT NOT NULL,
		class TEXT NOT NULL DEFAULT '',
		method TEXT NOT NULL DEFAULT '',
		from_class TEXT NOT NULL DEFAULT '',
		to_class TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_events_outcome ON events(outcome);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (at, kind, class, method, from_class, to_class, outcome, detail, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.At.UnixNano(), e.Kind, e.Class, e.Method, e.From, e.To, e.Outcome, e.Detail, int64(e.Duration))
	return err
}

func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `
		SELECT id, at, kind, class, method, from_class, to_class, outcome, detail, duration_ns
		FROM events
	`
	var conds []string
	var args []any
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Class != "" {
		conds = append(conds, "class = ?")
		args = append(args, f.Class)
	}
	if f.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, f.Outcome)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at, dur int64
		if err := rows.Scan(&e.ID, &at, &e.Kind, &e.Class, &e.Method, &e.From, &e.To, &e.Outcome, &e.Detail, &dur); err != nil {
			return nil, err
		}
		e.At = time.Unix(0, at)
		e.Duration = time.Duration(dur)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Summarize(ctx context.Context) (*Summary, error) {
	sum := &Summary{ByKind: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return nil, err
		}
		sum.ByKind[kind] = n
		sum.Total += n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE outcome = 'failed'`).Scan(&sum.Failures); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT from_class, to_class, COUNT(*) AS n
		FROM events
		WHERE kind = ? AND outcome = 'upgraded'
		GROUP BY from_class, to_class
		ORDER BY n DESC, from_class, to_class
	`, KindUpgrade)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p UpgradePath
		if err := rows.Scan(&p.From, &p.To, &p.Count); err != nil {
			return nil, err
		}
		sum.Paths = append(sum.Paths, p)
	}
	return sum, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Vacuum reclaims space after large deletes.
func (s *SQLiteStore) Vacuum() error {
	_, err := s.db.Exec("VACUUM")
	return err
}
