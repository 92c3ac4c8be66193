package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/mindbridge/checkin/backend/internal/metrics"
	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
)

// ErrSQLiteInMemory 内存 SQLite 每个连接都是独立的空库，迁移只作用于其中一个。
var ErrSQLiteInMemory = errors.New("in-memory sqlite is not supported, use DATABASE_DRIVER=memory")

// sqliteDSN 追加 WAL 与 busy_timeout 参数，已有查询串时用 & 连接。
func sqliteDSN(path string) string {
	const params = "_journal_mode=WAL&_busy_timeout=5000"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func isMemoryDSN(path string) bool {
	path = strings.TrimSpace(path)
	return strings.HasPrefix(path, ":memory:") ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
	q  queries
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "mindbridge.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "mindbridge.db"
	}

	if isMemoryDSN(dbPath) {
		return nil, ErrSQLiteInMemory
	}

	// Ensure directory exists
	if dir := filepath.Dir(strings.TrimPrefix(stripQuery(dbPath), "file:")); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(ctx, db, goose.DialectSQLite3, "migrations/sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, q: newQueries(sq.Question)}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendCheckin inserts a check-in and returns it with its row ID.
func (s *SQLiteStore) AppendCheckin(ctx context.Context, rec checkin.Record) (checkin.Record, error) {
	defer observe("sqlite3", "append_checkin", time.Now())

	query, args, err := s.q.insertCheckin(rec).ToSql()
	if err != nil {
		return checkin.Record{}, fmt.Errorf("build insert checkin: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return checkin.Record{}, fmt.Errorf("insert checkin: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return checkin.Record{}, fmt.Errorf("checkin id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// AppendSession inserts a chat turn and returns it with its row ID.
func (s *SQLiteStore) AppendSession(ctx context.Context, rec chat.SessionRecord) (chat.SessionRecord, error) {
	defer observe("sqlite3", "append_session", time.Now())

	query, args, err := s.q.insertSession(rec).ToSql()
	if err != nil {
		return chat.SessionRecord{}, fmt.Errorf("build insert session: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return chat.SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return chat.SessionRecord{}, fmt.Errorf("session id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// ListRecentCheckins returns the newest check-ins for a user.
func (s *SQLiteStore) ListRecentCheckins(ctx context.Context, userID int64, limit int) ([]checkin.Record, error) {
	defer observe("sqlite3", "list_checkins", time.Now())

	query, args, err := s.q.recentCheckins(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("build list checkins: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	records := make([]checkin.Record, 0, normalizeLimit(limit))
	for rows.Next() {
		rec, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRecentSessions returns the newest chat turns for a user.
func (s *SQLiteStore) ListRecentSessions(ctx context.Context, userID int64, limit int) ([]chat.SessionRecord, error) {
	defer observe("sqlite3", "list_sessions", time.Now())

	query, args, err := s.q.recentSessions(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("build list sessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	records := make([]chat.SessionRecord, 0, normalizeLimit(limit))
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func observe(driver, op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
}
