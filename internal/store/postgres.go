package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql, used by goose
	"github.com/pressly/goose/v3"

	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    queries
}

// NewPostgresStore runs migrations and opens a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if err := runPostgresMigrations(ctx, databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, q: newQueries(sq.Dollar)}, nil
}

// goose needs *sql.DB, so migrations go through the pgx stdlib driver.
func runPostgresMigrations(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	return migrate(ctx, db, goose.DialectPostgres, "migrations/postgres")
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// AppendCheckin inserts a check-in and returns it with its row ID.
func (s *PostgresStore) AppendCheckin(ctx context.Context, rec checkin.Record) (checkin.Record, error) {
	defer observe("postgres", "append_checkin", time.Now())

	query, args, err := s.q.insertCheckin(rec).Suffix("RETURNING id").ToSql()
	if err != nil {
		return checkin.Record{}, fmt.Errorf("build insert checkin: %w", err)
	}

	if err := s.pool.QueryRow(ctx, query, args...).Scan(&rec.ID); err != nil {
		return checkin.Record{}, fmt.Errorf("insert checkin: %w", err)
	}
	return rec, nil
}

// AppendSession inserts a chat turn and returns it with its row ID.
func (s *PostgresStore) AppendSession(ctx context.Context, rec chat.SessionRecord) (chat.SessionRecord, error) {
	defer observe("postgres", "append_session", time.Now())

	query, args, err := s.q.insertSession(rec).Suffix("RETURNING id").ToSql()
	if err != nil {
		return chat.SessionRecord{}, fmt.Errorf("build insert session: %w", err)
	}

	if err := s.pool.QueryRow(ctx, query, args...).Scan(&rec.ID); err != nil {
		return chat.SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}
	return rec, nil
}

// ListRecentCheckins returns the newest check-ins for a user.
func (s *PostgresStore) ListRecentCheckins(ctx context.Context, userID int64, limit int) ([]checkin.Record, error) {
	defer observe("postgres", "list_checkins", time.Now())

	query, args, err := s.q.recentCheckins(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("build list checkins: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
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
func (s *PostgresStore) ListRecentSessions(ctx context.Context, userID int64, limit int) ([]chat.SessionRecord, error) {
	defer observe("postgres", "list_sessions", time.Now())

	query, args, err := s.q.recentSessions(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("build list sessions: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
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
