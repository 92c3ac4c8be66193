package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/config"
	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
)

// Store 是只追加的打卡与聊天记录存储。
// SQLiteStore、PostgresStore 与 MemoryStore 都实现该接口。
type Store interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Append-only writes; the returned record carries the assigned ID.
	AppendCheckin(ctx context.Context, rec checkin.Record) (checkin.Record, error)
	AppendSession(ctx context.Context, rec chat.SessionRecord) (chat.SessionRecord, error)

	// Newest first, at most limit rows.
	ListRecentCheckins(ctx context.Context, userID int64, limit int) ([]checkin.Record, error)
	ListRecentSessions(ctx context.Context, userID int64, limit int) ([]chat.SessionRecord, error)
}

// Open 根据配置选择存储实现并完成建表迁移。
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Info().Msg("using in-memory store")
		return NewMemoryStore(), nil
	case "sqlite3":
		s, err := NewSQLiteStore(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info().Str("path", cfg.URL).Msg("connected to SQLite")
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Info().Msg("connected to PostgreSQL")
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
