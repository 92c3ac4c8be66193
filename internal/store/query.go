package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
	"github.com/mindbridge/checkin/backend/internal/model/history"
)

var (
	checkinColumns = []string{"id", "user_id", "mood", "note", "language", "created_at"}
	sessionColumns = []string{"id", "user_id", "message", "response", "language", "created_at", "crisis_detected"}
)

// queries 按占位符风格生成两种 SQL 方言共用的语句。
type queries struct {
	b sq.StatementBuilderType
}

func newQueries(format sq.PlaceholderFormat) queries {
	return queries{b: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (q queries) insertCheckin(rec checkin.Record) sq.InsertBuilder {
	return q.b.Insert("checkins").
		Columns("user_id", "mood", "note", "language", "created_at").
		Values(rec.UserID, rec.Mood, rec.Note, rec.Language, rec.Timestamp)
}

func (q queries) insertSession(rec chat.SessionRecord) sq.InsertBuilder {
	return q.b.Insert("sessions").
		Columns("user_id", "message", "response", "language", "created_at", "crisis_detected").
		Values(rec.UserID, rec.Message, rec.Response, rec.Language, rec.Timestamp, rec.CrisisDetected)
}

func (q queries) recentCheckins(userID int64, limit int) (string, []any, error) {
	return q.b.Select(checkinColumns...).
		From("checkins").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(normalizeLimit(limit)).
		ToSql()
}

func (q queries) recentSessions(userID int64, limit int) (string, []any, error) {
	return q.b.Select(sessionColumns...).
		From("sessions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(normalizeLimit(limit)).
		ToSql()
}

func normalizeLimit(limit int) uint64 {
	if limit <= 0 {
		return history.DefaultLimit
	}
	return uint64(limit)
}

// rowScanner 同时覆盖 *sql.Rows 与 pgx.Rows。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckin(row rowScanner) (checkin.Record, error) {
	var rec checkin.Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Mood, &rec.Note, &rec.Language, &rec.Timestamp)
	return rec, err
}

func scanSession(row rowScanner) (chat.SessionRecord, error) {
	var rec chat.SessionRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Message, &rec.Response, &rec.Language, &rec.Timestamp, &rec.CrisisDetected)
	return rec, err
}
