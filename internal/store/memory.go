package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
)

// MemoryStore keeps records in process memory, suitable for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	checkins []checkin.Record
	sessions []chat.SessionRecord
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkins: make([]checkin.Record, 0, 16),
		sessions: make([]chat.SessionRecord, 0, 16),
	}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// AppendCheckin appends a check-in and assigns it an ID.
func (s *MemoryStore) AppendCheckin(_ context.Context, rec checkin.Record) (checkin.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	s.checkins = append(s.checkins, rec)
	return rec, nil
}

// AppendSession appends a chat turn and assigns it an ID.
func (s *MemoryStore) AppendSession(_ context.Context, rec chat.SessionRecord) (chat.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	s.sessions = append(s.sessions, rec)
	return rec, nil
}

// ListRecentCheckins returns copies of the newest check-ins for a user.
func (s *MemoryStore) ListRecentCheckins(_ context.Context, userID int64, limit int) ([]checkin.Record, error) {
	s.mu.RLock()
	matched := make([]checkin.Record, 0, len(s.checkins))
	for _, rec := range s.checkins {
		if rec.UserID == userID {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return truncate(matched, limit), nil
}

// ListRecentSessions returns copies of the newest chat turns for a user.
func (s *MemoryStore) ListRecentSessions(_ context.Context, userID int64, limit int) ([]chat.SessionRecord, error) {
	s.mu.RLock()
	matched := make([]chat.SessionRecord, 0, len(s.sessions))
	for _, rec := range s.sessions {
		if rec.UserID == userID {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return truncate(matched, limit), nil
}

func truncate[T any](records []T, limit int) []T {
	n := int(normalizeLimit(limit))
	if len(records) > n {
		return records[:n]
	}
	return records
}
