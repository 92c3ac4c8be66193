package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindbridge/checkin/backend/internal/analysis/crisis"
	"github.com/mindbridge/checkin/backend/internal/config"
	modelchat "github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
	"github.com/mindbridge/checkin/backend/internal/service/ai"
	chat "github.com/mindbridge/checkin/backend/internal/service/chat"
	"github.com/mindbridge/checkin/backend/internal/store"
)

type recordingResponder struct {
	calls     int
	prompts   []string
	languages []string
	reply     string
}

func (r *recordingResponder) Respond(_ context.Context, message, language string) string {
	r.calls++
	r.prompts = append(r.prompts, message)
	r.languages = append(r.languages, language)
	return r.reply
}

type failingStore struct {
	*store.MemoryStore
}

var errDiskFull = errors.New("disk full")

func (failingStore) AppendCheckin(context.Context, checkin.Record) (checkin.Record, error) {
	return checkin.Record{}, errDiskFull
}

func (failingStore) AppendSession(context.Context, modelchat.SessionRecord) (modelchat.SessionRecord, error) {
	return modelchat.SessionRecord{}, errDiskFull
}

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

func newService(t *testing.T, responder chat.Responder, st store.Store, screening bool) *chat.Service {
	t.Helper()
	return chat.NewService(responder, st, config.CheckinConfig{CrisisScreening: screening}, zerolog.Nop(),
		chat.WithClock(func() time.Time { return fixedNow }))
}

func TestHandleTurnCrisisSkipsProvider(t *testing.T) {
	responder := &recordingResponder{reply: "should not be used"}
	svc := newService(t, responder, store.NewMemoryStore(), false)

	result := svc.HandleTurn(context.Background(), "I want to kill myself", "en")

	assert.True(t, result.CrisisDetected)
	assert.Equal(t, crisis.ResponseEN, result.Response)
	assert.Zero(t, responder.calls)

	result = svc.HandleTurn(context.Background(), "Mujhe lagta hai I can't go on", "hi")
	assert.True(t, result.CrisisDetected)
	assert.Equal(t, crisis.ResponseHI, result.Response)
	assert.Zero(t, responder.calls)
}

func TestHandleTurnDelegatesToResponder(t *testing.T) {
	responder := &recordingResponder{reply: "That sounds lovely."}
	svc := newService(t, responder, store.NewMemoryStore(), false)

	result := svc.HandleTurn(context.Background(), "I had a good day", "en")

	assert.False(t, result.CrisisDetected)
	assert.Equal(t, "That sounds lovely.", result.Response)
	assert.Equal(t, []string{"I had a good day"}, responder.prompts)
	assert.Equal(t, []string{"en"}, responder.languages)
}

func TestHandleTurnWithoutCredentialsReturnsFallback(t *testing.T) {
	aiSvc, err := ai.NewService(context.Background(), config.AIConfig{
		Provider: ai.ProviderGemini,
		Timeout:  time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	svc := newService(t, aiSvc, store.NewMemoryStore(), false)
	result := svc.HandleTurn(context.Background(), "I had a good day", "en")

	assert.Equal(t, modelchat.TurnResult{Response: ai.FallbackResponseEN, CrisisDetected: false}, result)
}

func TestSubmitTurnPersistsSession(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newService(t, &recordingResponder{reply: "ok"}, st, false)

	result, err := svc.SubmitTurn(context.Background(), 1, modelchat.Message{Text: "I want to kill myself"})
	require.NoError(t, err)
	assert.True(t, result.CrisisDetected)

	sessions, err := st.ListRecentSessions(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "I want to kill myself", sessions[0].Message)
	assert.Equal(t, crisis.ResponseEN, sessions[0].Response)
	assert.Equal(t, "en", sessions[0].Language)
	assert.True(t, sessions[0].CrisisDetected)
	assert.True(t, fixedNow.Equal(sessions[0].Timestamp))
	assert.Equal(t, time.UTC, sessions[0].Timestamp.Location())
}

func TestSubmitTurnRejectsEmptyMessage(t *testing.T) {
	responder := &recordingResponder{}
	svc := newService(t, responder, store.NewMemoryStore(), false)

	_, err := svc.SubmitTurn(context.Background(), 1, modelchat.Message{Text: "   "})
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
	assert.Zero(t, responder.calls)
}

func TestSubmitTurnStoreFailure(t *testing.T) {
	svc := newService(t, &recordingResponder{reply: "ok"}, failingStore{store.NewMemoryStore()}, false)

	_, err := svc.SubmitTurn(context.Background(), 1, modelchat.Message{Text: "hello", Language: "en"})
	assert.ErrorIs(t, err, errDiskFull)
}

func TestSubmitCheckinForwardsPromptUnchanged(t *testing.T) {
	st := store.NewMemoryStore()
	responder := &recordingResponder{reply: "Sorry you're feeling low."}
	svc := newService(t, responder, st, false)

	result, err := svc.SubmitCheckin(context.Background(), 1, 2, "feeling low", "en")
	require.NoError(t, err)

	assert.Equal(t, checkin.Result{Response: "Sorry you're feeling low.", Mood: 2, Note: "feeling low"}, result)
	assert.Equal(t, []string{"User mood: 2/5, Note: feeling low"}, responder.prompts)

	checkins, err := st.ListRecentCheckins(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, checkins, 1)
	assert.Equal(t, 2, checkins[0].Mood)
	assert.Equal(t, "feeling low", checkins[0].Note)
}

func TestSubmitCheckinDefaultsLanguage(t *testing.T) {
	responder := &recordingResponder{reply: "ok"}
	svc := newService(t, responder, store.NewMemoryStore(), false)

	_, err := svc.SubmitCheckin(context.Background(), 1, 4, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, responder.languages)
	assert.Equal(t, []string{"User mood: 4/5, Note: "}, responder.prompts)
}

func TestSubmitCheckinCrisisNoteWithoutScreening(t *testing.T) {
	responder := &recordingResponder{reply: "provider reply"}
	svc := newService(t, responder, store.NewMemoryStore(), false)

	result, err := svc.SubmitCheckin(context.Background(), 1, 1, "I want to die", "en")
	require.NoError(t, err)

	assert.Equal(t, "provider reply", result.Response)
	assert.Equal(t, 1, responder.calls)
}

func TestSubmitCheckinCrisisNoteWithScreening(t *testing.T) {
	responder := &recordingResponder{reply: "provider reply"}
	svc := newService(t, responder, store.NewMemoryStore(), true)

	result, err := svc.SubmitCheckin(context.Background(), 1, 1, "I want to die", "hi")
	require.NoError(t, err)

	assert.Equal(t, crisis.ResponseHI, result.Response)
	assert.Zero(t, responder.calls)
}

func TestSubmitCheckinValidatesMood(t *testing.T) {
	responder := &recordingResponder{}
	svc := newService(t, responder, store.NewMemoryStore(), false)

	for _, mood := range []int{0, 6, -1} {
		_, err := svc.SubmitCheckin(context.Background(), 1, mood, "note", "en")
		assert.ErrorIs(t, err, checkin.ErrMoodOutOfRange)
	}
	assert.Zero(t, responder.calls)
}

func TestSubmitCheckinStoreFailureSkipsProvider(t *testing.T) {
	responder := &recordingResponder{reply: "ok"}
	svc := newService(t, responder, failingStore{store.NewMemoryStore()}, false)

	_, err := svc.SubmitCheckin(context.Background(), 1, 3, "fine", "en")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Zero(t, responder.calls)
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		_, err := st.AppendCheckin(ctx, checkin.Record{UserID: 1, Mood: i%5 + 1, Timestamp: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
		_, err = st.AppendSession(ctx, modelchat.SessionRecord{UserID: 1, Message: "m", Timestamp: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, err := st.AppendCheckin(ctx, checkin.Record{UserID: 2, Mood: 3, Timestamp: base.Add(100 * time.Hour)})
	require.NoError(t, err)

	svc := newService(t, &recordingResponder{}, st, false)
	h, err := svc.History(ctx, 1)
	require.NoError(t, err)

	require.Len(t, h.Checkins, 5)
	require.Len(t, h.Sessions, 5)
	assert.True(t, h.Checkins[0].Timestamp.Equal(base.Add(6*time.Hour)))
	assert.True(t, h.Sessions[4].Timestamp.Equal(base.Add(2*time.Hour)))
	for _, rec := range h.Checkins {
		assert.Equal(t, int64(1), rec.UserID)
	}
}

func TestHistoryEmptyUser(t *testing.T) {
	svc := newService(t, &recordingResponder{}, store.NewMemoryStore(), false)

	h, err := svc.History(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, h.Checkins)
	assert.NotNil(t, h.Sessions)
	assert.Empty(t, h.Checkins)
}
