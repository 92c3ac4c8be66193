package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/analysis/crisis"
	"github.com/mindbridge/checkin/backend/internal/config"
	"github.com/mindbridge/checkin/backend/internal/metrics"
	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
	"github.com/mindbridge/checkin/backend/internal/model/history"
	"github.com/mindbridge/checkin/backend/internal/store"
)

var ErrEmptyMessage = errors.New("message is required")

// Responder 生成非危机场景下的回复，不返回错误。
type Responder interface {
	Respond(ctx context.Context, message, language string) string
}

// Service 编排一次聊天轮次或一次心情打卡：危机识别、生成回复、落库。
type Service struct {
	responder Responder
	store     store.Store
	screening bool
	now       func() time.Time
	log       zerolog.Logger
}

// Option customises the orchestrator.
type Option func(*Service)

// WithClock 替换时间来源，测试使用。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the orchestrator to a responder and a store.
func NewService(responder Responder, st store.Store, cfg config.CheckinConfig, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		responder: responder,
		store:     st,
		screening: cfg.CrisisScreening,
		now:       time.Now,
		log:       logger.With().Str("component", "chat").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleTurn 对消息做危机识别。命中时直接返回固定危机话术，不调用生成服务。
func (s *Service) HandleTurn(ctx context.Context, message, language string) chat.TurnResult {
	decision := crisis.Analyze(message)
	metrics.ChatTurns.WithLabelValues(strconv.FormatBool(decision.Crisis)).Inc()

	if decision.Crisis {
		s.log.Warn().
			Str("kind", string(decision.Kind)).
			Str("matched", decision.Matched).
			Str("language", language).
			Msg("crisis language detected")
		return chat.TurnResult{Response: crisis.Response(language), CrisisDetected: true}
	}

	return chat.TurnResult{
		Response:       s.responder.Respond(ctx, message, language),
		CrisisDetected: false,
	}
}

// SubmitTurn runs HandleTurn and appends the resulting session record.
func (s *Service) SubmitTurn(ctx context.Context, userID int64, msg chat.Message) (chat.TurnResult, error) {
	msg = msg.Normalize()
	if strings.TrimSpace(msg.Text) == "" {
		return chat.TurnResult{}, ErrEmptyMessage
	}

	result := s.HandleTurn(ctx, msg.Text, msg.Language)

	_, err := s.store.AppendSession(ctx, chat.SessionRecord{
		UserID:         userID,
		Message:        msg.Text,
		Response:       result.Response,
		Language:       msg.Language,
		Timestamp:      s.now().UTC(),
		CrisisDetected: result.CrisisDetected,
	})
	if err != nil {
		return chat.TurnResult{}, fmt.Errorf("save session: %w", err)
	}

	return result, nil
}

// CheckinPrompt 构造打卡时发送给生成服务的提示词。
func CheckinPrompt(mood int, note string) string {
	return fmt.Sprintf("User mood: %d/5, Note: %s", mood, note)
}

// SubmitCheckin 先保存打卡，再用组合提示词请求回复。
// 备注命中危机语言时，仅在开启 CrisisScreening 后才替换为危机话术。
func (s *Service) SubmitCheckin(ctx context.Context, userID int64, mood int, note, language string) (checkin.Result, error) {
	if err := checkin.ValidateMood(mood); err != nil {
		return checkin.Result{}, err
	}
	if language == "" {
		language = chat.DefaultLanguage
	}

	_, err := s.store.AppendCheckin(ctx, checkin.Record{
		UserID:    userID,
		Mood:      mood,
		Note:      note,
		Language:  language,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		return checkin.Result{}, fmt.Errorf("save checkin: %w", err)
	}
	metrics.Checkins.Inc()

	result := checkin.Result{Mood: mood, Note: note}

	if decision := crisis.Analyze(note); decision.Crisis {
		if s.screening {
			s.log.Warn().Str("matched", decision.Matched).Msg("crisis language in check-in note, returning crisis response")
			result.Response = crisis.Response(language)
			return result, nil
		}
		s.log.Warn().Str("matched", decision.Matched).Msg("crisis language in check-in note, screening disabled")
		metrics.UnscreenedCrisisCheckins.Inc()
	}

	result.Response = s.responder.Respond(ctx, CheckinPrompt(mood, note), language)
	return result, nil
}

// History 返回用户最近的打卡与聊天记录。
func (s *Service) History(ctx context.Context, userID int64) (history.History, error) {
	checkins, err := s.store.ListRecentCheckins(ctx, userID, history.DefaultLimit)
	if err != nil {
		return history.History{}, fmt.Errorf("list checkins: %w", err)
	}

	sessions, err := s.store.ListRecentSessions(ctx, userID, history.DefaultLimit)
	if err != nil {
		return history.History{}, fmt.Errorf("list sessions: %w", err)
	}

	if checkins == nil {
		checkins = []checkin.Record{}
	}
	if sessions == nil {
		sessions = []chat.SessionRecord{}
	}

	return history.History{Checkins: checkins, Sessions: sessions}, nil
}
