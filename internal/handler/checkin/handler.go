package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/checkin"
	"github.com/mindbridge/checkin/backend/internal/model/history"
	"github.com/mindbridge/checkin/backend/pkg/utils"
)

// Service 保存打卡并生成回复。
type Service interface {
	SubmitCheckin(ctx context.Context, userID int64, mood int, note, language string) (checkin.Result, error)
}

// Handler 心情打卡的HTTP处理器
type Handler struct {
	svc Service
	log zerolog.Logger
}

// New 创建打卡处理器
func New(svc Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: logger.With().Str("component", "http.checkin").Logger(),
	}
}

// RegisterRoutes 注册打卡路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/checkin", h.handleCheckin)
}

type checkinRequest struct {
	Mood     string
	Note     string
	Language string
}

type checkinResponse struct {
	Success bool `json:"success"`
	checkin.Result
}

// moodField 兼容 JSON 中数字或字符串形式的评分。
type moodField string

func (m *moodField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = moodField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = moodField(n.String())
	return nil
}

// parseRequest 同时接受表单与 JSON 请求体。
func parseRequest(r *http.Request) (checkinRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var payload struct {
			Mood     moodField `json:"mood"`
			Note     string    `json:"note"`
			Language string    `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return checkinRequest{}, err
		}
		return checkinRequest{Mood: string(payload.Mood), Note: payload.Note, Language: payload.Language}, nil
	}

	if err := r.ParseForm(); err != nil {
		return checkinRequest{}, err
	}
	return checkinRequest{
		Mood:     r.PostForm.Get("mood"),
		Note:     r.PostForm.Get("note"),
		Language: r.PostForm.Get("language"),
	}, nil
}

// handleCheckin 保存一次心情打卡并返回回复
func (h *Handler) handleCheckin(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		utils.RespondDecodeError(w, err)
		return
	}

	mood, err := strconv.Atoi(strings.TrimSpace(req.Mood))
	if err != nil || checkin.ValidateMood(mood) != nil {
		utils.RespondError(w, http.StatusBadRequest, checkin.ErrMoodOutOfRange.Error())
		return
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = chat.DefaultLanguage
	}

	result, err := h.svc.SubmitCheckin(r.Context(), history.AnonymousUserID, mood, req.Note, language)
	if err != nil {
		if errors.Is(err, checkin.ErrMoodOutOfRange) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to submit checkin")
		utils.RespondError(w, http.StatusInternalServerError, "failed to save checkin")
		return
	}

	utils.RespondJSON(w, http.StatusOK, checkinResponse{Success: true, Result: result})
}
