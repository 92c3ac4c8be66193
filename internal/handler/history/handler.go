package history

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/model/history"
	"github.com/mindbridge/checkin/backend/pkg/utils"
)

// Service 读取最近的记录。
type Service interface {
	History(ctx context.Context, userID int64) (history.History, error)
}

// Handler 历史记录的HTTP处理器
type Handler struct {
	svc Service
	log zerolog.Logger
}

// New 创建历史记录处理器
func New(svc Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: logger.With().Str("component", "http.history").Logger(),
	}
}

// RegisterRoutes 注册历史记录路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.handleHistory)
}

type historyResponse struct {
	Success bool `json:"success"`
	history.History
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := history.AnonymousUserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "user_id must be a positive integer")
			return
		}
		userID = id
	}

	result, err := h.svc.History(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load history")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, historyResponse{Success: true, History: result})
}
