package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/history"
	chatService "github.com/mindbridge/checkin/backend/internal/service/chat"
	"github.com/mindbridge/checkin/backend/pkg/utils"
)

// TurnService 处理一次聊天轮次并落库。
type TurnService interface {
	SubmitTurn(ctx context.Context, userID int64, msg chat.Message) (chat.TurnResult, error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  TurnService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// New 创建聊天处理器
func New(chatSvc TurnService, logger zerolog.Logger) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		log:     logger.With().Str("component", "http.chat").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleSession)
	r.Get("/ws/session", h.handleWebSocket)
}

type sessionResponse struct {
	Success bool `json:"success"`
	chat.TurnResult
}

// handleSession 处理一条聊天消息
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	var msg chat.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		utils.RespondDecodeError(w, err)
		return
	}

	result, err := h.chatSvc.SubmitTurn(r.Context(), history.AnonymousUserID, msg)
	if err != nil {
		if errors.Is(err, chatService.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to handle chat turn")
		utils.RespondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{Success: true, TurnResult: result})
}
