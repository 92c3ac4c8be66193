package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mindbridge/checkin/backend/internal/model/chat"
	"github.com/mindbridge/checkin/backend/internal/model/history"
	chatService "github.com/mindbridge/checkin/backend/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 25 * time.Second
	// 单帧上限，超出后连接以 1009 关闭
	maxFrameBytes = 64 << 10
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 在一条长连接上处理多轮聊天，每条消息独立处理，不保留上下文。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go h.pingLoop(ctx, conn)

	h.send(conn, "connected", map[string]any{"language": chat.DefaultLanguage})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		h.handleMessage(ctx, conn, &msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, msg *inboundMessage) {
	switch msg.Type {
	case "message":
		var payload chat.Message
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			h.sendError(conn, "invalid message payload")
			return
		}

		result, err := h.chatSvc.SubmitTurn(ctx, history.AnonymousUserID, payload)
		if err != nil {
			if errors.Is(err, chatService.ErrEmptyMessage) {
				h.sendError(conn, err.Error())
				return
			}
			h.log.Error().Err(err).Msg("failed to handle websocket chat turn")
			h.sendError(conn, "failed to save session")
			return
		}
		h.send(conn, "result", result)
	case "ping":
		h.send(conn, "pong", nil)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

// pingLoop 只使用 WriteControl，可以与读循环中的 WriteJSON 并发。
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, kind string, data interface{}) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(outgoingMessage{Type: kind, Data: data, Timestamp: time.Now().UnixMilli()}); err != nil {
		h.log.Warn().Err(err).Str("type", kind).Msg("websocket write failed")
	}
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, "error", map[string]string{"message": message})
}
