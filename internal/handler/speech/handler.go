package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/mindbridge/checkin/backend/internal/model/speech"
	"github.com/mindbridge/checkin/backend/pkg/utils"
)

// audioFilePattern 只允许访问合成服务生成的文件。
var audioFilePattern = regexp.MustCompile(`^output_[0-9a-f]{32}\.mp3$`)

// SpeechService 抽象语音业务，便于测试与替换实现
type SpeechService interface {
	Synthesize(ctx context.Context, req speech.TTSRequest) speech.TTSResponse
	AudioDir() string
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	speechSvc SpeechService
}

// New 创建语音处理器
func New(speechSvc SpeechService) *Handler {
	return &Handler{speechSvc: speechSvc}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/speak", h.handleSpeak)
	r.Get("/audio/{file}", h.handleAudio)
}

// handleSpeak 处理文本转语音请求。合成失败同样返回 200，原因写在 message 中。
func (h *Handler) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speech.TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondDecodeError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.speechSvc.Synthesize(r.Context(), req))
}

// handleAudio 返回已合成的 mp3 文件
func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if !audioFilePattern.MatchString(name) {
		utils.RespondError(w, http.StatusNotFound, "audio file not found")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, filepath.Join(h.speechSvc.AudioDir(), name))
}
