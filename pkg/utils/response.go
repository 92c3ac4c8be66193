package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// RespondError 发送错误响应，格式为 {"success": false, "error": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Success: false, Error: message})
}

// ErrorBody 错误响应体
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RespondDecodeError 请求体超过上限时返回 413，其余解析错误返回 400。
func RespondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	RespondError(w, http.StatusBadRequest, "invalid request body")
}
