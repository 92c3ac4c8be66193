package handler

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/handler/chat"
	"github.com/mindbridge/checkin/backend/internal/handler/checkin"
	"github.com/mindbridge/checkin/backend/internal/handler/health"
	"github.com/mindbridge/checkin/backend/internal/handler/history"
	"github.com/mindbridge/checkin/backend/internal/handler/speech"
	middlewarePkg "github.com/mindbridge/checkin/backend/internal/middleware"
	chatService "github.com/mindbridge/checkin/backend/internal/service/chat"
	"github.com/mindbridge/checkin/backend/internal/store"
)

// Deps 路由依赖的服务。SpeechSvc 可以为空，此时不注册语音路由。
type Deps struct {
	ChatSvc   *chatService.Service
	SpeechSvc speech.SpeechService
	Store     store.Store
	StaticDir string
	// MaxBodyBytes 请求体上限，<=0 表示不限制
	MaxBodyBytes int64
}

// NewRouter wires HTTP routes to core services.
func NewRouter(logger zerolog.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewarePkg.Metrics)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(logger.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)
	if deps.MaxBodyBytes > 0 {
		r.Use(middlewarePkg.MaxBodySize(deps.MaxBodyBytes))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Method(http.MethodGet, "/health", health.New(deps.Store))

	chat.New(deps.ChatSvc, logger).RegisterRoutes(r)
	checkin.New(deps.ChatSvc, logger).RegisterRoutes(r)
	history.New(deps.ChatSvc, logger).RegisterRoutes(r)

	if deps.SpeechSvc != nil {
		speech.New(deps.SpeechSvc).RegisterRoutes(r)
	}

	if deps.StaticDir != "" {
		if info, err := os.Stat(deps.StaticDir); err == nil && info.IsDir() {
			r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
		}
	}

	return r
}
