package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

const correlationHeader = "X-Correlation-Id"

type ctxKey int

const correlationKey ctxKey = iota

type RouterConfig struct {
	// StaticDir holds the chat front-end. Empty disables static files.
	StaticDir      string
	RequestTimeout time.Duration
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger(h.log))
	r.Use(recoverJSON(h.log))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/generate-plan", h.GeneratePlan)
		r.Post("/update-training-plan", h.UpdatePlan)
		r.Get("/training-plan", h.GetDocument)
		r.Get("/health", h.Health)
	})

	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, filepath.Join(dir, "chat_interface.html"))
		})
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", correlationHeader},
		ExposedHeaders: []string{correlationHeader},
		MaxAge:         300,
	}).Handler(r)
}

// correlationID reuses the caller's X-Correlation-Id or mints one, and echoes
// it on the response.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(correlationHeader))
		if id == "" {
			id = newUUID()
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), correlationKey, id)))
	})
}

func correlationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"correlation_id", correlationIDFrom(r.Context()),
			)
		})
	}
}

// recoverJSON turns a panic into the standard error body.
func recoverJSON(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic serving request",
					"panic", fmt.Sprint(rec),
					"path", r.URL.Path,
					"correlation_id", correlationIDFrom(r.Context()),
					"stack", string(debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, errorResponse{
					Error:   "internal server error",
					Details: fmt.Sprint(rec),
					Code:    "INTERNAL_ERROR",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

var newUUID = func() string {
	return uuid.NewString()
}
