package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appscans "github.com/omariomari2/wvs-102/internal/application/scans"
	appsessions "github.com/omariomari2/wvs-102/internal/application/sessions"
	domscans "github.com/omariomari2/wvs-102/internal/domain/scans"
	domsessions "github.com/omariomari2/wvs-102/internal/domain/sessions"
	"github.com/omariomari2/wvs-102/internal/infra/crawler"
	"github.com/omariomari2/wvs-102/internal/middleware"
)

const (
	defaultSessionKey = "default"
	maxBodyBytes      = 1 << 20
)

type Router struct {
	sessions *appsessions.Service
	scans    *appscans.Service
	scanOpts crawler.Options
	log      *logrus.Logger
}

func NewRouter(sessionsSvc *appsessions.Service, scansSvc *appscans.Service, scanOpts crawler.Options, log *logrus.Logger) http.Handler {
	r := &Router{sessions: sessionsSvc, scans: scansSvc, scanOpts: scanOpts, log: log}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(log))

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
			"store": middleware.HealthCheckerFunc(r.sessions.Ping),
		}))
		// scan submissions are the expensive operation, so only they are
		// rate limited
		rt.With(middleware.RateLimit(10, 1)).Post("/scan", r.wrap(r.handleScan))
		rt.Get("/scan/{id}/status", r.wrap(r.handleStatus))
		rt.Post("/chat/{scanId}", r.wrap(r.handleChat))
		rt.Get("/chat/{scanId}/history", r.wrap(r.handleHistory))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, domsessions.ErrNotFound):
				writeError(w, http.StatusNotFound, "session not found")
			case errors.Is(err, middleware.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				r.log.WithField("error", err).Error("request failed")
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}

// POST /api/scan
// Body: {"url": "...", "sessionId": "..."} — sessionId optional, defaults to
// "default". Responds immediately; the scan runs in the background and posts
// its terminal result back into the session.
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL       string `json:"url"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil
	}

	if err := middleware.ValidateTargetURL(body.URL); err != nil {
		return err
	}
	key := body.SessionID
	if key == "" {
		key = defaultSessionKey
	}
	if err := middleware.ValidateSessionKey(key); err != nil {
		return err
	}

	normalized, err := appscans.NormalizeTarget(body.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	sess, err := r.sessions.CreateOrLoad(req.Context(), key, normalized)
	if err != nil {
		return err
	}

	// Jalankan di background, biar jalan sampai selesai. The request context
	// dies with the response, so the scan runs on its own context.
	rawURL := body.URL
	go func() {
		result := r.scans.Run(context.Background(), rawURL, r.scanOpts)
		if err := r.sessions.ApplyScanResult(context.Background(), key, result); err != nil {
			r.log.WithFields(logrus.Fields{"session": key, "error": err}).Error("failed to store scan result")
		}
	}()

	return writeJSON(w, http.StatusAccepted, map[string]any{
		"scanId": sess.Key,
		"url":    sess.URL,
		"status": "initiated",
	})
}

type statusResponse struct {
	ScanID       string                `json:"scanId"`
	URL          string                `json:"url"`
	ScanResult   *domscans.Result      `json:"scanResult,omitempty"`
	ChatHistory  []domsessions.Message `json:"chatHistory"`
	CreatedAt    time.Time             `json:"createdAt"`
	LastActivity time.Time             `json:"lastActivity"`
}

// GET /api/scan/{id}/status
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) error {
	key := chi.URLParam(req, "id")

	sess, err := r.sessions.Status(req.Context(), key)
	if err != nil {
		return err
	}

	resp := statusResponse{
		ScanID:       sess.Key,
		URL:          sess.URL,
		ChatHistory:  sess.ChatHistory,
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
	}
	if sess.ScanResult != nil {
		resp.ScanResult = sess.ScanResult
	}
	if resp.ChatHistory == nil {
		resp.ChatHistory = []domsessions.Message{}
	}
	return writeJSON(w, http.StatusOK, resp)
}

// POST /api/chat/{scanId}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	key := chi.URLParam(req, "scanId")

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil
	}
	if err := middleware.ValidateChatMessage(body.Message); err != nil {
		return err
	}

	reply, messageID, err := r.sessions.AppendChat(req.Context(), key, middleware.SanitizeString(body.Message))
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]string{
		"message":   reply,
		"messageId": messageID,
	})
}

// GET /api/chat/{scanId}/history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	key := chi.URLParam(req, "scanId")

	history, err := r.sessions.History(req.Context(), key)
	if err != nil {
		return err
	}
	if history == nil {
		history = []domsessions.Message{}
	}
	return writeJSON(w, http.StatusOK, map[string]any{"chatHistory": history})
}
