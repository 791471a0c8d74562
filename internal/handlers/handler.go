// Package handlers exposes the KYC service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"securekyc/internal/db"
	"securekyc/internal/kyc"
)

// Options carries the HTTP-facing settings.
type Options struct {
	MaxUploadBytes int64
	ShareSecret    []byte
	ShareTTL       time.Duration
	PublicBaseURL  string
}

// Handler serves every route. Construct with New.
type Handler struct {
	svc   *kyc.Service
	store db.Store
	opts  Options
	log   *zap.Logger
}

// New builds a Handler. store is only used for health checks.
func New(svc *kyc.Service, store db.Store, opts Options, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.ShareTTL <= 0 {
		opts.ShareTTL = 15 * time.Minute
	}
	return &Handler{svc: svc, store: store, opts: opts, log: log.Named("handlers")}
}

func writeJSONResp(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResp(w, status, map[string]any{"error": msg})
}

// fail maps service errors to responses: caller mistakes are 400, unknown
// records 404, anything else 500.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var inErr *kyc.InputError
	switch {
	case errors.As(err, &inErr):
		body := map[string]any{"error": inErr.Message}
		if len(inErr.Missing) > 0 {
			body["missing"] = inErr.Missing
		}
		if inErr.Note != "" {
			body["note"] = inErr.Note
		}
		writeJSONResp(w, http.StatusBadRequest, body)
	case errors.Is(err, db.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Home answers GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSONResp(w, http.StatusOK, map[string]any{"message": "KYC backend running"})
}

// Healthz pings the record store.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn("store ping failed", zap.Error(err))
		writeJSONResp(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"status": "ok"})
}
