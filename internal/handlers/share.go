package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	shareIssuer    = "securekyc-share"
	maxShareTTL    = 7 * 24 * time.Hour
	invalidLinkMsg = "This review link is invalid or has expired."
)

type shareClaims struct {
	RecordID string `json:"record_id"`
	jwt.RegisteredClaims
}

type shareLinkResp struct {
	ShareableURL string    `json:"shareable_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// shareTTL reads expires_in_minutes from an optional JSON body. The value
// may be a number or a numeric string.
func (h *Handler) shareTTL(r *http.Request) (time.Duration, error) {
	var payload map[string]any
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return 0, errors.New("invalid json")
		}
	}
	v, ok := payload["expires_in_minutes"]
	if !ok {
		return h.opts.ShareTTL, nil
	}
	var minutes int
	switch t := v.(type) {
	case float64:
		minutes = int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, errors.New("expires_in_minutes must be a number")
		}
		minutes = n
	default:
		return 0, errors.New("expires_in_minutes must be a number")
	}
	ttl := time.Duration(minutes) * time.Minute
	if ttl < time.Minute || ttl > maxShareTTL {
		return 0, fmt.Errorf("expires_in_minutes must be between 1 and %d", int(maxShareTTL.Minutes()))
	}
	return ttl, nil
}

// GenerateShareLink: POST /records/{id}/share-link (admin). Signs a
// short-lived token that lets a third party read the masked record.
func (h *Handler) GenerateShareLink(w http.ResponseWriter, r *http.Request) {
	if len(h.opts.ShareSecret) == 0 {
		writeError(w, http.StatusInternalServerError, "server misconfigured")
		return
	}
	id := chi.URLParam(r, "id")
	ttl, err := h.shareTTL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.svc.Record(r.Context(), id); err != nil {
		h.fail(w, "share-link", err)
		return
	}

	now := time.Now()
	exp := now.Add(ttl)
	claims := shareClaims{
		RecordID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    shareIssuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.opts.ShareSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign share token")
		return
	}

	link := fmt.Sprintf("%s/records/%s/shared?token=%s", h.baseURL(r), url.PathEscape(id), url.QueryEscape(signed))
	writeJSONResp(w, http.StatusOK, shareLinkResp{ShareableURL: link, ExpiresAt: exp.UTC()})
}

// SharedRecord: GET /records/{id}/shared?token=... returns a masked record
// summary to holders of a valid share token.
func (h *Handler) SharedRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" || len(h.opts.ShareSecret) == 0 {
		writeError(w, http.StatusUnauthorized, invalidLinkMsg)
		return
	}

	claims := &shareClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.opts.ShareSecret, nil
	}, jwt.WithIssuer(shareIssuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.RecordID == "" {
		writeError(w, http.StatusUnauthorized, invalidLinkMsg)
		return
	}
	if claims.RecordID != id {
		writeError(w, http.StatusForbidden, "forbidden: id mismatch")
		return
	}

	rec, err := h.svc.Record(r.Context(), id)
	if err != nil {
		h.fail(w, "shared record", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{
		"record": map[string]any{
			"id":             rec.ID,
			"user_name":      rec.UserName,
			"aadhaar_masked": rec.AadhaarMasked,
			"pan_masked":     rec.PANMasked,
			"status":         rec.Status,
			"risk_level":     rec.Fraud.RiskLevel,
			"fraud_score":    rec.Fraud.FraudScore,
			"submitted_at":   rec.CreatedAt,
		},
		"valid_until": claims.ExpiresAt.Time.UTC(),
	})
}
