package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securekyc/internal/db"
	"securekyc/internal/extract"
	"securekyc/internal/handlers"
	"securekyc/internal/kyc"
	"securekyc/internal/middleware"
	"securekyc/internal/models"
)

type nopExtractor struct{}

func (nopExtractor) Extract(_ context.Context, doc models.DocType, _ []byte) (extract.Result, error) {
	return extract.Result{Fields: models.ParsedFields{DocType: doc}}, nil
}

func newTestRouter(t *testing.T, secret []byte) (http.Handler, models.IdentityRecord) {
	t.Helper()
	store := db.NewMemoryStore()
	svc := kyc.NewService(nopExtractor{}, store, nil, nil, nil)
	seeded, err := svc.SeedDemo(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)
	recs, err := svc.Records(context.Background())
	require.NoError(t, err)

	h := handlers.New(svc, store, handlers.Options{ShareSecret: secret}, nil)
	return New(h, Options{AllowedOrigins: []string{"https://app.example.com"}, AdminSecret: secret}, nil), recs[0]
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t, []byte("admin"))

	for _, path := range []string{"/", "/healthz", "/kyc-list", "/get_kyc_data", "/verification-dashboard", "/logs", "/alerts", "/audit-trail"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", path)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	secret := []byte("admin")
	r, rec0 := newTestRouter(t, secret)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approve/"+rec0.ID, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := middleware.IssueAdminToken(secret, "reviewer", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/approve/"+rec0.ID, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesOpenWithoutSecret(t *testing.T) {
	r, rec0 := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reject/"+rec0.ID, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/submit-kyc", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/submit-kyc", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRecordQRCode(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/unknown/qrcode", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
