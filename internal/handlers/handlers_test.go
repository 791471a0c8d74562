package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securekyc/internal/db"
	"securekyc/internal/extract"
	"securekyc/internal/kyc"
	"securekyc/internal/models"
)

type stubExtractor struct {
	fields map[models.DocType]models.ParsedFields
}

func (s stubExtractor) Extract(_ context.Context, doc models.DocType, data []byte) (extract.Result, error) {
	f := s.fields[doc]
	f.DocType = doc
	return extract.Result{Fields: f, RawText: string(data), Debug: []extract.Candidate{}, Score: 250}, nil
}

func newTestHandler(t *testing.T, fields map[models.DocType]models.ParsedFields) (*Handler, *db.MemoryStore, http.Handler) {
	t.Helper()
	store := db.NewMemoryStore()
	svc := kyc.NewService(stubExtractor{fields: fields}, store, nil, nil, nil)
	h := New(svc, store, Options{ShareSecret: []byte("share-secret"), PublicBaseURL: "https://kyc.example.com"}, nil)

	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Post("/extract_aadhaar", h.ExtractAadhaar)
	r.Post("/extract_dl", h.ExtractDrivingLicence)
	r.Post("/validate_document", h.ValidateDocument)
	r.Post("/submit-kyc", h.SubmitKYC)
	r.Post("/analyze", h.Analyze)
	r.Get("/kyc-list", h.KYCList)
	r.Post("/approve/{id}", h.Approve)
	r.Get("/records/{id}/qrcode", h.RecordQRCode)
	r.Post("/records/{id}/share-link", h.GenerateShareLink)
	r.Get("/records/{id}/shared", h.SharedRecord)
	return h, store, r
}

func multipartRequest(t *testing.T, target string, values map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func priyaFields() map[models.DocType]models.ParsedFields {
	return map[models.DocType]models.ParsedFields{
		models.DocAadhaar: {Name: models.Str("Priya Sharma"), DOB: models.Str("12/03/1992"), Gender: models.Str("FEMALE"), IDNumber: models.Str("123456789012")},
		models.DocPAN:     {Name: models.Str("PRIYA SHARMA"), IDNumber: models.Str("ABCDE1234F")},
	}
}

func TestHealthz(t *testing.T) {
	_, _, r := newTestHandler(t, nil)
	rec, body := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestExtractAadhaar(t *testing.T) {
	_, _, r := newTestHandler(t, priyaFields())

	rec, body := serve(r, multipartRequest(t, "/extract_aadhaar", nil, map[string]string{"aadhaar": "img"}))

	require.Equal(t, http.StatusOK, rec.Code)
	data := body["extracted_data"].(map[string]any)
	assert.Equal(t, "Priya Sharma", data["name"])
	assert.Equal(t, "img", body["raw_text"])
	assert.EqualValues(t, 250, body["score"])
}

func TestExtractMissingFile(t *testing.T) {
	_, _, r := newTestHandler(t, nil)

	rec, body := serve(r, multipartRequest(t, "/extract_aadhaar", map[string]string{"x": "y"}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "aadhaar file missing", body["error"])
}

func TestExtractFallsBackToOnlyFile(t *testing.T) {
	_, _, r := newTestHandler(t, nil)

	rec, body := serve(r, multipartRequest(t, "/extract_dl", nil, map[string]string{"Upload": "licence"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "licence", body["raw_text"])
}

func TestExtractDLAcceptsShortFieldName(t *testing.T) {
	_, _, r := newTestHandler(t, nil)

	rec, _ := serve(r, multipartRequest(t, "/extract_dl", nil, map[string]string{"DL": "x", "other": "y"}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractRejectsNonMultipart(t *testing.T) {
	_, _, r := newTestHandler(t, nil)

	rec, _ := serve(r, httptest.NewRequest(http.MethodPost, "/extract_aadhaar", strings.NewReader("{}")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateDocument(t *testing.T) {
	_, _, r := newTestHandler(t, priyaFields())

	rec, body := serve(r, multipartRequest(t, "/validate_document", nil, map[string]string{"file": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "doc_type missing (aadhaar|pan)", body["error"])

	rec, body = serve(r, multipartRequest(t, "/validate_document", map[string]string{"doc_type": "pan"}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file missing", body["error"])

	rec, body = serve(r, multipartRequest(t, "/validate_document", map[string]string{"doc_type": "pan"}, map[string]string{"pan": "x"}))
	require.Equal(t, http.StatusOK, rec.Code)
	parsed := body["parsed"].(map[string]any)
	assert.Equal(t, "pan", parsed["doc_type"])
	assert.Equal(t, "ABCDE1234F", parsed["id_number"])
}

func TestSubmitKYC(t *testing.T) {
	_, _, r := newTestHandler(t, priyaFields())

	rec, body := serve(r, multipartRequest(t, "/submit-kyc",
		map[string]string{"user_name": "Priya Sharma"},
		map[string]string{"aadhaar": "a", "pan": "p"}))

	require.Equal(t, http.StatusOK, rec.Code)
	record := body["record"].(map[string]any)
	assert.Equal(t, "1234-XXXX-9012", record["aadhaar_masked"])
	assert.Equal(t, "Pending", record["status"])
	assert.NotEmpty(t, record["_id"])

	rec, list := httptest.NewRecorder(), []map[string]any{}
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/kyc-list", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "ABCDE-XX4F", list[0]["pan_number"])
}

func TestSubmitKYCErrors(t *testing.T) {
	_, store, r := newTestHandler(t, map[models.DocType]models.ParsedFields{
		models.DocAadhaar: {Name: models.Str("Priya Sharma")},
	})

	rec, body := serve(r, multipartRequest(t, "/submit-kyc", nil, map[string]string{"aadhaar": "a"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "aadhaar and pan files are required")

	rec, body = serve(r, multipartRequest(t, "/submit-kyc", nil, map[string]string{"aadhaar": "a", "pan": "p"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing fields", body["error"])
	assert.Equal(t, []any{"dob", "gender"}, body["missing"])

	recs, _ := store.ListRecords(context.Background())
	assert.Empty(t, recs)
}

func TestAnalyzeWithoutDocuments(t *testing.T) {
	_, store, r := newTestHandler(t, nil)

	rec, body := serve(r, multipartRequest(t, "/analyze", map[string]string{"user_name": "Priya", "mobile": "123"}, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 30, body["fraud_score"])
	assert.Equal(t, "LOW", body["risk_level"])
	assert.Equal(t, "APPROVE", body["decision"])
	assert.Nil(t, body["aadhaar_parsed"])
	logs, _ := store.ListLogs(context.Background())
	assert.Len(t, logs, 1)
}

func TestApproveUnknownRecord(t *testing.T) {
	_, _, r := newTestHandler(t, nil)

	rec, body := serve(r, httptest.NewRequest(http.MethodPost, "/approve/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["error"])
}

func seedRecord(t *testing.T, store *db.MemoryStore) models.IdentityRecord {
	t.Helper()
	rec, err := store.InsertRecord(context.Background(), kyc.DemoRecord())
	require.NoError(t, err)
	return rec
}

func TestRecordQRCode(t *testing.T) {
	_, store, r := newTestHandler(t, nil)
	saved := seedRecord(t, store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/"+saved.ID+"/qrcode", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, qrSize, img.Bounds().Dx())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/missing/qrcode", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShareLinkRoundTrip(t *testing.T) {
	_, store, r := newTestHandler(t, nil)
	saved := seedRecord(t, store)

	rec, body := serve(r, httptest.NewRequest(http.MethodPost, "/records/"+saved.ID+"/share-link",
		strings.NewReader(`{"expires_in_minutes":"30"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	link, err := url.Parse(body["shareable_url"].(string))
	require.NoError(t, err)
	assert.Equal(t, "kyc.example.com", link.Host)
	assert.Equal(t, "/records/"+saved.ID+"/shared", link.Path)
	expires, err := time.Parse(time.RFC3339, body["expires_at"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expires, time.Minute)

	rec, body = serve(r, httptest.NewRequest(http.MethodGet, link.RequestURI(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	shared := body["record"].(map[string]any)
	assert.Equal(t, "Demo User", shared["user_name"])
	assert.Equal(t, "1234-XXXX-5678", shared["aadhaar_masked"])
	assert.NotContains(t, shared, "aadhaar_ocr")

	other := seedRecord(t, store)
	rec, _ = serve(r, httptest.NewRequest(http.MethodGet, "/records/"+other.ID+"/shared?"+link.RawQuery, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(r, httptest.NewRequest(http.MethodGet, "/records/"+saved.ID+"/shared?token=bogus", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(r, httptest.NewRequest(http.MethodGet, "/records/"+saved.ID+"/shared", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShareLinkValidation(t *testing.T) {
	_, store, r := newTestHandler(t, nil)
	saved := seedRecord(t, store)
	target := "/records/" + saved.ID + "/share-link"

	for name, payload := range map[string]string{
		"too long":   `{"expires_in_minutes": 20000}`,
		"zero":       `{"expires_in_minutes": 0}`,
		"not number": `{"expires_in_minutes": true}`,
		"bad json":   `{`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, _ := serve(r, httptest.NewRequest(http.MethodPost, target, strings.NewReader(payload)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec, _ := serve(r, httptest.NewRequest(http.MethodPost, "/records/missing/share-link", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShareLinkNeedsSecret(t *testing.T) {
	store := db.NewMemoryStore()
	h := New(kyc.NewService(stubExtractor{}, store, nil, nil, nil), store, Options{}, nil)
	saved := seedRecord(t, store)

	r := chi.NewRouter()
	r.Post("/records/{id}/share-link", h.GenerateShareLink)
	rec, _ := serve(r, httptest.NewRequest(http.MethodPost, "/records/"+saved.ID+"/share-link", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
