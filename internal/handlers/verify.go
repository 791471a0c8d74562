package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"securekyc/internal/kyc"
	"securekyc/internal/models"
)

func (h *Handler) extract(w http.ResponseWriter, r *http.Request, doc models.DocType, missing string, fields ...string) {
	if !h.parseUpload(w, r) {
		return
	}
	data, err := h.readSingleFile(r, fields...)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, missing)
		return
	}
	h.log.Info("extracting document", zap.String("doc_type", string(doc)), zap.Int("bytes", len(data)))

	res, err := h.svc.Extract(r.Context(), doc, data)
	if err != nil {
		h.fail(w, "extract "+string(doc), err)
		return
	}
	writeJSONResp(w, http.StatusOK, res)
}

// ExtractAadhaar: POST /extract_aadhaar, file field "aadhaar".
func (h *Handler) ExtractAadhaar(w http.ResponseWriter, r *http.Request) {
	h.extract(w, r, models.DocAadhaar, "aadhaar file missing", "aadhaar")
}

// ExtractPAN: POST /extract_pan, file field "pan".
func (h *Handler) ExtractPAN(w http.ResponseWriter, r *http.Request) {
	h.extract(w, r, models.DocPAN, "pan file missing", "pan")
}

// ExtractDrivingLicence: POST /extract_dl, file field "driving_license" or "dl".
func (h *Handler) ExtractDrivingLicence(w http.ResponseWriter, r *http.Request) {
	h.extract(w, r, models.DocDrivingLicence, "driving_license file missing", "driving_license", "dl")
}

// ValidateDocument: POST /validate_document with doc_type aadhaar|pan and a
// file in "file" or a field named after the doc type. Anything other than
// aadhaar is read as a PAN card.
func (h *Handler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}
	docType := formValue(r, "doc_type")
	if docType == "" {
		writeError(w, http.StatusBadRequest, "doc_type missing (aadhaar|pan)")
		return
	}
	data, err := readFile(r, "file", docType)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "file missing")
		return
	}

	doc := models.DocPAN
	if strings.EqualFold(docType, "aadhaar") {
		doc = models.DocAadhaar
	}
	res, err := h.svc.Extract(r.Context(), doc, data)
	if err != nil {
		h.fail(w, "validate_document", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{
		"parsed": res.Fields,
		"raw":    res.RawText,
		"debug":  res.Debug,
	})
}

// VerifyIdentity: POST /verify_identity with user_name and optional aadhaar,
// pan and selfie files.
func (h *Handler) VerifyIdentity(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}
	in := kyc.VerifyInput{UserName: formValue(r, "user_name")}
	var err error
	if in.Aadhaar, err = readFile(r, "aadhaar"); err != nil {
		h.fail(w, "verify_identity", err)
		return
	}
	if in.PAN, err = readFile(r, "pan"); err != nil {
		h.fail(w, "verify_identity", err)
		return
	}
	if in.Selfie, err = readFile(r, "selfie"); err != nil {
		h.fail(w, "verify_identity", err)
		return
	}

	out, err := h.svc.VerifyIdentity(r.Context(), in)
	if err != nil {
		h.fail(w, "verify_identity", err)
		return
	}
	writeJSONResp(w, http.StatusOK, out)
}
