package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"securekyc/internal/kyc"
)

// SubmitKYC: POST /submit-kyc. Both aadhaar and pan files are required.
func (h *Handler) SubmitKYC(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}
	in := kyc.SubmitInput{
		UserName:      formValue(r, "user_name"),
		DOB:           formValue(r, "dob"),
		Gender:        formValue(r, "gender"),
		AadhaarNumber: formValue(r, "aadhaar_number"),
		PANNumber:     formValue(r, "pan_number"),
	}
	var err error
	if in.Aadhaar, err = readFile(r, "aadhaar"); err != nil {
		h.fail(w, "submit-kyc", err)
		return
	}
	if in.PAN, err = readFile(r, "pan"); err != nil {
		h.fail(w, "submit-kyc", err)
		return
	}

	rec, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		h.fail(w, "submit-kyc", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"message": "KYC saved", "record": rec})
}

// Analyze: POST /analyze. All documents are optional; a driving licence
// takes part in name checks only.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}
	in := kyc.AnalyzeInput{
		UserName:   formValue(r, "user_name"),
		DOB:        formValue(r, "dob"),
		Gender:     formValue(r, "gender"),
		Mobile:     formValue(r, "mobile"),
		PANNumber:  formValue(r, "pan_number"),
		DeviceInfo: r.FormValue("device_info"),
	}
	var err error
	if in.Aadhaar, err = readFile(r, "aadhaar"); err != nil {
		h.fail(w, "analyze", err)
		return
	}
	if in.PAN, err = readFile(r, "pan"); err != nil {
		h.fail(w, "analyze", err)
		return
	}
	if in.DL, err = readFile(r, "driving_license", "dl"); err != nil {
		h.fail(w, "analyze", err)
		return
	}

	out, err := h.svc.Analyze(r.Context(), in)
	if err != nil {
		h.fail(w, "analyze", err)
		return
	}
	writeJSONResp(w, http.StatusOK, out)
}

// GetKYCData: GET /get_kyc_data.
func (h *Handler) GetKYCData(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Records(r.Context())
	if err != nil {
		h.fail(w, "get_kyc_data", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"records": recs})
}

// KYCList: GET /kyc-list.
func (h *Handler) KYCList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, "kyc-list", err)
		return
	}
	writeJSONResp(w, http.StatusOK, items)
}

// VerificationDashboard: GET /verification-dashboard.
func (h *Handler) VerificationDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.fail(w, "verification-dashboard", err)
		return
	}
	writeJSONResp(w, http.StatusOK, d)
}

// Logs: GET /logs.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.Logs(r.Context())
	if err != nil {
		h.fail(w, "logs", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"logs": logs})
}

// Alerts: GET /alerts.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.Alerts(r.Context())
	if err != nil {
		h.fail(w, "alerts", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// AuditTrail: GET /audit-trail, newest first.
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.AuditTrail(r.Context())
	if err != nil {
		h.fail(w, "audit-trail", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"events": events})
}

// Approve: POST /approve/{id}.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Approve(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "approve", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"ok": true})
}

// Reject: POST /reject/{id}.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "reject", err)
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"ok": true})
}
