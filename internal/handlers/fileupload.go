package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// parseUpload bounds the body and parses a multipart form.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form or file too large")
		return false
	}
	return true
}

func fileKeys(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}
	keys := make([]string, 0, len(r.MultipartForm.File))
	for k := range r.MultipartForm.File {
		keys = append(keys, k)
	}
	return keys
}

// lookupFile finds the first of names among the uploaded files, matching
// field names case-insensitively.
func lookupFile(r *http.Request, names ...string) (multipart.File, string, bool) {
	keys := fileKeys(r)
	for _, name := range names {
		if f, _, err := r.FormFile(name); err == nil {
			return f, name, true
		}
		for _, k := range keys {
			if strings.EqualFold(k, name) {
				if f, _, err := r.FormFile(k); err == nil {
					return f, k, true
				}
			}
		}
	}
	return nil, "", false
}

// readFile reads one of names. Missing fields yield nil without error.
func readFile(r *http.Request, names ...string) ([]byte, error) {
	f, name, ok := lookupFile(r, names...)
	if !ok {
		return nil, nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// readSingleFile is readFile for endpoints taking one document: when none
// of names is present the only uploaded file is used.
func (h *Handler) readSingleFile(r *http.Request, names ...string) ([]byte, error) {
	data, err := readFile(r, names...)
	if err != nil || data != nil {
		return data, err
	}
	keys := fileKeys(r)
	if len(keys) != 1 {
		return nil, nil
	}
	h.log.Debug("using fallback file field", zap.String("field", keys[0]), zap.Strings("expected", names))
	return readFile(r, keys[0])
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
