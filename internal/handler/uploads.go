package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// media fields accepted by the upload endpoint, mapped to loan columns.
var mediaFields = map[string]string{
	"photo":     "photo_path",
	"id_front":  "id_front_path",
	"id_back":   "id_back_path",
	"signature": "signature_path",
}

// UploadLoanMedia receives a multipart file for one of a loan's media
// slots and stores its path on the loan.
func (h *Handler) UploadLoanMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	column, ok := mediaFields[mux.Vars(r)["field"]]
	if !ok {
		http.Error(w, "unknown media field", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		http.Error(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	name := fmt.Sprintf("loan%d-%s-%s%s", id, mux.Vars(r)["field"], uuid.NewString(), ext)
	if err := h.saveUpload(name, file); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.svc.AttachLoanMedia(id, column, name); err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, name))
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": name})
}

// UploadSignature receives a base64 data-URL PNG drawn on the signature
// pad and stores it against the loan.
func (h *Handler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req struct {
		DataURL string `json:"data_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	raw := req.DataURL
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:image/") {
		raw = raw[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(data) == 0 {
		http.Error(w, "invalid signature data", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "signature too large", http.StatusBadRequest)
		return
	}

	name := fmt.Sprintf("loan%d-signature-%s.png", id, uuid.NewString())
	if err := h.saveUpload(name, strings.NewReader(string(data))); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.svc.AttachLoanMedia(id, "signature_path", name); err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, name))
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": name})
}

// ServeUpload streams a stored file back. Names are generated server side,
// so anything with a path separator is rejected outright.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.uploadDir, name))
}

func (h *Handler) saveUpload(name string, src io.Reader) error {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write upload file: %w", err)
	}
	return nil
}
