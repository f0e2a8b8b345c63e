package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jdmdelivery/pawn-service/internal/repository"
	"github.com/jdmdelivery/pawn-service/internal/service"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return NewHandler(nil, log, t.TempDir())
}

func TestWriteErrorMapping(t *testing.T) {
	h := testHandler(t)

	cases := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrPrincipalExceeded, http.StatusConflict},
		{service.ErrLoanNotActive, http.StatusConflict},
		{service.ErrInvalidAmount, http.StatusBadRequest},
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrTokenInvalid, http.StatusBadRequest},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", repository.ErrNotFound), http.StatusNotFound}, // repo-level wrap still maps
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.writeError(rec, c.err)
		if rec.Code != c.want {
			t.Errorf("writeError(%v) status = %d, want %d", c.err, rec.Code, c.want)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("writeError(%v) content type = %q", c.err, ct)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate(""); err != nil || d != nil {
		t.Errorf("parseDate(\"\") = %v, %v", d, err)
	}
	d, err := parseDate("2026-03-15")
	if err != nil || d == nil {
		t.Fatalf("parseDate: %v", err)
	}
	if d.Year() != 2026 || int(d.Month()) != 3 || d.Day() != 15 {
		t.Errorf("parseDate = %v", d)
	}
	if _, err := parseDate("15/03/2026"); err == nil {
		t.Error("expected error for wrong date format")
	}
}

func TestServeUploadRejectsTraversal(t *testing.T) {
	h := testHandler(t)
	r := mux.NewRouter()
	// SkipClean keeps mux from 301-redirecting "/uploads/.." to "/" so the
	// request actually reaches the handler's own traversal guard.
	r.SkipClean(true)
	r.HandleFunc("/uploads/{name}", h.ServeUpload)

	for _, name := range []string{"..", "a%5Cb.png"} {
		req := httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("name %q: status = %d, want %d", name, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestServeUploadServesFile(t *testing.T) {
	h := testHandler(t)
	if err := os.WriteFile(filepath.Join(h.uploadDir, "x.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/uploads/{name}", h.ServeUpload)
	req := httptest.NewRequest(http.MethodGet, "/uploads/x.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
