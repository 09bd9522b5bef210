package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KaramelBytes/csvlens/internal/dashboard"
	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/render"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var notices []dashboard.Message
	if r.URL.Query().Get("uploaded") == "1" && sess.Dataset != nil {
		notices = append(notices, dashboard.Message{Level: dashboard.LevelSuccess, Text: "File uploaded successfully: " + sess.FileName})
	}
	s.renderPage(w, http.StatusOK, sess.Dataset, parseSelection(r.URL.Query(), s.opt.PreviewRows), notices)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	fail := func(status int, text string) {
		s.log.Warn("upload rejected", "session", sess.ID, "reason", text)
		msg := dashboard.Message{Level: dashboard.LevelError, Text: text}
		s.renderPage(w, status, sess.Dataset, dashboard.Selection{PreviewRows: s.opt.PreviewRows}, []dashboard.Message{msg})
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(s.opt.MaxUploadBytes); err != nil {
		fail(http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload too large or malformed (limit %d MB)", s.opt.MaxUploadBytes>>20))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(http.StatusBadRequest, "Choose a file to upload")
		return
	}
	defer file.Close()
	if header.Size > s.opt.MaxUploadBytes {
		fail(http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (limit %d MB)", s.opt.MaxUploadBytes>>20))
		return
	}

	ds, err := dataset.Load(header.Filename, file, s.opt.Load)
	if err != nil {
		text := "Could not read the file"
		if errors.Is(err, dataset.ErrEmptyOrUnparsable) {
			text = "The uploaded file is empty or could not be parsed"
		}
		fail(http.StatusBadRequest, fmt.Sprintf("%s: %v", text, err))
		return
	}
	s.store.Replace(sess.ID, ds)
	s.log.Info("dataset loaded", "session", sess.ID, "file", ds.Name, "rows", ds.Len(), "columns", len(ds.Columns()))
	http.Redirect(w, r, "/?uploaded=1", http.StatusSeeOther)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess.Dataset == nil {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	format, err := render.ParseFormat(q.Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out := dashboard.Evaluate(sess.Dataset, parseSelection(q, 0))
	if out.Request == nil {
		http.Error(w, out.Err.Error(), http.StatusUnprocessableEntity)
		return
	}
	opt := s.opt.Render
	opt.Format = format
	var buf bytes.Buffer
	if err := render.Render(&buf, out.Request, opt); err != nil {
		if errors.Is(err, render.ErrNoData) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.log.Error("chart render failed", "session", sess.ID, "kind", out.Request.Kind, "error", err)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess.Dataset == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset loaded"})
		return
	}
	out := dashboard.Evaluate(sess.Dataset, parseSelection(r.URL.Query(), s.opt.PreviewRows))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"sessions":  s.store.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
