package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
	"github.com/ziadkadry99/ziprun/internal/history"
	"github.com/ziadkadry99/ziprun/internal/logging"
)

// FormField is the multipart field carrying the archive.
const FormField = "archive"

// errorResponse is the body returned when a run fails.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// RegisterRoutes adds the run endpoints to the given router.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/run", svc.handleUpload)
	r.Post("/api/history/{id}/run", svc.handleHistoryRun)
	r.Get("/ws/run", svc.handleWebSocket)
}

func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("archive exceeds %d bytes", s.maxUpload), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(FormField)
	if err != nil {
		http.Error(w, "missing "+FormField+" field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "reading upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	var result Result
	if r.FormValue("save") == "true" {
		up := history.Upload{Name: header.Filename, Data: data}
		if ms, err := strconv.ParseInt(r.FormValue("lastModified"), 10, 64); err == nil && ms > 0 {
			up.LastModified = time.UnixMilli(ms)
		}
		meta, err := s.Save(r.Context(), up)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		result.Archive = meta
	}

	h, err := s.Execute(r.Context(), data, header.Filename, nil)
	if err != nil {
		writeRunError(w, err)
		return
	}
	result.Preview = h
	writeJSON(w, http.StatusCreated, result)
}

func (s *Service) handleHistoryRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	meta, ok, err := s.history.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	data, ok, err := s.history.Load(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	h, err := s.Execute(r.Context(), data, meta.Name, nil)
	if err != nil {
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Result{Preview: h, Archive: meta})
}

// writeRunError reports stage failures as 422 and anything else as 500.
func writeRunError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if isStageError(err) {
		status = http.StatusUnprocessableEntity
	} else {
		logging.Error("run failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: rerrors.KindName(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
