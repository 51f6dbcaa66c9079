package preview

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// BasePath is where documents are served.
const BasePath = "/preview"

// RegisterRoutes mounts document endpoints under BasePath and a listing
// under /api/previews.
func RegisterRoutes(r chi.Router, reg *Registry) {
	r.Get(BasePath+"/{id}", handleServe(reg))
	r.Delete(BasePath+"/{id}", handleRelease(reg))
	r.Get("/api/previews", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reg.List())
	})
}

func handleServe(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html, ok := reg.Get(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(html)))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
	}
}

func handleRelease(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !reg.Release(chi.URLParam(r, "id")) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
