// Package preview owns composed HTML documents between the moment a run
// produces them and the moment the shell releases them.
//
// Documents are created on demand and kept until Release (or Close) is
// called; nothing expires on its own.
package preview

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle refers to a registered document.
type Handle struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Size      int       `json:"size"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type document struct {
	handle Handle
	html   string
}

// Registry stores documents by id. Safe for concurrent use.
type Registry struct {
	basePath string

	mu   sync.RWMutex
	docs map[string]*document
}

// NewRegistry returns an empty Registry whose handle URLs live under basePath.
func NewRegistry(basePath string) *Registry {
	return &Registry{basePath: basePath, docs: make(map[string]*document)}
}

// Create registers html and returns its handle. name is informational.
func (r *Registry) Create(html, name string) Handle {
	id := uuid.New().String()
	h := Handle{
		ID:        id,
		URL:       r.basePath + "/" + id,
		Size:      len(html),
		Name:      name,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.docs[id] = &document{handle: h, html: html}
	r.mu.Unlock()
	return h
}

// Get returns the document registered under id.
func (r *Registry) Get(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return "", false
	}
	return d.html, true
}

// Release drops the document registered under id. It reports whether a
// document was released.
func (r *Registry) Release(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	return true
}

// List returns the handles of all live documents, oldest first.
func (r *Registry) List() []Handle {
	r.mu.RLock()
	out := make([]Handle, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d.handle)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of live documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Close releases every document.
func (r *Registry) Close() {
	r.mu.Lock()
	r.docs = make(map[string]*document)
	r.mu.Unlock()
}
