package history

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ziadkadry99/ziprun/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

// fakeClock returns successive instants one second apart.
func fakeClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	modified := time.UnixMilli(1700000000000)

	meta, err := store.Save(ctx, Upload{Name: "app.zip", LastModified: modified, Data: []byte("PK-data")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if meta.ID != "app.zip-7-1700000000000" {
		t.Errorf("ID = %q, want app.zip-7-1700000000000", meta.ID)
	}
	if meta.Size != 7 || meta.LastModified != 1700000000000 {
		t.Errorf("meta = %+v", meta)
	}

	data, ok, err := store.Load(ctx, meta.ID)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(data, []byte("PK-data")) {
		t.Errorf("Load = %q, want PK-data", data)
	}
}

func TestSaveDefaults(t *testing.T) {
	store := setupStore(t)
	now := time.UnixMilli(1710000000000)
	store.now = func() time.Time { return now }

	meta, err := store.Save(context.Background(), Upload{Data: []byte("x")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if meta.Name != DefaultName {
		t.Errorf("Name = %q, want %q", meta.Name, DefaultName)
	}
	if meta.LastModified != now.UnixMilli() {
		t.Errorf("LastModified = %d, want %d", meta.LastModified, now.UnixMilli())
	}
}

func TestSaveSameMetadataOverwrites(t *testing.T) {
	store := setupStore(t)
	store.now = fakeClock(time.UnixMilli(1700000000000))
	ctx := context.Background()
	modified := time.UnixMilli(1600000000000)

	first, err := store.Save(ctx, Upload{Name: "app.zip", LastModified: modified, Data: []byte("aaaa")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Save(ctx, Upload{Name: "other.zip", LastModified: modified, Data: []byte("b")}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := store.Save(ctx, Upload{Name: "app.zip", LastModified: modified, Data: []byte("cccc")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("IDs differ: %q vs %q", first.ID, second.ID)
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(metas), metas)
	}
	if metas[0].ID != second.ID {
		t.Errorf("re-saved archive should be newest, got %+v", metas)
	}
	if metas[0].CreatedAt != second.CreatedAt {
		t.Errorf("CreatedAt = %d, want %d", metas[0].CreatedAt, second.CreatedAt)
	}

	data, _, _ := store.Load(ctx, second.ID)
	if string(data) != "cccc" {
		t.Errorf("Load = %q, want overwritten content", data)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := setupStore(t)
	store.now = fakeClock(time.UnixMilli(1700000000000))
	ctx := context.Background()

	for _, name := range []string{"a.zip", "b.zip", "c.zip"} {
		if _, err := store.Save(ctx, Upload{Name: name, LastModified: time.UnixMilli(1), Data: []byte(name)}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"c.zip", "b.zip", "a.zip"}
	for i, m := range metas {
		if m.Name != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, m.Name, want[i])
		}
	}
}

func TestListEmpty(t *testing.T) {
	metas, err := setupStore(t).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if metas == nil || len(metas) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", metas)
	}
}

func TestLoadUnknown(t *testing.T) {
	data, ok, err := setupStore(t).Load(context.Background(), "nope")
	if err != nil || ok || data != nil {
		t.Errorf("Load(nope) = %v, %v, %v; want nil, false, nil", data, ok, err)
	}
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	meta, err := store.Save(ctx, Upload{Name: "a.zip", LastModified: time.UnixMilli(1), Data: []byte("a")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, meta.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Load(ctx, meta.ID); ok {
		t.Error("archive should be gone after Delete")
	}
	if err := store.Delete(ctx, meta.ID); err != nil {
		t.Errorf("deleting twice should not fail: %v", err)
	}
}

func TestRoutes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	meta, err := store.Save(ctx, Upload{Name: "app.zip", LastModified: time.UnixMilli(5), Data: []byte("zipbytes")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	// List.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var metas []Meta
	if err := json.Unmarshal(w.Body.Bytes(), &metas); err != nil {
		t.Fatalf("list: unmarshal: %v", err)
	}
	if len(metas) != 1 || metas[0].ID != meta.ID {
		t.Errorf("list = %+v", metas)
	}

	// Download.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history/"+meta.ID, nil))
	if w.Code != http.StatusOK || w.Body.String() != "zipbytes" {
		t.Errorf("download: status %d body %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("download: Content-Type = %q", ct)
	}

	// Delete then 404.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/history/"+meta.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history/"+meta.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("download after delete: status %d, want 404", w.Code)
	}
}
