package preview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestCreateGetRelease(t *testing.T) {
	reg := NewRegistry(BasePath)

	h := reg.Create("<html>one</html>", "one.zip")
	if h.ID == "" {
		t.Fatal("expected an id")
	}
	if h.URL != BasePath+"/"+h.ID {
		t.Errorf("URL = %q", h.URL)
	}
	if h.Size != len("<html>one</html>") || h.Name != "one.zip" {
		t.Errorf("handle = %+v", h)
	}

	html, ok := reg.Get(h.ID)
	if !ok || html != "<html>one</html>" {
		t.Errorf("Get = %q, %v", html, ok)
	}

	if !reg.Release(h.ID) {
		t.Error("Release should report true for a live document")
	}
	if _, ok := reg.Get(h.ID); ok {
		t.Error("document should be gone after Release")
	}
	if reg.Release(h.ID) {
		t.Error("second Release should report false")
	}
}

func TestIDsAreUnique(t *testing.T) {
	reg := NewRegistry(BasePath)
	a := reg.Create("same", "")
	b := reg.Create("same", "")
	if a.ID == b.ID {
		t.Error("identical documents must get distinct ids")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestClose(t *testing.T) {
	reg := NewRegistry(BasePath)
	reg.Create("a", "")
	reg.Create("b", "")
	reg.Close()
	if reg.Len() != 0 || len(reg.List()) != 0 {
		t.Error("Close should release everything")
	}
}

func TestConcurrentUse(t *testing.T) {
	reg := NewRegistry(BasePath)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := reg.Create("doc", "")
			reg.Get(h.ID)
			reg.List()
			reg.Release(h.ID)
		}()
	}
	wg.Wait()
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRoutes(t *testing.T) {
	reg := NewRegistry(BasePath)
	h := reg.Create("<html><body>hello</body></html>", "")

	r := chi.NewRouter()
	RegisterRoutes(r, reg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, h.URL, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("serve: status %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "<html><body>hello</body></html>" {
		t.Errorf("body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, h.URL, nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("release: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, h.URL, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("serve after release: status %d, want 404", w.Code)
	}
}
