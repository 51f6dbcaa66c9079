package entry

import (
	"errors"
	"testing"

	"github.com/ziadkadry99/ziprun/internal/archive"
	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
)

func files(pathsAndContents ...string) *archive.Files {
	var entries []archive.Entry
	for i := 0; i < len(pathsAndContents); i += 2 {
		entries = append(entries, archive.Entry{Path: pathsAndContents[i], Text: pathsAndContents[i+1]})
	}
	return archive.FromEntries(entries)
}

func TestResolve(t *testing.T) {
	f := files(
		"index.tsx", "export default 1;",
		"index.html", `<html><head></head><body><script type="module" src="/index.tsx"></script></body></html>`,
	)

	e, err := Resolve(f)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.DocumentPath != "index.html" {
		t.Errorf("DocumentPath = %q, want index.html", e.DocumentPath)
	}
	if e.ModulePath != "index.tsx" {
		t.Errorf("ModulePath = %q, want index.tsx", e.ModulePath)
	}
}

func TestFindDocumentCaseInsensitiveFirstMatch(t *testing.T) {
	f := files(
		"README.md", "hi",
		"app/INDEX.HTML", "<html></html>",
		"index.html", "<html></html>",
	)

	got, err := FindDocument(f)
	if err != nil {
		t.Fatalf("FindDocument: %v", err)
	}
	if got != "app/INDEX.HTML" {
		t.Errorf("FindDocument = %q, want first match app/INDEX.HTML", got)
	}
}

func TestFindDocumentMissing(t *testing.T) {
	tests := []struct {
		name  string
		files *archive.Files
	}{
		{"empty", files()},
		{"no html", files("index.tsx", "1")},
		{"other html", files("main.html", "<html></html>", "index.htm", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.files)
			if !errors.Is(err, rerrors.ErrEntryDocumentNotFound) {
				t.Errorf("expected ErrEntryDocumentNotFound, got %v", err)
			}
		})
	}
}

func TestResolveNoModuleScript(t *testing.T) {
	f := files("index.html", `<html><head><script src="/index.tsx"></script></head></html>`)

	_, err := Resolve(f)
	if !errors.Is(err, rerrors.ErrEntryPointNotFound) {
		t.Errorf("expected ErrEntryPointNotFound, got %v", err)
	}
}

func TestExtractModulePath(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{"leading slash", `<script type="module" src="/index.tsx"></script>`, "index.tsx", true},
		{"relative", `<script type="module" src="src/main.tsx"></script>`, "src/main.tsx", true},
		{"extra attributes", `<script defer type="module" crossorigin src="/main.ts" data-x="1"></script>`, "main.ts", true},
		{"upper case", `<SCRIPT TYPE="module" SRC="/App.tsx"></SCRIPT>`, "App.tsx", true},
		{"first of many", `<script type="module" src="/a.tsx"></script><script type="module" src="/b.tsx"></script>`, "a.tsx", true},
		{"only one slash stripped", `<script type="module" src="//cdn/x.ts"></script>`, "/cdn/x.ts", true},
		{"src before type", `<script src="/index.tsx" type="module"></script>`, "", false},
		{"single quotes", `<script type='module' src='/index.tsx'></script>`, "", false},
		{"classic script", `<script src="/index.tsx"></script>`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractModulePath(tt.html)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ExtractModulePath() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
