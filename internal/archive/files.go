package archive

import "strings"

// Entry is one decoded archive member.
type Entry struct {
	Path string
	Text string
}

// Files maps normalized archive paths to their text content. Iteration
// follows the order members appear in the archive. A Files value is not
// modified after construction, so it is safe for concurrent readers.
type Files struct {
	paths   []string
	content map[string]string
}

// FromEntries builds a Files from decoded entries. Paths are normalized;
// a repeated path keeps its first position and its last content.
func FromEntries(entries []Entry) *Files {
	f := &Files{content: make(map[string]string, len(entries))}
	for _, e := range entries {
		f.add(e.Path, e.Text)
	}
	return f
}

func (f *Files) add(path, text string) {
	p := NormalizePath(path)
	if p == "" {
		return
	}
	if _, ok := f.content[p]; !ok {
		f.paths = append(f.paths, p)
	}
	f.content[p] = text
}

// Get returns the content stored at path. The path must already be normalized.
func (f *Files) Get(path string) (string, bool) {
	text, ok := f.content[path]
	return text, ok
}

// Has reports whether path exists.
func (f *Files) Has(path string) bool {
	_, ok := f.content[path]
	return ok
}

// Paths returns all paths in archive order.
func (f *Files) Paths() []string {
	out := make([]string, len(f.paths))
	copy(out, f.paths)
	return out
}

// Len returns the number of files.
func (f *Files) Len() int { return len(f.paths) }

// NormalizePath converts backslashes to forward slashes and strips leading
// slashes.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimLeft(p, "/")
}
