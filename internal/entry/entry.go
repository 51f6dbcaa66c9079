// Package entry locates the HTML entry document of an archive and the
// module script it boots.
//
// Extraction is a text heuristic, not an HTML parse: the first
// <script type="module" src="..."> element wins, attributes must use double
// quotes, and type must precede src. Documents with several module scripts
// only ever get their first one bundled.
package entry

import (
	"regexp"
	"strings"

	"github.com/ziadkadry99/ziprun/internal/archive"
	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
)

// DocumentSuffix is matched case-insensitively against archive paths.
const DocumentSuffix = "index.html"

// ModuleScriptPattern matches a module script element and captures its src.
var ModuleScriptPattern = regexp.MustCompile(`(?i)<script[^>]+type="module"[^>]+src="([^"]+)"[^>]*></script>`)

// Entry describes the resolved entry of an archive.
type Entry struct {
	// DocumentPath is the archive path of the index document.
	DocumentPath string

	// Document is the index document text.
	Document string

	// ModulePath is the normalized path of the entry module.
	ModulePath string
}

// FindDocument returns the first path, in archive order, whose lowercase
// form ends with index.html.
func FindDocument(files *archive.Files) (string, error) {
	for _, p := range files.Paths() {
		if strings.HasSuffix(strings.ToLower(p), DocumentSuffix) {
			return p, nil
		}
	}
	return "", rerrors.NewEntryDocumentNotFoundError()
}

// ExtractModulePath returns the src of the first module script in html with
// one leading slash removed.
func ExtractModulePath(html string) (string, bool) {
	m := ModuleScriptPattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return strings.TrimPrefix(m[1], "/"), true
}

// Resolve finds the entry document in files and extracts its entry module.
func Resolve(files *archive.Files) (*Entry, error) {
	docPath, err := FindDocument(files)
	if err != nil {
		return nil, err
	}
	doc, _ := files.Get(docPath)

	modulePath, ok := ExtractModulePath(doc)
	if !ok {
		return nil, rerrors.NewEntryPointNotFoundError(docPath)
	}

	return &Entry{
		DocumentPath: docPath,
		Document:     doc,
		ModulePath:   modulePath,
	}, nil
}
