// Package archive decompresses uploaded application archives into an
// in-memory path to text mapping.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"

	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
	"github.com/ziadkadry99/ziprun/internal/logging"
)

// DefaultExcludes are glob patterns for archive members that are never
// part of an application export. macOS adds __MACOSX/._index.html style
// resource forks when zipping, which would otherwise shadow the real entry.
var DefaultExcludes = []string{
	"__MACOSX/**",
	"**/.DS_Store",
}

const utf8BOM = "\uFEFF"

// Loader decompresses archives, skipping members matching Exclude.
type Loader struct {
	Exclude []string
}

// NewLoader returns a Loader with the given exclusion patterns.
func NewLoader(exclude []string) *Loader {
	return &Loader{Exclude: exclude}
}

// Load decompresses data using DefaultExcludes.
func Load(data []byte) (*Files, error) {
	return NewLoader(DefaultExcludes).Load(data)
}

// Load decompresses every member of the zip archive in data and decodes it
// as UTF-8 text. Any decompression failure is reported as an archive error.
func (l *Loader) Load(data []byte) (*Files, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, rerrors.NewArchiveError(err)
	}

	files := &Files{content: make(map[string]string, len(zr.File))}
	skipped := 0
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
			continue
		}
		name := NormalizePath(zf.Name)
		if l.excluded(name) {
			skipped++
			continue
		}

		text, err := readMember(zf)
		if err != nil {
			return nil, rerrors.NewArchiveError(fmt.Errorf("member %s: %w", zf.Name, err))
		}
		files.add(name, text)
	}

	logging.Debug("archive loaded", "files", files.Len(), "skipped", skipped)
	return files, nil
}

func (l *Loader) excluded(name string) bool {
	for _, pattern := range l.Exclude {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// readMember returns the decoded text of one archive member. Invalid UTF-8
// sequences are replaced and a leading byte order mark is dropped.
func readMember(zf *zip.File) (string, error) {
	rc, err := zf.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	return strings.TrimPrefix(text, utf8BOM), nil
}
