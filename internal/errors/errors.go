// Package errors defines the failure kinds a ziprun pipeline run can end in.
package errors

import (
	"errors"
	"strings"
)

// Sentinel kinds. Every StageError unwraps to exactly one of these.
var (
	// ErrArchive indicates corrupt or unreadable archive bytes.
	ErrArchive = errors.New("archive error")

	// ErrEntryDocumentNotFound indicates the archive has no index.html.
	ErrEntryDocumentNotFound = errors.New("entry document not found")

	// ErrEntryPointNotFound indicates index.html has no module entry script.
	ErrEntryPointNotFound = errors.New("entry point not found")

	// ErrModuleNotFound indicates an import that no archive file satisfies.
	ErrModuleNotFound = errors.New("module not found")

	// ErrBuild indicates the bundler failed or produced no output.
	ErrBuild = errors.New("build error")

	// ErrComposition indicates the output document could not be assembled.
	ErrComposition = errors.New("composition error")
)

// StageError is a pipeline failure with a human-readable message.
type StageError struct {
	// Kind is one of the sentinel errors above.
	Kind error

	// Message describes the failure for display.
	Message string

	// Path is the archive path involved, if any.
	Path string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewArchiveError wraps a decompression failure.
func NewArchiveError(cause error) error {
	return &StageError{Kind: ErrArchive, Message: "reading archive", Cause: cause}
}

// NewEntryDocumentNotFoundError reports an archive without index.html.
func NewEntryDocumentNotFoundError() error {
	return &StageError{Kind: ErrEntryDocumentNotFound, Message: "no index.html found in archive"}
}

// NewEntryPointNotFoundError reports an index document without a module script.
func NewEntryPointNotFoundError(document string) error {
	return &StageError{
		Kind:    ErrEntryPointNotFound,
		Message: `no <script type="module" src="..."> entry found in`,
		Path:    document,
	}
}

// NewModuleNotFoundError reports an archive path that could not be loaded.
func NewModuleNotFoundError(path string) error {
	return &StageError{Kind: ErrModuleNotFound, Message: "file not found in archive", Path: path}
}

// NewBuildError reports a bundler failure.
func NewBuildError(message string, cause error) error {
	return &StageError{Kind: ErrBuild, Message: message, Cause: cause}
}

// NewCompositionError reports a failure assembling the output document.
func NewCompositionError(message, path string) error {
	return &StageError{Kind: ErrComposition, Message: message, Path: path}
}

// kindNames maps each sentinel to a stable identifier used by the HTTP API.
var kindNames = []struct {
	kind error
	name string
}{
	{ErrArchive, "archive"},
	{ErrEntryDocumentNotFound, "entry_document_not_found"},
	{ErrEntryPointNotFound, "entry_point_not_found"},
	{ErrModuleNotFound, "module_not_found"},
	{ErrBuild, "build"},
	{ErrComposition, "composition"},
}

// KindName returns the stable identifier of err's kind, or "internal" when
// err is not a pipeline failure.
func KindName(err error) string {
	for _, k := range kindNames {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return "internal"
}
