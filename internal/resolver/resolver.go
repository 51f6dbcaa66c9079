// Package resolver bridges bundler import specifiers to the files of an
// in-memory archive.
//
// An archive is a flat path to text store. The bundler expects a
// hierarchical file system, so specifiers are resolved with URL joining
// semantics against the importer's virtual path and loaded from the mapping,
// probing .tsx and .ts suffixes for extensionless imports. Bare specifiers
// ("react", "@google/genai") never touch the archive: they stay external and
// the host page supplies them at run time through an import map or globals.
package resolver

import (
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/ziadkadry99/ziprun/internal/archive"
	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
)

// Namespace tags paths that live inside the archive.
const Namespace = "zip-virtual"

// Kind classifies why a specifier is being resolved.
type Kind int

const (
	// KindImport is any import, require or dynamic import.
	KindImport Kind = iota
	// KindEntryPoint is the build's entry point.
	KindEntryPoint
)

// Loader names the syntax a loaded module is parsed with.
type Loader string

const (
	LoaderTS  Loader = "ts"
	LoaderTSX Loader = "tsx"
)

// ProbeSuffixes are tried, in order, when an exact path is absent.
var ProbeSuffixes = []string{".tsx", ".ts"}

// Resolution is the outcome of resolving one specifier.
type Resolution struct {
	Path      string
	Namespace string
	External  bool
}

// Module is a loaded archive file.
type Module struct {
	Path     string
	Contents string
	Loader   Loader
}

// ModuleSource resolves specifiers and loads the modules they name.
type ModuleSource interface {
	Resolve(specifier string, kind Kind, importer string) (Resolution, error)
	Load(path string) (Module, error)
}

// Resolver serves one archive to one build. The bundler calls it from
// several goroutines; files is read-only and the bookkeeping below is
// guarded by mu.
type Resolver struct {
	files *archive.Files
	entry string

	mu        sync.Mutex
	failure   error
	loaded    map[string]struct{}
	externals map[string]struct{}
}

// New returns a Resolver over files whose entry module is entryPath.
func New(files *archive.Files, entryPath string) *Resolver {
	return &Resolver{
		files:     files,
		entry:     archive.NormalizePath(entryPath),
		loaded:    make(map[string]struct{}),
		externals: make(map[string]struct{}),
	}
}

// IsBare reports whether specifier is a package-style import.
func IsBare(specifier string) bool {
	return !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/")
}

// Resolve maps specifier, imported from importer, to an archive path or
// marks it external.
func (r *Resolver) Resolve(specifier string, kind Kind, importer string) (Resolution, error) {
	var p string
	switch {
	case kind == KindEntryPoint:
		p = strings.TrimLeft(specifier, "/")
	case IsBare(specifier):
		r.mu.Lock()
		r.externals[specifier] = struct{}{}
		r.mu.Unlock()
		return Resolution{Path: specifier, External: true}, nil
	default:
		if importer == "" {
			importer = r.entry
		}
		p = strings.TrimLeft(join(importer, specifier), "/")
	}

	if p == "" {
		return Resolution{}, r.fail(rerrors.NewModuleNotFoundError(specifier))
	}
	return Resolution{Path: p, Namespace: Namespace}, nil
}

// join resolves specifier against importer the way a URL is resolved
// against file:///importer.
func join(importer, specifier string) string {
	base := &url.URL{Scheme: "file", Path: "/" + strings.TrimLeft(importer, "/")}
	ref, err := url.Parse(specifier)
	if err != nil {
		if strings.HasPrefix(specifier, "/") {
			return path.Clean(specifier)
		}
		return path.Join(path.Dir(base.Path), specifier)
	}
	return base.ResolveReference(ref).Path
}

// Load returns the archive file at p, probing ProbeSuffixes when the exact
// path is absent.
func (r *Resolver) Load(p string) (Module, error) {
	p = strings.TrimLeft(p, "/")

	hit, contents, ok := p, "", false
	if contents, ok = r.files.Get(p); !ok {
		for _, suffix := range ProbeSuffixes {
			if contents, ok = r.files.Get(p + suffix); ok {
				hit = p + suffix
				break
			}
		}
	}
	if !ok {
		return Module{}, r.fail(rerrors.NewModuleNotFoundError(p))
	}

	r.mu.Lock()
	r.loaded[hit] = struct{}{}
	r.mu.Unlock()

	return Module{Path: hit, Contents: contents, Loader: LoaderFor(hit)}, nil
}

// LoaderFor picks tsx for .tsx files and ts for everything else.
func LoaderFor(p string) Loader {
	if strings.HasSuffix(p, ".tsx") {
		return LoaderTSX
	}
	return LoaderTS
}

func (r *Resolver) fail(err error) error {
	r.mu.Lock()
	if r.failure == nil {
		r.failure = err
	}
	r.mu.Unlock()
	return err
}

// Failure returns the first module-not-found error raised, if any.
func (r *Resolver) Failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failure
}

// Loaded returns the archive paths loaded so far, sorted.
func (r *Resolver) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.loaded)
}

// Externals returns the bare specifiers seen so far, sorted.
func (r *Resolver) Externals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.externals)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
