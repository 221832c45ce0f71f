// imports.go — the import resolver and its pluggable loaders.
//
// An Environment pairs an ordered list of Loaders with the base path of the
// program currently being evaluated. Resolving "import \"x\"" walks that
// list, asking each Loader in turn until one answers with source bytes (or
// everyone answers not-found, which is an ImportError). A loaded program is
// parsed and evaluated in a *fresh* Env chained to nothing but the root
// builtins, never to the importing program's frame: imports are hermetic
// with respect to lexical scope even when they share a loader set.
//
// Memoization and cycle detection are scoped to one top-level evaluation,
// per the resolver's single-threaded, synchronous contract: both live on
// the Environment instance, not on any global.
package glint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/glint-lang/glint/glintlog"
)

// Loader resolves an import key to source bytes, or reports not-found.
// Safe reports whether this loader may still be consulted when evaluating
// a source that was itself loaded through a non-filesystem, non-hermetic
// loader (the §7 hermetic-policy filter below).
type Loader interface {
	Name() string
	Matches(key string) bool
	Load(ctx context.Context, key string) ([]byte, error)
	Safe() bool
}

// ErrNotFound is returned by a Loader.Load when it recognizes the key's
// scheme but has nothing bound to it.
var ErrNotFound = fmt.Errorf("glint: import not found")

// Option configures an Environment. Mirrors the functional-options shape
// used for logger configuration (glintlog).
type Option func(*Environment)

// WithLoader appends a loader to the environment's loader list. Loaders are
// consulted in the order they were added.
func WithLoader(l Loader) Option {
	return func(e *Environment) { e.loaders = append(e.loaders, l) }
}

// WithBasePath sets the initial base path against which relative imports in
// the top-level program resolve.
func WithBasePath(base string) Option {
	return func(e *Environment) { e.basePath = base }
}

// Environment is the embedding surface's import-resolution context: an
// ordered loader list, the evaluator's root scope, and per-evaluation
// memoization/cycle state. One Environment belongs to one top-level
// evaluation; do not share it across concurrent EvalProgram calls.
type Environment struct {
	loaders  []Loader
	basePath string
	root     *Env

	mu         *sync.Mutex // shared with every Environment spawned for the same top-level evaluation
	cache      map[string]Value
	loading    map[string]bool
	stack      []string
	restricted bool // true once we're inside a source loaded by an unsafe loader
	log        *glintlog.Logger
}

// WithLogger sets the diagnostic sink for import resolution. A nil logger
// (the default) logs nothing.
func WithLogger(l *glintlog.Logger) Option {
	return func(e *Environment) { e.log = l }
}

// NewEnvironment builds an Environment with builtins installed into a fresh
// root Env, then applies opts. With no loaders configured, imports fail
// with ImportError — the hermetic default for sandboxed embeddings.
func NewEnvironment(opts ...Option) *Environment {
	root := NewRootEnv()
	RegisterBuiltins(root)
	e := &Environment{
		root:     root,
		basePath: "/",
		mu:       &sync.Mutex{},
		cache:    map[string]Value{},
		loading:  map[string]bool{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the environment's root scope, the parent of every top-level
// program's outermost frame.
func (e *Environment) Root() *Env { return e.root }

// resolveKey turns a literal import key plus the current base path into an
// absolute key. A key containing "scheme:" before any "/" is already
// absolute (env:FOO, mem:a/b). Everything else is a file-like path, joined
// against the directory of base when relative.
func resolveKey(literal, base string) string {
	if i := strings.IndexAny(literal, ":/"); i >= 0 && literal[i] == ':' {
		return literal
	}
	if strings.HasPrefix(literal, "/") {
		return path.Clean(literal)
	}
	dir := path.Dir(base)
	return path.Clean(path.Join(dir, literal))
}

// schemeOf returns the "scheme:" prefix of key, or "" if key has none.
func schemeOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return ""
}

// resolveAndLoad implements `import "<literal>" [as text]`: resolve, load,
// and (unless asText) parse+evaluate in a fresh top-level frame, memoizing
// by absolute key. The caller (evalImport in eval.go) is responsible for
// the `or <default>` fallback on any returned error.
func (e *Environment) resolveAndLoad(ctx context.Context, literal string, asText bool) (Value, error) {
	key := resolveKey(literal, e.basePath)
	e.log.Debugf("import resolve %q -> %s", literal, key)

	e.mu.Lock()
	if v, ok := e.cache[key]; ok && !asText {
		e.mu.Unlock()
		e.log.Debugf("import cache hit %s", key)
		return v, nil
	}
	if e.loading[key] {
		chain := append(append([]string{}, e.stack...), key)
		e.mu.Unlock()
		e.log.Warnf("circular import detected: %s", strings.Join(chain, " -> "))
		return Value{}, newDiag(KindImportError, Span{}, "circular import: %s", strings.Join(chain, " -> "))
	}
	e.loading[key] = true
	e.stack = append(e.stack, key)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.loading, key)
		e.stack = e.stack[:len(e.stack)-1]
		e.mu.Unlock()
	}()

	var src []byte
	var loadErr error
	var usedLoader Loader
	found := false
	for _, l := range e.loaders {
		if e.restricted && !l.Safe() {
			continue
		}
		if !l.Matches(key) {
			continue
		}
		b, err := l.Load(ctx, key)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			loadErr = err
			found = true
			break
		}
		src = b
		usedLoader = l
		found = true
		break
	}
	if !found {
		return Value{}, newDiag(KindImportError, Span{}, "import %q: no loader could resolve it", literal)
	}
	if loadErr != nil {
		return Value{}, newDiag(KindImportError, Span{}, "import %q: %s", literal, loadErr)
	}

	if asText {
		return Text(string(src)), nil
	}

	blk, perr := Parse(string(src), key)
	if perr != nil {
		return Value{}, perr
	}

	child := &Environment{
		loaders:    e.loaders,
		basePath:   key,
		root:       e.root,
		mu:         e.mu,
		cache:      e.cache,
		loading:    e.loading,
		stack:      e.stack,
		restricted: e.restricted || !usedLoader.Safe(),
		log:        e.log,
	}
	modEnv := e.root.Child()
	v, err := EvalProgram(ctx, blk, modEnv, child)
	if err != nil {
		return Value{}, err
	}

	e.mu.Lock()
	e.cache[key] = v
	e.mu.Unlock()
	return v, nil
}

// FileLoader resolves file-like keys (no "scheme:" prefix) against an
// fs.FS root, so embedders can sandbox with os.DirFS or serve an embedded
// bundle; file contents are read only through that fs.FS.
type FileLoader struct {
	FS fs.FS
}

func NewFileLoader(fsys fs.FS) *FileLoader { return &FileLoader{FS: fsys} }

func (f *FileLoader) Name() string { return "fs" }

func (f *FileLoader) Matches(key string) bool {
	return schemeOf(key) == "" || !strings.Contains(key, ":")
}

func (f *FileLoader) Load(ctx context.Context, key string) ([]byte, error) {
	p := strings.TrimPrefix(key, "/")
	b, err := fs.ReadFile(f.FS, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (f *FileLoader) Safe() bool { return false }

// EnvLoader resolves "env:NAME" keys to process environment variables. It
// is always Safe, so sources it serves may still import further env:
// values after the hermetic filter kicks in.
type EnvLoader struct{}

func NewEnvLoader() *EnvLoader { return &EnvLoader{} }

func (EnvLoader) Name() string { return "env" }

func (EnvLoader) Matches(key string) bool { return strings.HasPrefix(key, "env:") }

func (EnvLoader) Load(ctx context.Context, key string) ([]byte, error) {
	name := strings.TrimPrefix(key, "env:")
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (EnvLoader) Safe() bool { return true }

// MemoryLoader resolves slash-delimited keys against a flat map of path to
// source text given at construction, for hosts with no real filesystem
// (e.g. browser playgrounds bundling a fixed set of sources). It does not
// take a nested mapping of directories.
type MemoryLoader struct {
	files map[string]string
}

// NewMemoryLoader builds a MemoryLoader from a flat map of path to source
// text; paths are matched exactly after the resolver's own path-joining.
func NewMemoryLoader(files map[string]string) *MemoryLoader {
	m := make(map[string]string, len(files))
	for k, v := range files {
		m[strings.TrimPrefix(path.Clean("/"+k), "/")] = v
	}
	return &MemoryLoader{files: m}
}

func (m *MemoryLoader) Name() string { return "mem" }

func (m *MemoryLoader) Matches(key string) bool {
	return schemeOf(key) == "" || !strings.Contains(key, ":")
}

func (m *MemoryLoader) Load(ctx context.Context, key string) ([]byte, error) {
	p := strings.TrimPrefix(key, "/")
	if src, ok := m.files[p]; ok {
		return []byte(src), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryLoader) Safe() bool { return false }
