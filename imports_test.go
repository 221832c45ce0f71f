package glint

import (
	"context"
	"os"
	"testing"

	"github.com/goccy/go-yaml"
)

// yamlFilesToMemoryLoader decodes a YAML document of path -> source text
// into the flat path-to-source map MemoryLoader expects, the same way a host might
// ship a fixed bundle of fixtures alongside a playground binary.
func yamlFilesToMemoryLoader(t *testing.T, doc string) *MemoryLoader {
	t.Helper()
	var files map[string]string
	if err := yaml.Unmarshal([]byte(doc), &files); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	return NewMemoryLoader(files)
}

func TestImportFromMemoryLoaderViaYAMLFixture(t *testing.T) {
	loader := yamlFilesToMemoryLoader(t, `
greeting.glint: "1 + 1"
`)
	env := NewEnvironment(WithLoader(loader))
	v, err := Evaluate(`import "greeting.glint"`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.AsInt() != 2 {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestImportAsTextSkipsEvaluation(t *testing.T) {
	loader := yamlFilesToMemoryLoader(t, `
raw.glint: "not valid glint {{{"
`)
	env := NewEnvironment(WithLoader(loader))
	v, err := Evaluate(`import "raw.glint" as text`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.AsText() != "not valid glint {{{" {
		t.Fatalf("got %q", v.AsText())
	}
}

func TestImportMissingWithDefaultFallsBack(t *testing.T) {
	env := NewEnvironment()
	v, err := Evaluate(`import "nope.glint" or 99`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.AsInt() != 99 {
		t.Fatalf("got %v, want 99", v)
	}
}

func TestImportMissingWithoutDefaultErrors(t *testing.T) {
	env := NewEnvironment()
	_, err := Evaluate(`import "nope.glint"`, env)
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != KindImportError {
		t.Fatalf("got %v, want a KindImportError diagnostic", err)
	}
}

func TestImportMemoizesRepeatedKey(t *testing.T) {
	calls := 0
	loader := &countingLoader{MemoryLoader: *yamlFilesToMemoryLoader(t, `
shared.glint: "1 + 1"
`), calls: &calls}
	env := NewEnvironment(WithLoader(loader))
	v, err := Evaluate(`let a = import "shared.glint"; let b = import "shared.glint"; a + b`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.AsInt() != 4 {
		t.Fatalf("got %v, want 4", v)
	}
	if calls != 1 {
		t.Fatalf("loader was invoked %d times, want 1 (memoized)", calls)
	}
}

func TestImportCircularDetected(t *testing.T) {
	loader := yamlFilesToMemoryLoader(t, `
a.glint: 'import "b.glint"'
b.glint: 'import "a.glint"'
`)
	env := NewEnvironment(WithLoader(loader))
	_, err := Evaluate(`import "a.glint"`, env)
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != KindImportError {
		t.Fatalf("got %v, want a circular-import KindImportError diagnostic", err)
	}
}

func TestImportHermeticPolicyBlocksChainedUnsafeLoader(t *testing.T) {
	// Both files come from the same (unsafe) MemoryLoader: once evaluation is
	// inside content served by an unsafe loader, "restricted" kicks in and
	// that same loader may no longer be consulted for further imports, even
	// though it would happily resolve "inner.glint" on its own.
	loader := yamlFilesToMemoryLoader(t, `
outer.glint: 'import "inner.glint"'
inner.glint: "1 + 1"
`)
	env := NewEnvironment(WithLoader(loader))
	_, err := Evaluate(`import "outer.glint"`, env)
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != KindImportError {
		t.Fatalf("got %v, want a KindImportError diagnostic (inner.glint unreachable once restricted)", err)
	}
}

func TestImportHermeticPolicyStillAllowsSafeLoaderWhenRestricted(t *testing.T) {
	// A safe loader (env:) remains reachable even from content served by an
	// unsafe loader, since Safe() loaders are never filtered by restricted.
	os.Setenv("GLINT_IMPORT_TEST_CHAIN", "chained")
	defer os.Unsetenv("GLINT_IMPORT_TEST_CHAIN")

	loader := yamlFilesToMemoryLoader(t, `
outer.glint: 'import "env:GLINT_IMPORT_TEST_CHAIN" as text'
`)
	env := NewEnvironment(WithLoader(loader), WithLoader(NewEnvLoader()))
	v, err := Evaluate(`import "outer.glint"`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.AsText() != "chained" {
		t.Fatalf("got %q, want \"chained\"", v.AsText())
	}
}

func TestEnvLoaderResolvesProcessEnv(t *testing.T) {
	os.Setenv("GLINT_IMPORT_TEST_VAR", "42")
	defer os.Unsetenv("GLINT_IMPORT_TEST_VAR")

	env := NewEnvironment(WithLoader(NewEnvLoader()))
	v, err := Evaluate(`import "env:GLINT_IMPORT_TEST_VAR" as text`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.AsText() != "42" {
		t.Fatalf("got %q, want \"42\"", v.AsText())
	}
}

func TestFileLoaderResolvesRelativeToBasePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/lib.glint", []byte("3 * 3"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	env := NewEnvironment(WithLoader(NewFileLoader(os.DirFS(dir))))
	v, err := Evaluate(`import "lib.glint"`, env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.AsInt() != 9 {
		t.Fatalf("got %v, want 9", v)
	}
}

// countingLoader wraps a MemoryLoader to count Load calls, used to assert
// the resolver's memoization actually avoids re-evaluating a shared import.
type countingLoader struct {
	MemoryLoader
	calls *int
}

func (c *countingLoader) Load(ctx context.Context, key string) ([]byte, error) {
	*c.calls++
	return c.MemoryLoader.Load(ctx, key)
}
