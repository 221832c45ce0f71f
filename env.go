// env.go — lexical environment chain.
//
// An Env is one frame of an ordered chain; lookup walks the chain from
// innermost to outermost. Frames are never mutated once a child frame has
// been pushed on top of them — Define is only ever called on the frame at
// the top of the chain while it is being built (inside a block, a
// comprehension iteration, or a freshly-applied function call), after which
// evaluation moves on to a new child frame. This gives Pattern values cheap,
// safe structural snapshots: capturing *Env is capturing a pointer into a
// frame that will never again change out from under it.
//
// Values and type aliases live in two separate namespaces that share the
// same frame structure: `let x = 1` and `type x = int` do not collide.
package glint

// Env is one frame of the lexical scope chain.
type Env struct {
	parent *Env
	vars   map[string]Value
	types  map[string]TypeExpr
}

// NewRootEnv returns a fresh, empty top-level frame (no parent).
func NewRootEnv() *Env {
	return &Env{vars: map[string]Value{}, types: map[string]TypeExpr{}}
}

// Child returns a new frame whose lookups fall back to e.
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: map[string]Value{}, types: map[string]TypeExpr{}}
}

// Define binds name to v in this frame. Re-declaring a name inserts a new
// entry that hides the older one for subsequent lookups; it never mutates
// an existing binding in place.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Lookup walks the chain outward from e and returns the nearest binding.
func (e *Env) Lookup(name string) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// DefineType binds a type alias in this frame's type namespace.
func (e *Env) DefineType(name string, t TypeExpr) {
	e.types[name] = t
}

// LookupType walks the chain outward and returns the nearest type alias.
func (e *Env) LookupType(name string) (TypeExpr, bool) {
	for f := e; f != nil; f = f.parent {
		if t, ok := f.types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Names returns every value identifier visible from e, innermost shadowing
// outermost duplicates removed. Used to build "did you mean" suggestions for
// UnboundIdentifier diagnostics (errors.go).
func (e *Env) Names() []string {
	seen := map[string]bool{}
	var out []string
	for f := e; f != nil; f = f.parent {
		for name := range f.vars {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// TypeNames returns every type-alias identifier visible from e, for
// UnboundIdentifier-style suggestions inside type expressions.
func (e *Env) TypeNames() []string {
	seen := map[string]bool{}
	var out []string
	for f := e; f != nil; f = f.parent {
		for name := range f.types {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
