// value.go — the runtime value model.
//
// A Value is the universal carrier produced by evaluation. It is a tagged
// union over the JSON data model (Null, Bool, Int, Float, Text, List, Dict)
// plus two non-representable kinds that only exist inside a running program:
// Pattern (a closure — see func.go-ish bits below, kept in this file) and
// Type (a first-class type expression, see types.go).
//
// Values are immutable. Every operation that would mutate a List or Dict
// instead builds a new one; see eval.go for constructors used during
// evaluation.
package glint

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind discriminates the case held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindList
	KindDict
	KindPattern
	KindType
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindPattern:
		return "pattern"
	case KindType:
		return "type"
	default:
		return "?"
	}
}

// Value is the result of evaluating any expression.
//
// Only one of the payload fields is meaningful, selected by Kind:
//
//	KindBool    -> b
//	KindInt     -> i
//	KindFloat   -> f
//	KindText    -> s
//	KindList    -> list
//	KindDict    -> dict
//	KindPattern -> fn
//	KindType    -> typ
//
// KindNull has no payload.
type Value struct {
	Kind ValueKind

	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	dict *Dict
	fn   *Func
	typ  TypeExpr
}

// Null is the singleton null value.
var Null = Value{Kind: KindNull}

func Bool(b bool) Value   { return Value{Kind: KindBool, b: b} }
func Int(n int64) Value   { return Value{Kind: KindInt, i: n} }
func Float(f float64) Value { return Value{Kind: KindFloat, f: f} }
func Text(s string) Value { return Value{Kind: KindText, s: s} }
func List(xs []Value) Value {
	if xs == nil {
		xs = []Value{}
	}
	return Value{Kind: KindList, list: xs}
}
func DictVal(d *Dict) Value    { return Value{Kind: KindDict, dict: d} }
func PatternVal(f *Func) Value { return Value{Kind: KindPattern, fn: f} }
func TypeVal(t TypeExpr) Value { return Value{Kind: KindType, typ: t} }

func (v Value) AsBool() bool       { return v.b }
func (v Value) AsInt() int64       { return v.i }
func (v Value) AsFloat() float64   { return v.f }
func (v Value) AsText() string     { return v.s }
func (v Value) AsList() []Value    { return v.list }
func (v Value) AsDict() *Dict      { return v.dict }
func (v Value) AsFunc() *Func      { return v.fn }
func (v Value) AsTypeExpr() TypeExpr { return v.typ }

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Representable reports whether v (recursively) can be serialized as JSON.
// Pattern and Type values are never representable.
func (v Value) Representable() bool {
	switch v.Kind {
	case KindPattern, KindType:
		return false
	case KindList:
		for _, e := range v.list {
			if !e.Representable() {
				return false
			}
		}
		return true
	case KindDict:
		for _, k := range v.dict.Keys {
			e, _ := v.dict.Get(k)
			if !e.Representable() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Dict is an ordered mapping from text keys to values. Insertion order is
// preserved; writing an existing key updates its value without moving its
// position.
type Dict struct {
	Keys    []string
	Entries map[string]Value
}

// NewDict returns an empty, ready-to-use Dict.
func NewDict() *Dict {
	return &Dict{Entries: make(map[string]Value)}
}

// Get returns the value bound to key and whether it is present.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.Entries[key]
	return v, ok
}

// Set inserts or updates key. First-seen position is preserved on update.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.Entries[key]; !ok {
		d.Keys = append(d.Keys, key)
	}
	d.Entries[key] = v
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.Keys) }

// Clone returns a shallow copy safe to mutate independently.
func (d *Dict) Clone() *Dict {
	nd := &Dict{
		Keys:    append([]string(nil), d.Keys...),
		Entries: make(map[string]Value, len(d.Entries)),
	}
	for k, v := range d.Entries {
		nd.Entries[k] = v
	}
	return nd
}

// Func is the runtime payload of a KindPattern value: a named or anonymous
// callable carrying an ordered list of alternatives. Application tries each
// alternative's pattern against the argument in order. Native, when
// non-nil, is a builtin implemented in Go (builtins.go) rather than by
// alternatives; applying a Func calls Native directly and never consults
// Alternatives.
type Func struct {
	Name         string
	Alternatives []*Alternative
	Native       func(arg Value) (Value, error)
}

// NativeFunc wraps a Go function as a callable Pattern value.
func NativeFunc(name string, fn func(Value) (Value, error)) Value {
	return PatternVal(&Func{Name: name, Native: fn})
}

// Alternative is one (pattern, body, captured-environment) clause of a
// pattern-defined function.
type Alternative struct {
	Param *Pattern
	Body  *Block
	Env   *Env
}

// WithAlternative returns a new Func with alt appended, leaving f unmodified:
// appending an alternative to a pattern-defined function produces a new
// Pattern value rather than mutating the old one.
func (f *Func) WithAlternative(alt *Alternative) *Func {
	nf := &Func{Name: f.Name}
	nf.Alternatives = append(nf.Alternatives, f.Alternatives...)
	nf.Alternatives = append(nf.Alternatives, alt)
	return nf
}

// Equal implements structural equality. Dict equality ignores insertion
// order of keys — two dicts with the same entries in different orders are
// equal. Pattern and Type values are never equal to anything, even to
// themselves, matching their non-representable, closure-ish nature. Both
// choices are recorded as open-question resolutions in DESIGN.md.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		// Int/Float mixed comparison is numeric, not structural.
		if isNumeric(a.Kind) && isNumeric(b.Kind) {
			return numEqual(a, b)
		}
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindText:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if a.dict.Len() != b.dict.Len() {
			return false
		}
		for _, k := range a.dict.Keys {
			av, _ := a.dict.Get(k)
			bv, ok := b.dict.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNumeric(k ValueKind) bool { return k == KindInt || k == KindFloat }

func numEqual(a, b Value) bool {
	af, aIsF := toFloat(a)
	bf, bIsF := toFloat(b)
	_, _ = aIsF, bIsF
	return af == bf
}

func toFloat(v Value) (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.i), false
	case KindFloat:
		return v.f, true
	default:
		return math.NaN(), false
	}
}

// Canonical renders v using the language's canonical text representation,
// the form used by `as text` casts and the fmt builtin: Int is decimal,
// Float is the shortest round-trip form, Text is emitted raw (no quoting),
// Bool/Null are their keyword spelling. Lists/Dicts render JSON-ish for
// readability but are not meant to be re-parsed; use Marshal (marshal.go)
// for JSON output.
func Canonical(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindText:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = debugRepr(e)
		}
		return "[" + joinStrings(parts, ", ") + "]"
	case KindDict:
		parts := make([]string, 0, v.dict.Len())
		for _, k := range v.dict.Keys {
			e, _ := v.dict.Get(k)
			parts = append(parts, strconv.Quote(k)+": "+debugRepr(e))
		}
		return "{" + joinStrings(parts, ", ") + "}"
	case KindPattern:
		return "<pattern>"
	case KindType:
		return "<type>"
	default:
		return "<unknown>"
	}
}

// debugRepr is like Canonical but quotes Text (used inside list/dict
// rendering so "a" is distinguishable from bare a).
func debugRepr(v Value) string {
	if v.Kind == KindText {
		return strconv.Quote(v.s)
	}
	return Canonical(v)
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinStrings(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

// String implements fmt.Stringer for debugging (e.g. %v in test failures).
func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.Kind, Canonical(v))
}
