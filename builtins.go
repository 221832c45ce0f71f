// builtins.go — the native pattern library bound into every root Env.
//
// Every entry here is a NativeFunc: a single-argument Go closure, curried by
// hand where the table's operation needs more than one value (juxtaposition
// only ever applies one argument at a time, so `zip a b` is `(zip a) b`).
// List-shaped helpers lean on github.com/samber/lo rather than hand-rolled
// loops, matching how the rest of the corpus reaches for it over slices.
package glint

import (
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// RegisterBuiltins defines every builtin pattern into env.
func RegisterBuiltins(env *Env) {
	env.Define("fmt", NativeFunc("fmt", biFmt))
	env.Define("len", NativeFunc("len", biLen))
	env.Define("range", NativeFunc("range", biRange))
	env.Define("zip", NativeFunc("zip", biZip))
	env.Define("enumerate", NativeFunc("enumerate", biEnumerate))
	env.Define("sum", NativeFunc("sum", biSum))
	env.Define("max", NativeFunc("max", biMax))
	env.Define("min", NativeFunc("min", biMin))
	env.Define("all", NativeFunc("all", biAll))
	env.Define("any", NativeFunc("any", biAny))
	env.Define("sort", NativeFunc("sort", biSort))
	env.Define("keys", NativeFunc("keys", biKeys))
	env.Define("values", NativeFunc("values", biValues))
	env.Define("split", NativeFunc("split", biSplit))
	env.Define("join", NativeFunc("join", biJoin))
	env.Define("replace", NativeFunc("replace", biReplace))
	env.Define("trim", NativeFunc("trim", biTrim))
	env.Define("trim_start", NativeFunc("trim_start", biTrimStart))
	env.Define("trim_end", NativeFunc("trim_end", biTrimEnd))
	env.Define("lowercase", NativeFunc("lowercase", biLowercase))
	env.Define("uppercase", NativeFunc("uppercase", biUppercase))
	env.Define("starts_with", NativeFunc("starts_with", biStartsWith))
	env.Define("ends_with", NativeFunc("ends_with", biEndsWith))
	env.Define("parse_int", NativeFunc("parse_int", biParseInt))
	env.Define("parse_float", NativeFunc("parse_float", biParseFloat))
}

func wrongKind(name string, want string, got ValueKind) error {
	return newDiag(KindTypeMismatch, Span{}, "%s: expected %s, found %s", name, want, got)
}

func biFmt(v Value) (Value, error) { return Text(Canonical(v)), nil }

func biLen(v Value) (Value, error) {
	switch v.Kind {
	case KindList:
		return Int(int64(len(v.AsList()))), nil
	case KindDict:
		return Int(int64(v.AsDict().Len())), nil
	case KindText:
		return Int(int64(len([]rune(v.AsText())))), nil
	default:
		return Value{}, wrongKind("len", "list, dict or text", v.Kind)
	}
}

func biRange(v Value) (Value, error) {
	if v.Kind != KindList || len(v.AsList()) != 2 {
		return Value{}, wrongKind("range", "a two-element list [start, end]", v.Kind)
	}
	bounds := v.AsList()
	if bounds[0].Kind != KindInt || bounds[1].Kind != KindInt {
		return Value{}, newDiag(KindTypeMismatch, Span{}, "range: expected [int, int], found [%s, %s]", bounds[0].Kind, bounds[1].Kind)
	}
	start, end := bounds[0].AsInt(), bounds[1].AsInt()
	out := make([]Value, 0, max64(end-start, 0))
	for i := start; i < end; i++ {
		out = append(out, Int(i))
	}
	return List(out), nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// zip takes the first list and returns a closure over the second, the pairs
// paired positionally up to the shorter list's length.
func biZip(a Value) (Value, error) {
	if a.Kind != KindList {
		return Value{}, wrongKind("zip", "list", a.Kind)
	}
	return NativeFunc("zip", func(b Value) (Value, error) {
		if b.Kind != KindList {
			return Value{}, wrongKind("zip", "list", b.Kind)
		}
		n := len(a.AsList())
		if len(b.AsList()) < n {
			n = len(b.AsList())
		}
		pairs := lo.Zip2(a.AsList()[:n], b.AsList()[:n])
		out := make([]Value, len(pairs))
		for i, pr := range pairs {
			out[i] = List([]Value{pr.A, pr.B})
		}
		return List(out), nil
	}), nil
}

func biEnumerate(v Value) (Value, error) {
	switch v.Kind {
	case KindList:
		out := lo.Map(v.AsList(), func(item Value, i int) Value {
			return List([]Value{Int(int64(i)), item})
		})
		return List(out), nil
	case KindDict:
		d := v.AsDict()
		out := make([]Value, len(d.Keys))
		for i, k := range d.Keys {
			ev, _ := d.Get(k)
			out[i] = List([]Value{Text(k), ev})
		}
		return List(out), nil
	default:
		return Value{}, wrongKind("enumerate", "list or dict", v.Kind)
	}
}

func biSum(v Value) (Value, error) {
	if v.Kind != KindList {
		return Value{}, wrongKind("sum", "list", v.Kind)
	}
	items := v.AsList()
	allInt := true
	for _, it := range items {
		if it.Kind == KindFloat {
			allInt = false
		} else if it.Kind != KindInt {
			return Value{}, wrongKind("sum", "list of numbers", it.Kind)
		}
	}
	if allInt {
		total := lo.Reduce(items, func(acc int64, it Value, _ int) int64 { return acc + it.AsInt() }, int64(0))
		return Int(total), nil
	}
	total := lo.Reduce(items, func(acc float64, it Value, _ int) float64 {
		f, _ := toFloat(it)
		return acc + f
	}, 0.0)
	return Float(total), nil
}

func biMax(v Value) (Value, error) { return extremum(v, "max", false) }
func biMin(v Value) (Value, error) { return extremum(v, "min", true) }

func extremum(v Value, name string, wantMin bool) (Value, error) {
	if v.Kind != KindList || len(v.AsList()) == 0 {
		return Value{}, newDiag(KindOverflowOrDomain, Span{}, "%s: requires a non-empty list", name)
	}
	items := v.AsList()
	best := items[0]
	for _, it := range items[1:] {
		res, err := compareOrdered("<", it, best, Span{})
		if err != nil {
			return Value{}, err
		}
		less := res.AsBool()
		if (wantMin && less) || (!wantMin && !less && !Equal(it, best)) {
			best = it
		}
	}
	return best, nil
}

func biAll(v Value) (Value, error) {
	if v.Kind != KindList {
		return Value{}, wrongKind("all", "list", v.Kind)
	}
	for _, it := range v.AsList() {
		if it.Kind != KindBool {
			return Value{}, wrongKind("all", "list of bool", it.Kind)
		}
	}
	return Bool(lo.EveryBy(v.AsList(), func(it Value) bool { return it.AsBool() })), nil
}

func biAny(v Value) (Value, error) {
	if v.Kind != KindList {
		return Value{}, wrongKind("any", "list", v.Kind)
	}
	for _, it := range v.AsList() {
		if it.Kind != KindBool {
			return Value{}, wrongKind("any", "list of bool", it.Kind)
		}
	}
	return Bool(lo.SomeBy(v.AsList(), func(it Value) bool { return it.AsBool() })), nil
}

func biSort(v Value) (Value, error) {
	if v.Kind != KindList {
		return Value{}, wrongKind("sort", "list", v.Kind)
	}
	out := append([]Value(nil), v.AsList()...)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		res, err := compareOrdered("<", out[i], out[j], Span{})
		if err != nil {
			sortErr = err
			return false
		}
		return res.AsBool()
	})
	if sortErr != nil {
		return Value{}, sortErr
	}
	return List(out), nil
}

func biKeys(v Value) (Value, error) {
	if v.Kind != KindDict {
		return Value{}, wrongKind("keys", "dict", v.Kind)
	}
	out := make([]Value, len(v.AsDict().Keys))
	for i, k := range v.AsDict().Keys {
		out[i] = Text(k)
	}
	return List(out), nil
}

func biValues(v Value) (Value, error) {
	if v.Kind != KindDict {
		return Value{}, wrongKind("values", "dict", v.Kind)
	}
	d := v.AsDict()
	out := make([]Value, len(d.Keys))
	for i, k := range d.Keys {
		out[i], _ = d.Get(k)
	}
	return List(out), nil
}

// split takes the separator and returns a closure over the text to split.
func biSplit(sep Value) (Value, error) {
	if sep.Kind != KindText {
		return Value{}, wrongKind("split", "text", sep.Kind)
	}
	return NativeFunc("split", func(s Value) (Value, error) {
		if s.Kind != KindText {
			return Value{}, wrongKind("split", "text", s.Kind)
		}
		parts := strings.Split(s.AsText(), sep.AsText())
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Text(p)
		}
		return List(out), nil
	}), nil
}

// join takes the separator and returns a closure over the list to join.
func biJoin(sep Value) (Value, error) {
	if sep.Kind != KindText {
		return Value{}, wrongKind("join", "text", sep.Kind)
	}
	return NativeFunc("join", func(list Value) (Value, error) {
		if list.Kind != KindList {
			return Value{}, wrongKind("join", "list", list.Kind)
		}
		parts := make([]string, len(list.AsList()))
		for i, it := range list.AsList() {
			if it.Kind != KindText {
				return Value{}, wrongKind("join", "list of text", it.Kind)
			}
			parts[i] = it.AsText()
		}
		return Text(strings.Join(parts, sep.AsText())), nil
	}), nil
}

// replace takes the search text, then a closure over the replacement, then
// a closure over the text to replace within: `replace old new text`.
func biReplace(old Value) (Value, error) {
	if old.Kind != KindText {
		return Value{}, wrongKind("replace", "text", old.Kind)
	}
	return NativeFunc("replace", func(repl Value) (Value, error) {
		if repl.Kind != KindText {
			return Value{}, wrongKind("replace", "text", repl.Kind)
		}
		return NativeFunc("replace", func(s Value) (Value, error) {
			if s.Kind != KindText {
				return Value{}, wrongKind("replace", "text", s.Kind)
			}
			return Text(strings.ReplaceAll(s.AsText(), old.AsText(), repl.AsText())), nil
		}), nil
	}), nil
}

func textUnary(name string, f func(string) string) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		if v.Kind != KindText {
			return Value{}, wrongKind(name, "text", v.Kind)
		}
		return Text(f(v.AsText())), nil
	}
}

func trimStart(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }
func trimEnd(s string) string   { return strings.TrimRightFunc(s, unicode.IsSpace) }

func biTrim(v Value) (Value, error)      { return textUnary("trim", strings.TrimSpace)(v) }
func biTrimStart(v Value) (Value, error) { return textUnary("trim_start", trimStart)(v) }
func biTrimEnd(v Value) (Value, error)   { return textUnary("trim_end", trimEnd)(v) }
func biLowercase(v Value) (Value, error) { return textUnary("lowercase", strings.ToLower)(v) }
func biUppercase(v Value) (Value, error) { return textUnary("uppercase", strings.ToUpper)(v) }

// starts_with takes the prefix and returns a closure over the text.
func biStartsWith(prefix Value) (Value, error) {
	if prefix.Kind != KindText {
		return Value{}, wrongKind("starts_with", "text", prefix.Kind)
	}
	return NativeFunc("starts_with", func(s Value) (Value, error) {
		if s.Kind != KindText {
			return Value{}, wrongKind("starts_with", "text", s.Kind)
		}
		return Bool(strings.HasPrefix(s.AsText(), prefix.AsText())), nil
	}), nil
}

// ends_with takes the suffix and returns a closure over the text.
func biEndsWith(suffix Value) (Value, error) {
	if suffix.Kind != KindText {
		return Value{}, wrongKind("ends_with", "text", suffix.Kind)
	}
	return NativeFunc("ends_with", func(s Value) (Value, error) {
		if s.Kind != KindText {
			return Value{}, wrongKind("ends_with", "text", s.Kind)
		}
		return Bool(strings.HasSuffix(s.AsText(), suffix.AsText())), nil
	}), nil
}

func biParseInt(v Value) (Value, error) {
	if v.Kind != KindText {
		return Value{}, wrongKind("parse_int", "text", v.Kind)
	}
	n, err := parseIntText(v.AsText())
	if err != nil {
		return Value{}, newDiag(KindOverflowOrDomain, Span{}, "parse_int: %q is not a valid integer", v.AsText())
	}
	return Int(n), nil
}

func biParseFloat(v Value) (Value, error) {
	if v.Kind != KindText {
		return Value{}, wrongKind("parse_float", "text", v.Kind)
	}
	f, err := parseFloatText(v.AsText())
	if err != nil {
		return Value{}, newDiag(KindOverflowOrDomain, Span{}, "parse_float: %q is not a valid float", v.AsText())
	}
	return Float(f), nil
}
