package glint

import "testing"

func TestBuiltinFmtAndLen(t *testing.T) {
	if v := run(t, `fmt 42`); v.AsText() != "42" {
		t.Fatalf("fmt 42 = %v, want \"42\"", v)
	}
	if v := run(t, `len ([1, 2, 3])`); v.AsInt() != 3 {
		t.Fatalf("len [1,2,3] = %v, want 3", v)
	}
	if v := run(t, `len {a: 1, b: 2}`); v.AsInt() != 2 {
		t.Fatalf("len dict = %v, want 2", v)
	}
	if v := run(t, `len "hello"`); v.AsInt() != 5 {
		t.Fatalf("len text = %v, want 5", v)
	}
}

func TestBuiltinRange(t *testing.T) {
	v := run(t, `range ([0, 3])`)
	list := v.AsList()
	if len(list) != 3 || list[0].AsInt() != 0 || list[2].AsInt() != 2 {
		t.Fatalf("range [0, 3] = %v, want [0, 1, 2]", v)
	}

	v = run(t, `range ([2, 5])`)
	list = v.AsList()
	if len(list) != 3 || list[0].AsInt() != 2 || list[2].AsInt() != 4 {
		t.Fatalf("range [2, 5] = %v, want [2, 3, 4]", v)
	}

	v = run(t, `range ([5, 5])`)
	if len(v.AsList()) != 0 {
		t.Fatalf("range [5, 5] = %v, want []", v)
	}

	err := runErr(t, `range 3`)
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != KindTypeMismatch {
		t.Fatalf("got %v, want a KindTypeMismatch diagnostic for a bare int", err)
	}
}

func TestBuiltinZipAndEnumerate(t *testing.T) {
	v := run(t, `zip ([1, 2]) (["a", "b"])`)
	list := v.AsList()
	if len(list) != 2 {
		t.Fatalf("zip = %v, want 2 pairs", v)
	}
	pair := list[0].AsList()
	if pair[0].AsInt() != 1 || pair[1].AsText() != "a" {
		t.Fatalf("zip[0] = %v, want [1, \"a\"]", list[0])
	}

	v = run(t, `enumerate (["x", "y"])`)
	list = v.AsList()
	p1 := list[1].AsList()
	if p1[0].AsInt() != 1 || p1[1].AsText() != "y" {
		t.Fatalf("enumerate[1] = %v, want [1, \"y\"]", list[1])
	}
}

func TestBuiltinEnumerateOverDict(t *testing.T) {
	v := run(t, `enumerate {a: 1, b: 2}`)
	list := v.AsList()
	if len(list) != 2 {
		t.Fatalf("got %v, want 2 pairs", v)
	}
	first := list[0].AsList()
	if first[0].AsText() != "a" || first[1].AsInt() != 1 {
		t.Fatalf("enumerate dict[0] = %v, want [\"a\", 1]", list[0])
	}
	second := list[1].AsList()
	if second[0].AsText() != "b" || second[1].AsInt() != 2 {
		t.Fatalf("enumerate dict[1] = %v, want [\"b\", 2]", list[1])
	}
}

func TestBuiltinSum(t *testing.T) {
	if v := run(t, `sum ([1, 2, 3])`); v.AsInt() != 6 {
		t.Fatalf("sum ints = %v, want 6", v)
	}
	v := run(t, `sum ([1, 2.5])`)
	if v.Kind != KindFloat || v.AsFloat() != 3.5 {
		t.Fatalf("sum mixed = %v, want Float(3.5)", v)
	}
}

func TestBuiltinMaxMin(t *testing.T) {
	if v := run(t, `max ([3, 1, 4, 1, 5])`); v.AsInt() != 5 {
		t.Fatalf("max = %v, want 5", v)
	}
	if v := run(t, `min ([3, 1, 4, 1, 5])`); v.AsInt() != 1 {
		t.Fatalf("min = %v, want 1", v)
	}
	err := runErr(t, `max ([])`)
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != KindOverflowOrDomain {
		t.Fatalf("got %v, want a KindOverflowOrDomain diagnostic", err)
	}
}

func TestBuiltinAllAny(t *testing.T) {
	if v := run(t, `all ([true, true])`); !v.AsBool() {
		t.Fatal("expected all [true, true] to be true")
	}
	if v := run(t, `all ([true, false])`); v.AsBool() {
		t.Fatal("expected all [true, false] to be false")
	}
	if v := run(t, `any ([false, true])`); !v.AsBool() {
		t.Fatal("expected any [false, true] to be true")
	}
}

func TestBuiltinSort(t *testing.T) {
	v := run(t, `sort ([3, 1, 2])`)
	list := v.AsList()
	if list[0].AsInt() != 1 || list[1].AsInt() != 2 || list[2].AsInt() != 3 {
		t.Fatalf("sort = %v, want [1, 2, 3]", v)
	}
}

func TestBuiltinKeysValues(t *testing.T) {
	v := run(t, `keys {a: 1, b: 2}`)
	list := v.AsList()
	if len(list) != 2 || list[0].AsText() != "a" || list[1].AsText() != "b" {
		t.Fatalf("keys = %v, want [\"a\", \"b\"] in insertion order", v)
	}
	v = run(t, `values {a: 1, b: 2}`)
	list = v.AsList()
	if list[0].AsInt() != 1 || list[1].AsInt() != 2 {
		t.Fatalf("values = %v, want [1, 2]", v)
	}
}

func TestBuiltinSplitJoin(t *testing.T) {
	v := run(t, `split "," "a,b,c"`)
	list := v.AsList()
	if len(list) != 3 || list[1].AsText() != "b" {
		t.Fatalf("split = %v, want [\"a\", \"b\", \"c\"]", v)
	}
	v = run(t, `join "-" (["a", "b", "c"])`)
	if v.AsText() != "a-b-c" {
		t.Fatalf("join = %v, want \"a-b-c\"", v)
	}
}

func TestBuiltinReplace(t *testing.T) {
	v := run(t, `replace "o" "0" "foo bar"`)
	if v.AsText() != "f00 bar" {
		t.Fatalf("replace = %v, want \"f00 bar\"", v)
	}
}

func TestBuiltinTrimAndCase(t *testing.T) {
	if v := run(t, `trim "  hi  "`); v.AsText() != "hi" {
		t.Fatalf("trim = %v, want \"hi\"", v)
	}
	if v := run(t, `trim_start "  hi  "`); v.AsText() != "hi  " {
		t.Fatalf("trim_start = %v, want \"hi  \"", v)
	}
	if v := run(t, `trim_end "  hi  "`); v.AsText() != "  hi" {
		t.Fatalf("trim_end = %v, want \"  hi\"", v)
	}
	if v := run(t, `lowercase "HI"`); v.AsText() != "hi" {
		t.Fatalf("lowercase = %v, want \"hi\"", v)
	}
	if v := run(t, `uppercase "hi"`); v.AsText() != "HI" {
		t.Fatalf("uppercase = %v, want \"HI\"", v)
	}
}

func TestBuiltinStartsEndsWith(t *testing.T) {
	if v := run(t, `starts_with "fo" "foo"`); !v.AsBool() {
		t.Fatal("expected starts_with \"fo\" \"foo\" to be true")
	}
	if v := run(t, `ends_with "oo" "foo"`); !v.AsBool() {
		t.Fatal("expected ends_with \"oo\" \"foo\" to be true")
	}
	if v := run(t, `ends_with "fo" "foo"`); v.AsBool() {
		t.Fatal("expected ends_with \"fo\" \"foo\" to be false")
	}
}

func TestBuiltinParseIntFloat(t *testing.T) {
	if v := run(t, `parse_int "42"`); v.AsInt() != 42 {
		t.Fatalf("parse_int = %v, want 42", v)
	}
	if v := run(t, `parse_float "3.5"`); v.AsFloat() != 3.5 {
		t.Fatalf("parse_float = %v, want 3.5", v)
	}
	err := runErr(t, `parse_int "nope"`)
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != KindOverflowOrDomain {
		t.Fatalf("got %v, want a KindOverflowOrDomain diagnostic", err)
	}
}

func TestBuiltinWrongKindReportsTypeMismatch(t *testing.T) {
	err := runErr(t, `len 42`)
	d, ok := err.(*Diagnostic)
	if !ok || d.Kind != KindTypeMismatch {
		t.Fatalf("got %v, want a KindTypeMismatch diagnostic", err)
	}
}
