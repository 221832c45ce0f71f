package glint

import "testing"

func TestMatchIdentBinds(t *testing.T) {
	pat := &Pattern{Kind: PatIdent, Name: "x"}
	env := NewRootEnv()
	ok, err := Match(pat, Int(42), env)
	if err != nil || !ok {
		t.Fatalf("Match = %v, %v, want true, nil", ok, err)
	}
	v, ok := env.Lookup("x")
	if !ok || v.AsInt() != 42 {
		t.Fatalf("x = %v, want 42", v)
	}
}

func TestMatchWildcardBindsNothing(t *testing.T) {
	pat := &Pattern{Kind: PatWildcard}
	env := NewRootEnv()
	ok, err := Match(pat, Int(1), env)
	if err != nil || !ok {
		t.Fatalf("Match = %v, %v", ok, err)
	}
	if len(env.Names()) != 0 {
		t.Fatalf("got bindings %v, want none", env.Names())
	}
}

func TestMatchListHeadRest(t *testing.T) {
	pat := &Pattern{
		Kind: PatListHead,
		Elems: []*Pattern{
			{Kind: PatIdent, Name: "a"},
			{Kind: PatIdent, Name: "b"},
		},
	}
	env := NewRootEnv()
	ok, err := Match(pat, List([]Value{Int(1), Int(2), Int(3)}), env)
	if err != nil || !ok {
		t.Fatalf("Match = %v, %v", ok, err)
	}
	a, _ := env.Lookup("a")
	if a.AsInt() != 1 {
		t.Fatalf("a = %v, want 1", a)
	}
	b, _ := env.Lookup("b")
	if b.Kind != KindInt || b.AsInt() != 2 {
		t.Fatalf("b = %v, want 2", b)
	}
}

func TestMatchDictStrictRejectsExtraKeys(t *testing.T) {
	pat := &Pattern{
		Kind:    PatDictStrict,
		Entries: []DictPatternEntry{{Key: "a", Sub: &Pattern{Kind: PatIdent, Name: "a"}}},
	}
	d := NewDict()
	d.Set("a", Int(1))
	d.Set("b", Int(2))
	env := NewRootEnv()
	ok, err := Match(pat, DictVal(d), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected strict dict pattern to reject an extra key")
	}
}

func TestMatchDictOpenAllowsExtraKeys(t *testing.T) {
	pat := &Pattern{
		Kind:    PatDictOpen,
		Entries: []DictPatternEntry{{Key: "a", Sub: &Pattern{Kind: PatIdent, Name: "a"}}},
	}
	d := NewDict()
	d.Set("a", Int(1))
	d.Set("b", Int(2))
	env := NewRootEnv()
	ok, err := Match(pat, DictVal(d), env)
	if err != nil || !ok {
		t.Fatalf("Match = %v, %v, want true, nil", ok, err)
	}
}

func TestMatchDoesNotPartiallyCommitOnFailure(t *testing.T) {
	pat := &Pattern{
		Kind: PatListExact,
		Elems: []*Pattern{
			{Kind: PatIdent, Name: "a"},
			{Kind: PatLiteral, Literal: IntLit{Value: 99}},
		},
	}
	env := NewRootEnv()
	ok, err := Match(pat, List([]Value{Int(1), Int(2)}), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected match to fail (second element isn't 99)")
	}
	if _, bound := env.Lookup("a"); bound {
		t.Fatal("expected no binding to survive a failed match")
	}
}

func TestMatchTypedIdentRejectsWrongKind(t *testing.T) {
	pat := &Pattern{Kind: PatIdent, Name: "x", Type: PrimitiveType{Name: "int"}}
	env := NewRootEnv()
	ok, err := Match(pat, Text("nope"), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected a typed ident pattern to reject a mismatched kind")
	}
}

func TestDuplicateNameDetectsNestedDuplicate(t *testing.T) {
	pat := &Pattern{
		Kind: PatListExact,
		Elems: []*Pattern{
			{Kind: PatIdent, Name: "x"},
			{
				Kind: PatDictStrict,
				Entries: []DictPatternEntry{
					{Key: "a", Sub: &Pattern{Kind: PatIdent, Name: "x"}},
				},
			},
		},
	}
	name, dup := duplicateName(pat)
	if !dup || name != "x" {
		t.Fatalf("duplicateName = %q, %v, want \"x\", true", name, dup)
	}
}

func TestDuplicateNameAllowsDistinctNames(t *testing.T) {
	pat := &Pattern{
		Kind: PatListExact,
		Elems: []*Pattern{
			{Kind: PatIdent, Name: "x"},
			{Kind: PatIdent, Name: "y"},
		},
	}
	if _, dup := duplicateName(pat); dup {
		t.Fatal("expected no duplicate")
	}
}
