package glint

import "testing"

func TestConformsPrimitives(t *testing.T) {
	env := NewRootEnv()
	cases := []struct {
		v    Value
		t    TypeExpr
		want bool
	}{
		{Int(1), PrimitiveType{Name: "int"}, true},
		{Float(1), PrimitiveType{Name: "int"}, false},
		{Int(1), PrimitiveType{Name: "float"}, true},
		{Float(1), PrimitiveType{Name: "float"}, true},
		{Int(1), PrimitiveType{Name: "number"}, true},
		{Float(1), PrimitiveType{Name: "number"}, true},
		{Text("x"), PrimitiveType{Name: "number"}, false},
		{Null, PrimitiveType{Name: "any"}, true},
		{Null, PrimitiveType{Name: "null"}, true},
		{Bool(true), PrimitiveType{Name: "null"}, false},
	}
	for _, c := range cases {
		got, err := Conforms(c.v, c.t, env)
		if err != nil {
			t.Fatalf("Conforms(%v, %v): %v", c.v, c.t, err)
		}
		if got != c.want {
			t.Errorf("Conforms(%v, %v) = %v, want %v", c.v, c.t, got, c.want)
		}
	}
}

func TestConformsNullable(t *testing.T) {
	env := NewRootEnv()
	ty := NullableType{Inner: PrimitiveType{Name: "int"}}
	ok, err := Conforms(Null, ty, env)
	if err != nil || !ok {
		t.Fatalf("Conforms(null, ?int) = %v, %v, want true", ok, err)
	}
	ok, err = Conforms(Int(1), ty, env)
	if err != nil || !ok {
		t.Fatalf("Conforms(1, ?int) = %v, %v, want true", ok, err)
	}
	ok, err = Conforms(Text("x"), ty, env)
	if err != nil || ok {
		t.Fatalf("Conforms(\"x\", ?int) = %v, %v, want false", ok, err)
	}
}

func TestConformsRecordOpenVsClosed(t *testing.T) {
	env := NewRootEnv()
	d := NewDict()
	d.Set("name", Text("a"))
	d.Set("extra", Bool(true))
	v := DictVal(d)

	closed := RecordType{Fields: []RecordField{{Key: "name", Type: PrimitiveType{Name: "text"}}}}
	ok, err := Conforms(v, closed, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected a closed record type to reject an extra field")
	}

	open := RecordType{Fields: []RecordField{{Key: "name", Type: PrimitiveType{Name: "text"}}}, Open: true}
	ok, err = Conforms(v, open, env)
	if err != nil || !ok {
		t.Fatalf("Conforms with open record = %v, %v, want true", ok, err)
	}
}

func TestConformsAliasRef(t *testing.T) {
	env := NewRootEnv()
	env.DefineType("Id", PrimitiveType{Name: "int"})
	ok, err := Conforms(Int(5), AliasRefType{Name: "Id"}, env)
	if err != nil || !ok {
		t.Fatalf("Conforms via alias = %v, %v, want true", ok, err)
	}
}

func TestConformsUnresolvedAliasErrors(t *testing.T) {
	env := NewRootEnv()
	_, err := Conforms(Int(5), AliasRefType{Name: "Nope"}, env)
	if err == nil {
		t.Fatal("expected an error for an unresolved type alias")
	}
}

func TestConformsUnion(t *testing.T) {
	env := NewRootEnv()
	u := UnionType{Alts: []TypeExpr{PrimitiveType{Name: "int"}, PrimitiveType{Name: "text"}}}
	ok, _ := Conforms(Int(1), u, env)
	if !ok {
		t.Fatal("expected int to conform to int|text")
	}
	ok, _ = Conforms(Text("a"), u, env)
	if !ok {
		t.Fatal("expected text to conform to int|text")
	}
	ok, _ = Conforms(Bool(true), u, env)
	if ok {
		t.Fatal("expected bool not to conform to int|text")
	}
}

func TestTypeStringRendersOpenRecord(t *testing.T) {
	rt := RecordType{Fields: []RecordField{{Key: "x", Type: PrimitiveType{Name: "int"}}}, Open: true}
	got := TypeString(rt)
	want := "{x: int, ..}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
