package glint

import "testing"

func tokenTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, err := NewLexer(src, "").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	var out []TokenType
	for _, tok := range toks {
		out = append(out, tok.Type)
	}
	return out
}

func TestLexerPunctuation(t *testing.T) {
	cases := []struct {
		src  string
		want []TokenType
	}{
		{"..", []TokenType{DOTDOT, EOF}},
		{"...", []TokenType{ELLIPSIS, EOF}},
		{".", []TokenType{DOT, EOF}},
		{"== != <= >= < > =", []TokenType{EQ, NEQ, LE, GE, LT, GT, ASSIGN, EOF}},
		{"# |", []TokenType{HASH, PIPE, EOF}},
	}
	for _, c := range cases {
		got := tokenTypes(t, c.src)
		if len(got) != len(c.want) {
			t.Fatalf("%q: got %v, want %v", c.src, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q: token %d got %v, want %v", c.src, i, got[i], c.want[i])
			}
		}
	}
}

func TestLexerKeywordsNotIdents(t *testing.T) {
	for kw, want := range keywords {
		toks, err := NewLexer(kw, "").Tokenize()
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", kw, err)
		}
		if toks[0].Type != want {
			t.Errorf("%q: got %v, want %v", kw, toks[0].Type, want)
		}
	}
}

func TestLexerNumberLiterals(t *testing.T) {
	toks, err := NewLexer("1_000 3.14 2e10 1.5e-3", "").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []struct {
		typ TokenType
		lit any
	}{
		{INTEGER, int64(1000)},
		{FLOAT, 3.14},
		{FLOAT, 2e10},
		{FLOAT, 1.5e-3},
	}
	for i, w := range want {
		if toks[i].Type != w.typ {
			t.Errorf("token %d: got type %v, want %v", i, toks[i].Type, w.typ)
		}
		if toks[i].Literal != w.lit {
			t.Errorf("token %d: got literal %v, want %v", i, toks[i].Literal, w.lit)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks, err := NewLexer(`"a\nbA\""`, "").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	got := toks[0].Literal.(string)
	want := "a\nbA\""
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLexerLineComment(t *testing.T) {
	toks := tokenTypes(t, "1 // comment\n2")
	want := []TokenType{INTEGER, INTEGER, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %v, want %v", toks, want)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := NewLexer(`"abc`, "").Tokenize()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestLexerTemplateNestedBraces(t *testing.T) {
	toks, err := NewLexer("`hi ${ {a: 1}.a }!`", "").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Type != TEMPLATE {
		t.Fatalf("got %v, want TEMPLATE", toks[0].Type)
	}
}
