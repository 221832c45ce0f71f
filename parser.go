// parser.go — recursive-descent parser producing the ast.go node types.
//
// Precedence, tightest to loosest: postfix access/cast/index, juxtaposition
// (function application), `* / %`, `+ -`, comparisons (`== != > >= < <= in
// #`), `and`, `or`, `?` (default-if-null). Juxtaposition has no token of its
// own: two adjacent terms with nothing between them is a function call,
// binding tighter than every other binary operator but looser than postfix
// indexing — `f [1,2]` therefore indexes f by the list [1,2] rather than
// calling f with a list argument; write `f ([1, 2])` to apply f to a list
// literal. This resolution, and the "unparenthesized block bodies are a
// single expression" rule below, are recorded in DESIGN.md.
//
// A block body that is not wrapped in parentheses is parsed as a single
// expression, never a nested sequence of bindings — the only way to write a
// multi-binding value is to wrap it in parentheses, e.g.
// `let x = (let a = 1; a + 1)`. Without this rule, an inline `let name
// pattern = <block>` body would have no unambiguous way to know where its
// own block ends and the next top-level binding begins.
package glint

// Parser consumes a token stream and builds an AST.
type Parser struct {
	toks []Token
	pos  int
	key  string
}

// Parse tokenizes and parses src (tagged with key for diagnostics) into a
// top-level Block.
func Parse(src, key string) (*Block, error) {
	lx := NewLexer(src, key)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, key: key}
	block, err := p.parseBlock(p.atEOF)
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errorf("unexpected %s after end of program", p.cur().Lexeme)
	}
	return block, nil
}

// --- token stream helpers ---

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool { return p.cur().Type == EOF }

func (p *Parser) check(tt TokenType) bool { return p.cur().Type == tt }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if !p.check(tt) {
		return Token{}, p.errorf("expected %s, found %q", what, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) *Diagnostic {
	t := p.cur()
	return newDiag(KindSyntaxError, Span{Key: p.key, Line: t.Line, Col: t.Col}, format, args...)
}

func (p *Parser) pos2() Pos {
	t := p.cur()
	return Pos{Line: t.Line, Col: t.Col}
}

// --- blocks and bindings ---

// parseBlock consumes bindings until isEnd reports true, then either
// returns (no trailing expression) or parses one trailing expression.
func (p *Parser) parseBlock(isEnd func() bool) (*Block, error) {
	var bindings []Binding
	for {
		if isEnd() {
			return &Block{Bindings: bindings}, nil
		}
		if p.check(KW_LET) || p.check(KW_TYPE) {
			b, err := p.parseBinding()
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, b)
			if isEnd() {
				return &Block{Bindings: bindings}, nil
			}
			if !p.check(SEMI) {
				return nil, p.errorf("expected ';' after binding, found %q", p.cur().Lexeme)
			}
			p.advance()
			continue
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Block{Bindings: bindings, Result: expr}, nil
	}
}

func (p *Parser) parseBinding() (Binding, error) {
	pos := p.pos2()
	if p.match(KW_TYPE) {
		name, err := p.expect(IDENT, "type alias name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(ASSIGN, "'='"); err != nil {
			return nil, err
		}
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return TypeAliasDecl{Name: name.Lexeme, Type: t, pos: pos}, nil
	}

	if _, err := p.expect(KW_LET, "'let'"); err != nil {
		return nil, err
	}

	// `let <identifier> <pattern> = body` (pattern-defined function) vs
	// `let <pattern> = body` (destructuring). Disambiguate by trying the
	// function form first: an identifier followed immediately by a pattern
	// start means a function clause.
	if p.check(IDENT) && p.tokenStartsPattern(p.peekAt(1)) {
		name := p.advance()
		param, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(ASSIGN, "'='"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return LetFunction{Name: name.Lexeme, Param: param, Value: body, pos: pos}, nil
	}

	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return LetDestructure{Pattern: pat, Value: body, pos: pos}, nil
}

func (p *Parser) peekAt(n int) Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

// tokenStartsPattern reports whether t can begin a pattern, used to decide
// whether "let IDENT ..." is a function clause (identifier name, then a
// parameter pattern) rather than a plain destructuring binding.
func (p *Parser) tokenStartsPattern(t Token) bool {
	switch t.Type {
	case IDENT, KW_WILDCARD, LBRACK, LBRACE, STRING, INTEGER, FLOAT, KW_TRUE, KW_FALSE, KW_NULL, MINUS:
		return true
	default:
		return false
	}
}

// --- expressions, by precedence (loosest to tightest) ---

func (p *Parser) parseExpr() (Expr, error) { return p.parseDefault() }

func (p *Parser) parseDefault() (Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.check(QUESTION) {
		pos := p.pos2()
		p.advance()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = Binary{exprBase{pos}, "?", left, right}
	}
	return left, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(KW_OR) {
		pos := p.pos2()
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Binary{exprBase{pos}, "or", left, right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.check(KW_AND) {
		pos := p.pos2()
		p.advance()
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = Binary{exprBase{pos}, "and", left, right}
	}
	return left, nil
}

func (p *Parser) parseCompare() (Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.cur().Type {
		case EQ:
			op = "=="
		case NEQ:
			op = "!="
		case LT:
			op = "<"
		case LE:
			op = "<="
		case GT:
			op = ">"
		case GE:
			op = ">="
		case KW_IN:
			op = "in"
		case HASH:
			pos := p.pos2()
			p.advance()
			t, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			left = TypeMatch{exprBase{pos}, left, t}
			continue
		default:
			return left, nil
		}
		pos := p.pos2()
		p.advance()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = Binary{exprBase{pos}, op, left, right}
	}
}

func (p *Parser) parseAdd() (Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := "+"
		if p.check(MINUS) {
			op = "-"
		}
		pos := p.pos2()
		p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = Binary{exprBase{pos}, op, left, right}
	}
	return left, nil
}

func (p *Parser) parseMul() (Expr, error) {
	left, err := p.parseJuxtaposition()
	if err != nil {
		return nil, err
	}
	for p.check(STAR) || p.check(SLASH) || p.check(PERCENT) {
		var op string
		switch p.cur().Type {
		case STAR:
			op = "*"
		case SLASH:
			op = "/"
		case PERCENT:
			op = "%"
		}
		pos := p.pos2()
		p.advance()
		right, err := p.parseJuxtaposition()
		if err != nil {
			return nil, err
		}
		left = Binary{exprBase{pos}, op, left, right}
	}
	return left, nil
}

// parseJuxtaposition parses a chain of adjacent terms as left-associative
// function application: `f x y` is `(f x) y`.
func (p *Parser) parseJuxtaposition() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.startsTerm() {
		pos := p.pos2()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{exprBase{pos}, "apply", left, arg}
	}
	return left, nil
}

// startsTerm reports whether the current token can begin a new term, used
// to detect continued juxtaposition without consuming the token. `-` is left
// out so `a - b` stays a subtraction, and `if` is left out so a trailing
// comprehension or dict-entry guard ends the expression before it; a
// conditional used as an argument is written in parentheses.
func (p *Parser) startsTerm() bool {
	switch p.cur().Type {
	case IDENT, INTEGER, FLOAT, STRING, TEMPLATE, LPAREN, LBRACK, LBRACE,
		KW_TRUE, KW_FALSE, KW_NULL, KW_IMPORT, KW_NOT:
		return true
	default:
		return false
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.check(KW_NOT) || p.check(MINUS) {
		pos := p.pos2()
		op := "not"
		if p.check(MINUS) {
			op = "-"
		}
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{exprBase{pos}, op, x}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(DOT):
			pos := p.pos2()
			p.advance()
			name, err := p.expect(IDENT, "field name after '.'")
			if err != nil {
				return nil, err
			}
			x = Access{exprBase{pos}, x, name.Lexeme}
		case p.check(LBRACK):
			pos := p.pos2()
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACK, "']'"); err != nil {
				return nil, err
			}
			x = Index{exprBase{pos}, x, idx}
		case p.check(KW_AS):
			pos := p.pos2()
			p.advance()
			var target string
			switch {
			case p.match(KW_INT):
				target = "int"
			case p.match(KW_FLOAT_T):
				target = "float"
			case p.match(KW_TEXT):
				target = "text"
			default:
				return nil, p.errorf("expected int, float or text after 'as', found %q", p.cur().Lexeme)
			}
			x = Cast{exprBase{pos}, x, target}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	t := p.cur()
	pos := Pos{Line: t.Line, Col: t.Col}
	switch t.Type {
	case KW_NULL:
		p.advance()
		return NullLit{exprBase{pos}}, nil
	case KW_TRUE:
		p.advance()
		return BoolLit{exprBase{pos}, true}, nil
	case KW_FALSE:
		p.advance()
		return BoolLit{exprBase{pos}, false}, nil
	case INTEGER:
		p.advance()
		return IntLit{exprBase{pos}, t.Literal.(int64)}, nil
	case FLOAT:
		p.advance()
		return FloatLit{exprBase{pos}, t.Literal.(float64)}, nil
	case STRING:
		p.advance()
		return TextLit{exprBase{pos}, t.Literal.(string)}, nil
	case TEMPLATE:
		p.advance()
		return p.parseTemplate(t, pos)
	case IDENT:
		p.advance()
		return Ident{exprBase{pos}, t.Lexeme}, nil
	case KW_IF:
		return p.parseIf()
	case KW_IMPORT:
		return p.parseImport()
	case LPAREN:
		p.advance()
		block, err := p.parseBlock(func() bool { return p.check(RPAREN) })
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
		return BlockExpr{exprBase{pos}, block}, nil
	case LBRACK:
		return p.parseListLitOrComp(pos)
	case LBRACE:
		return p.parseDictLitOrComp(pos)
	default:
		return nil, p.errorf("unexpected %q", t.Lexeme)
	}
}

func (p *Parser) parseIf() (Expr, error) {
	pos := p.pos2()
	p.advance() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KW_THEN, "'then'"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KW_ELSE, "'else'"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return If{exprBase{pos}, cond, then, els}, nil
}

// parseImport parses `import "literal" [as text] [or default]`. The
// trailing "or" clause reuses the KW_OR token, the same one used for the
// logical-or operator.
func (p *Parser) parseImport() (Expr, error) {
	pos := p.pos2()
	p.advance() // 'import'
	lit, err := p.expect(STRING, "import literal")
	if err != nil {
		return nil, err
	}
	imp := Import{exprBase: exprBase{pos}, Literal: lit.Literal.(string)}
	if p.match(KW_AS) {
		if _, err := p.expect(KW_TEXT, "'text' after 'as'"); err != nil {
			return nil, err
		}
		imp.AsText = true
	}
	if p.match(KW_OR) {
		def, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		imp.Or = def
	}
	return imp, nil
}

func (p *Parser) parseTemplate(t Token, pos Pos) (Expr, error) {
	raw := t.Literal.(string)
	parts, err := p.splitTemplate(raw, pos)
	if err != nil {
		return nil, err
	}
	return TemplateLit{exprBase{pos}, parts}, nil
}

// splitTemplate turns the raw backtick contents into alternating TextLit
// literal chunks and parsed `${...}` expression chunks.
func (p *Parser) splitTemplate(raw string, pos Pos) ([]Expr, error) {
	var parts []Expr
	var lit []rune
	runes := []rune(raw)
	flush := func() {
		if len(lit) > 0 {
			parts = append(parts, TextLit{exprBase{pos}, decodeTemplateLiteral(string(lit))})
			lit = nil
		}
	}
	i := 0
	for i < len(runes) {
		if runes[i] == '$' && i+1 < len(runes) && runes[i+1] == '{' {
			flush()
			depth := 1
			j := i + 2
			for j < len(runes) && depth > 0 {
				switch runes[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						break
					}
				}
				if depth > 0 {
					j++
				}
			}
			if depth != 0 {
				return nil, newDiag(KindSyntaxError, Span{Key: p.key, Line: pos.Line, Col: pos.Col}, "unterminated '${' in template")
			}
			sub := string(runes[i+2 : j])
			expr, err := p.parseSubExpr(sub)
			if err != nil {
				return nil, err
			}
			parts = append(parts, expr)
			i = j + 1
			continue
		}
		lit = append(lit, runes[i])
		i++
	}
	flush()
	return parts, nil
}

// parseSubExpr parses one interpolation body as a standalone expression,
// tagged with the same import key as the enclosing parser.
func (p *Parser) parseSubExpr(src string) (Expr, error) {
	lx := NewLexer(src, p.key)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	sub := &Parser{toks: toks, key: p.key}
	e, err := sub.parseExpr()
	if err != nil {
		return nil, err
	}
	if !sub.atEOF() {
		return nil, sub.errorf("unexpected %q in template interpolation", sub.cur().Lexeme)
	}
	return e, nil
}

func decodeTemplateLiteral(s string) string {
	var b []rune
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
			switch runes[i] {
			case 'n':
				b = append(b, '\n')
			case 't':
				b = append(b, '\t')
			case '`':
				b = append(b, '`')
			case '$':
				b = append(b, '$')
			case '\\':
				b = append(b, '\\')
			default:
				b = append(b, '\\', runes[i])
			}
			continue
		}
		b = append(b, runes[i])
	}
	return string(b)
}

// --- lists ---

func (p *Parser) parseListLitOrComp(pos Pos) (Expr, error) {
	p.advance() // '['
	if p.match(RBRACK) {
		return ListLit{exprBase{pos}, nil}, nil
	}

	spread, first, err := p.parseListItem()
	if err != nil {
		return nil, err
	}

	if p.check(KW_FOR) {
		clauses, guard, err := p.parseCompTail()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACK, "']'"); err != nil {
			return nil, err
		}
		return ListComp{exprBase{pos}, first, clauses, guard}, nil
	}

	items := []ListItem{{Spread: spread, Value: first}}
	for p.match(COMMA) {
		if p.check(RBRACK) {
			break
		}
		sp, v, err := p.parseListItem()
		if err != nil {
			return nil, err
		}
		items = append(items, ListItem{Spread: sp, Value: v})
	}
	if _, err := p.expect(RBRACK, "']'"); err != nil {
		return nil, err
	}
	return ListLit{exprBase{pos}, items}, nil
}

func (p *Parser) parseListItem() (bool, Expr, error) {
	if p.match(ELLIPSIS) {
		v, err := p.parseExpr()
		return true, v, err
	}
	v, err := p.parseExpr()
	return false, v, err
}

// parseCompTail parses `for p1 in e1 for p2 in e2 ... [if guard]`, with the
// leading "for" not yet consumed.
func (p *Parser) parseCompTail() ([]CompClause, Expr, error) {
	var clauses []CompClause
	for p.match(KW_FOR) {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(KW_IN, "'in'"); err != nil {
			return nil, nil, err
		}
		src, err := p.parseExpr()
		if err != nil {
			return nil, nil, err
		}
		clauses = append(clauses, CompClause{Pattern: pat, Source: src})
	}
	var guard Expr
	if p.match(KW_IF) {
		g, err := p.parseExpr()
		if err != nil {
			return nil, nil, err
		}
		guard = g
	}
	return clauses, guard, nil
}

// --- dicts ---

func (p *Parser) parseDictLitOrComp(pos Pos) (Expr, error) {
	p.advance() // '{'
	if p.match(RBRACE) {
		return DictLit{exprBase{pos}, nil}, nil
	}

	if p.match(ELLIPSIS) {
		spreadExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items := []DictItem{{Spread: true, Expr: spreadExpr}}
		for p.match(COMMA) {
			if p.check(RBRACE) {
				break
			}
			item, err := p.parseDictItem()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := p.expect(RBRACE, "'}'"); err != nil {
			return nil, err
		}
		return DictLit{exprBase{pos}, items}, nil
	}

	if p.dictKeyIsBareSugar() {
		return p.parseDictLitBareSugarFirst(pos)
	}

	keyTok := p.cur()
	keyExpr, err := p.parseDictKey()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "':'"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.check(KW_FOR) {
		if _, isText := keyExpr.(TextLit); isText && keyTok.Type == IDENT {
			keyExpr = Ident{exprBase{Pos{Line: keyTok.Line, Col: keyTok.Col}}, keyTok.Lexeme}
		}
		clauses, guard, err := p.parseCompTail()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACE, "'}'"); err != nil {
			return nil, err
		}
		return DictComp{exprBase{pos}, keyExpr, value, clauses, guard}, nil
	}

	var guard Expr
	if p.match(KW_IF) {
		g, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		guard = g
	}
	items := []DictItem{{KeyExpr: keyExpr, Value: value, Guard: guard}}
	for p.match(COMMA) {
		if p.check(RBRACE) {
			break
		}
		item, err := p.parseDictItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := p.expect(RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return DictLit{exprBase{pos}, items}, nil
}

func (p *Parser) parseDictItem() (DictItem, error) {
	if p.match(ELLIPSIS) {
		e, err := p.parseExpr()
		if err != nil {
			return DictItem{}, err
		}
		return DictItem{Spread: true, Expr: e}, nil
	}
	if p.dictKeyIsBareSugar() {
		return p.parseDictItemBareSugar()
	}
	keyExpr, err := p.parseDictKey()
	if err != nil {
		return DictItem{}, err
	}
	if _, err := p.expect(COLON, "':'"); err != nil {
		return DictItem{}, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return DictItem{}, err
	}
	var guard Expr
	if p.match(KW_IF) {
		g, err := p.parseExpr()
		if err != nil {
			return DictItem{}, err
		}
		guard = g
	}
	return DictItem{KeyExpr: keyExpr, Value: value, Guard: guard}, nil
}

// dictKeyIsBareSugar reports whether the current token begins the `{x}`
// shorthand for `{x: x}`: a bare identifier whose next token ends the entry
// (',', '}', or a guard 'if') rather than continuing into a computed-key
// expression like `x.y: 1` or `x[0]: 1`.
func (p *Parser) dictKeyIsBareSugar() bool {
	t := p.cur()
	if t.Type != IDENT {
		return false
	}
	switch p.peekAt(1).Type {
	case COMMA, RBRACE, KW_IF:
		return true
	default:
		return false
	}
}

// parseDictItemBareSugar parses one `x` entry (optionally guarded by `if`)
// as the DictItem equivalent of `x: x`.
func (p *Parser) parseDictItemBareSugar() (DictItem, error) {
	t := p.advance()
	pos := Pos{Line: t.Line, Col: t.Col}
	keyExpr := TextLit{exprBase{pos}, t.Lexeme}
	value := Ident{exprBase{pos}, t.Lexeme}
	var guard Expr
	if p.match(KW_IF) {
		g, err := p.parseExpr()
		if err != nil {
			return DictItem{}, err
		}
		guard = g
	}
	return DictItem{KeyExpr: keyExpr, Value: value, Guard: guard}, nil
}

// parseDictLitBareSugarFirst parses the first entry of a `{...}` literal
// when it begins with the `{x}` bare-identifier sugar, then any further
// comma-separated entries (sugared or explicit).
func (p *Parser) parseDictLitBareSugarFirst(pos Pos) (Expr, error) {
	first, err := p.parseDictItemBareSugar()
	if err != nil {
		return nil, err
	}
	items := []DictItem{first}
	for p.match(COMMA) {
		if p.check(RBRACE) {
			break
		}
		item, err := p.parseDictItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := p.expect(RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return DictLit{exprBase{pos}, items}, nil
}

// parseDictKey handles the literal-key sugar: a bare identifier or string
// directly followed by ':' is a constant text key, not a variable lookup.
// Any other token starts a full expression, used by computed keys and by
// comprehension keys, where a bare identifier does mean a variable
// reference.
func (p *Parser) parseDictKey() (Expr, error) {
	t := p.cur()
	pos := Pos{Line: t.Line, Col: t.Col}
	if t.Type == IDENT && p.peekAt(1).Type == COLON {
		p.advance()
		return TextLit{exprBase{pos}, t.Lexeme}, nil
	}
	if t.Type == STRING && p.peekAt(1).Type == COLON {
		p.advance()
		return TextLit{exprBase{pos}, t.Literal.(string)}, nil
	}
	return p.parseExpr()
}

// --- patterns ---

func (p *Parser) parsePattern() (*Pattern, error) {
	pos := p.pos2()
	t := p.cur()
	switch t.Type {
	case KW_WILDCARD:
		p.advance()
		return &Pattern{pos: pos, Kind: PatWildcard}, nil
	case IDENT:
		p.advance()
		pat := &Pattern{pos: pos, Kind: PatIdent, Name: t.Lexeme}
		if p.match(COLON) {
			typ, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			pat.Type = typ
		}
		return pat, nil
	case STRING, INTEGER, FLOAT, KW_TRUE, KW_FALSE, KW_NULL, MINUS:
		lit, err := p.parseLiteralForPattern()
		if err != nil {
			return nil, err
		}
		return &Pattern{pos: pos, Kind: PatLiteral, Literal: lit}, nil
	case LBRACK:
		return p.parseListPattern()
	case LBRACE:
		return p.parseDictPattern()
	default:
		return nil, p.errorf("expected pattern, found %q", t.Lexeme)
	}
}

// parseLiteralForPattern parses a literal pattern term: a plain literal, or
// a leading '-' applied to a numeric literal.
func (p *Parser) parseLiteralForPattern() (Expr, error) {
	pos := p.pos2()
	if p.match(MINUS) {
		inner, err := p.parseLiteralForPattern()
		if err != nil {
			return nil, err
		}
		return Unary{exprBase{pos}, "-", inner}, nil
	}
	t := p.cur()
	switch t.Type {
	case STRING:
		p.advance()
		return TextLit{exprBase{pos}, t.Literal.(string)}, nil
	case INTEGER:
		p.advance()
		return IntLit{exprBase{pos}, t.Literal.(int64)}, nil
	case FLOAT:
		p.advance()
		return FloatLit{exprBase{pos}, t.Literal.(float64)}, nil
	case KW_TRUE:
		p.advance()
		return BoolLit{exprBase{pos}, true}, nil
	case KW_FALSE:
		p.advance()
		return BoolLit{exprBase{pos}, false}, nil
	case KW_NULL:
		p.advance()
		return NullLit{exprBase{pos}}, nil
	default:
		return nil, p.errorf("expected a literal, found %q", t.Lexeme)
	}
}

func (p *Parser) parseListPattern() (*Pattern, error) {
	pos := p.pos2()
	p.advance() // '['
	if p.match(RBRACK) {
		return &Pattern{pos: pos, Kind: PatListExact}, nil
	}
	if p.match(DOTDOT) {
		if _, err := p.expect(COMMA, "','"); err != nil {
			return nil, err
		}
		elems, err := p.parsePatternList(RBRACK)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACK, "']'"); err != nil {
			return nil, err
		}
		return &Pattern{pos: pos, Kind: PatListTail, Elems: elems}, nil
	}

	var elems []*Pattern
	first, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	elems = append(elems, first)
	kind := PatListExact
	for p.match(COMMA) {
		if p.check(RBRACK) {
			break
		}
		if p.match(DOTDOT) {
			kind = PatListHead
			break
		}
		e, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(RBRACK, "']'"); err != nil {
		return nil, err
	}
	return &Pattern{pos: pos, Kind: kind, Elems: elems}, nil
}

func (p *Parser) parsePatternList(end TokenType) ([]*Pattern, error) {
	var elems []*Pattern
	if p.check(end) {
		return elems, nil
	}
	first, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	elems = append(elems, first)
	for p.match(COMMA) {
		if p.check(end) {
			break
		}
		e, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return elems, nil
}

func (p *Parser) parseDictPattern() (*Pattern, error) {
	pos := p.pos2()
	p.advance() // '{'
	kind := PatDictStrict
	var entries []DictPatternEntry
	if p.match(RBRACE) {
		return &Pattern{pos: pos, Kind: kind, Entries: entries}, nil
	}
	for {
		if p.match(DOTDOT) {
			kind = PatDictOpen
			break
		}
		key, err := p.expect(IDENT, "dict pattern key")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON, "':'"); err != nil {
			return nil, err
		}
		sub, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		entries = append(entries, DictPatternEntry{Key: key.Lexeme, Sub: sub})
		if !p.match(COMMA) {
			break
		}
		if p.check(RBRACE) {
			break
		}
	}
	if _, err := p.expect(RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &Pattern{pos: pos, Kind: kind, Entries: entries}, nil
}

// --- type expressions ---

var primitiveTypeNames = map[TokenType]string{
	KW_INT:     "int",
	KW_FLOAT_T: "float",
	KW_TEXT:    "text",
	KW_BOOL:    "bool",
	KW_NUMBER:  "number",
	KW_ANY:     "any",
}

func (p *Parser) parseTypeExpr() (TypeExpr, error) {
	return p.parseUnionType()
}

func (p *Parser) parseUnionType() (TypeExpr, error) {
	first, err := p.parseNullableType()
	if err != nil {
		return nil, err
	}
	alts := []TypeExpr{first}
	for p.matchPipe() {
		t, err := p.parseNullableType()
		if err != nil {
			return nil, err
		}
		alts = append(alts, t)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return UnionType{Alts: alts}, nil
}

// matchPipe recognizes the union type separator '|'.
func (p *Parser) matchPipe() bool { return p.match(PIPE) }

func (p *Parser) parseNullableType() (TypeExpr, error) {
	if p.match(QUESTION) {
		inner, err := p.parseAtomType()
		if err != nil {
			return nil, err
		}
		return NullableType{Inner: inner}, nil
	}
	return p.parseAtomType()
}

func (p *Parser) parseAtomType() (TypeExpr, error) {
	t := p.cur()
	if name, ok := primitiveTypeNames[t.Type]; ok {
		p.advance()
		return PrimitiveType{Name: name}, nil
	}
	switch t.Type {
	case KW_NULL:
		p.advance()
		return PrimitiveType{Name: "null"}, nil
	case IDENT:
		p.advance()
		return AliasRefType{Name: t.Lexeme}, nil
	case LBRACK:
		p.advance()
		first, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if p.match(RBRACK) {
			return ListType{Elem: first}, nil
		}
		elems := []TypeExpr{first}
		for p.match(COMMA) {
			if p.check(RBRACK) {
				break
			}
			e, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(RBRACK, "']'"); err != nil {
			return nil, err
		}
		return TupleType{Elems: elems}, nil
	case LBRACE:
		return p.parseBraceType()
	default:
		return nil, p.errorf("expected a type, found %q", t.Lexeme)
	}
}

func (p *Parser) parseBraceType() (TypeExpr, error) {
	p.advance() // '{'
	if p.match(RBRACE) {
		return RecordType{Open: false}, nil
	}
	// `{k: T, ...}` is a record; `{T}` (no colon after the first type) is a
	// homogeneous dict type.
	if p.check(IDENT) && p.peekAt(1).Type == COLON {
		var fields []RecordField
		open := false
		for {
			if p.match(DOTDOT) {
				open = true
				break
			}
			key, err := p.expect(IDENT, "record field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON, "':'"); err != nil {
				return nil, err
			}
			ft, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, RecordField{Key: key.Lexeme, Type: ft})
			if !p.match(COMMA) {
				break
			}
			if p.check(RBRACE) {
				break
			}
		}
		if _, err := p.expect(RBRACE, "'}'"); err != nil {
			return nil, err
		}
		return RecordType{Fields: fields, Open: open}, nil
	}

	elem, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return DictType{Elem: elem}, nil
}
