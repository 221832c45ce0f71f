// ast.go — the abstract syntax tree produced by the parser.
//
// Three small, separate grammars share this file: value expressions, the
// destructuring-pattern grammar, and the type-expression grammar. They share
// terminals (identifiers, literals) but are distinct node families so the
// parser and evaluator can never confuse "a value" with "a type": using one
// where the other is expected is a parse- or evaluation-time error, never a
// silent coercion.
package glint

// Pos is a 1-based source position within one resolved import key.
type Pos struct {
	Line int
	Col  int
}

// Expr is any value-expression AST node.
type Expr interface {
	exprNode()
	Pos() Pos
}

type exprBase struct{ pos Pos }

func (e exprBase) Pos() Pos { return e.pos }

// Literals.

type NullLit struct{ exprBase }
type BoolLit struct {
	exprBase
	Value bool
}
type IntLit struct {
	exprBase
	Value int64
}
type FloatLit struct {
	exprBase
	Value float64
}
type TextLit struct {
	exprBase
	Value string
}

// TemplateLit is a backtick string with interpolated expressions.
// Parts alternate (conceptually) between literal chunks and expressions;
// a literal chunk is represented as a TextLit part.
type TemplateLit struct {
	exprBase
	Parts []Expr // each is *TextLit or any Expr
}

type Ident struct {
	exprBase
	Name string
}

// ListLit is `[e1, e2, ...]`, where any item may be a spread (`...e`).
type ListLit struct {
	exprBase
	Items []ListItem
}

type ListItem struct {
	Spread bool
	Value  Expr
}

// DictLit is `{k1: v1, k2: v2, ...}`. An item is either a spread (`...e`) or
// a key/value pair with an optional `if` guard.
type DictLit struct {
	exprBase
	Items []DictItem
}

type DictItem struct {
	Spread bool
	Expr   Expr // valid when Spread

	KeyExpr Expr // valid when !Spread; must evaluate to Text
	Value   Expr // valid when !Spread
	Guard   Expr // optional, valid when !Spread
}

// CompClause is one `for pattern in source` clause of a comprehension.
type CompClause struct {
	Pattern *Pattern
	Source  Expr
}

// ListComp is `[ body for p1 in e1 for p2 in e2 ... if guard ]`.
type ListComp struct {
	exprBase
	Body    Expr
	Clauses []CompClause
	Guard   Expr // nil if absent
}

// DictComp is `{ key: value for p1 in e1 ... if guard }`.
type DictComp struct {
	exprBase
	Key     Expr
	Value   Expr
	Clauses []CompClause
	Guard   Expr
}

type If struct {
	exprBase
	Cond, Then, Else Expr
}

// Import is `import "literal" [as text] [or default]`.
type Import struct {
	exprBase
	Literal string
	AsText  bool
	Or      Expr // nil if absent
}

// Unary is prefix `not x` or `- x`.
type Unary struct {
	exprBase
	Op string // "not" | "-"
	X  Expr
}

// Binary covers all infix operators, including juxtaposition ("apply").
type Binary struct {
	exprBase
	Op   string // "apply" | "*" "/" "%" "+" "-" "==" "!=" ">" ">=" "<" "<=" "in" "#" "and" "or" "?"
	X, Y Expr
}

// Access is `.ident` sugar for `["ident"]`.
type Access struct {
	exprBase
	X    Expr
	Name string
}

// Index is `x[e]`.
type Index struct {
	exprBase
	X, Index Expr
}

// Cast is `x as int|float|text`.
type Cast struct {
	exprBase
	X      Expr
	Target string // "int" | "float" | "text"
}

// TypeMatch is `x # T`.
type TypeMatch struct {
	exprBase
	X    Expr
	Type TypeExpr
}

// BlockExpr embeds a Block so it can appear wherever an Expr is expected
// (parenthesized grouping, function bodies, import targets).
type BlockExpr struct {
	exprBase
	Block *Block
}

func (NullLit) exprNode()     {}
func (BoolLit) exprNode()     {}
func (IntLit) exprNode()      {}
func (FloatLit) exprNode()    {}
func (TextLit) exprNode()     {}
func (TemplateLit) exprNode() {}
func (Ident) exprNode()       {}
func (ListLit) exprNode()     {}
func (DictLit) exprNode()     {}
func (ListComp) exprNode()    {}
func (DictComp) exprNode()    {}
func (If) exprNode()          {}
func (Import) exprNode()      {}
func (Unary) exprNode()       {}
func (Binary) exprNode()      {}
func (Access) exprNode()      {}
func (Index) exprNode()       {}
func (Cast) exprNode()        {}
func (TypeMatch) exprNode()   {}
func (BlockExpr) exprNode()   {}

// Block is a sequence of bindings optionally followed by a trailing
// expression. Result is nil when the block has no trailing expression,
// which evaluates to null.
type Block struct {
	Bindings []Binding
	Result   Expr
}

// Binding is one statement inside a block.
type Binding interface{ bindingNode() }

// LetDestructure is `let <pattern> = <block>`.
type LetDestructure struct {
	Pattern *Pattern
	Value   Expr
	pos     Pos
}

// LetFunction is `let <identifier> <pattern> = <block>` — appends an
// alternative to the pattern-defined function named Name.
type LetFunction struct {
	Name  string
	Param *Pattern
	Value Expr
	pos   Pos
}

// TypeAliasDecl is `type <identifier> = <type-expression>`.
type TypeAliasDecl struct {
	Name string
	Type TypeExpr
	pos  Pos
}

func (LetDestructure) bindingNode() {}
func (LetFunction) bindingNode()    {}
func (TypeAliasDecl) bindingNode()  {}

func (b LetDestructure) Pos() Pos { return b.pos }
func (b LetFunction) Pos() Pos    { return b.pos }
func (b TypeAliasDecl) Pos() Pos  { return b.pos }

// Pattern is a destructuring form: the left side of a let binding or a
// single alternative's parameter in a pattern-defined function.
type Pattern struct {
	pos Pos

	Kind PatternKind

	// PatWildcard: no fields.
	// PatIdent:
	Name string
	Type TypeExpr // optional annotation, nil if absent

	// PatLiteral:
	Literal Expr

	// PatList (Exact/Head/Tail):
	Elems []*Pattern

	// PatDict (Strict/Open):
	Entries []DictPatternEntry
}

func (p *Pattern) Pos() Pos { return p.pos }

type PatternKind int

const (
	PatWildcard PatternKind = iota
	PatIdent
	PatLiteral
	PatListExact
	PatListHead // [p1..pn, ..]
	PatListTail // [.., p1..pn]
	PatDictStrict
	PatDictOpen
)

type DictPatternEntry struct {
	Key string
	Sub *Pattern
}

// TypeExpr is a node of the separate type-expression grammar.
type TypeExpr interface{ typeNode() }

// PrimitiveType is one of any/null/bool/int/float/number/text.
type PrimitiveType struct{ Name string }

// ListType is `[T]`, homogeneous list.
type ListType struct{ Elem TypeExpr }

// DictType is `{T}`, homogeneous dict on values.
type DictType struct{ Elem TypeExpr }

// NullableType is `?T` ≡ `T | null`.
type NullableType struct{ Inner TypeExpr }

// TupleType is `[T1, ..., Tn]`, fixed-length positional.
type TupleType struct{ Elems []TypeExpr }

// RecordField is one `key: T` entry of a record type.
type RecordField struct {
	Key  string
	Type TypeExpr
}

// RecordType is `{k1: T1, ...}` (Open=false, strict: exactly these keys) or
// `{k1: T1, ..., ..}` (Open=true: at least these keys).
type RecordType struct {
	Fields []RecordField
	Open   bool
}

// UnionType is `T1 | T2 | ...`.
type UnionType struct{ Alts []TypeExpr }

// AliasRefType is an identifier resolved against the type-alias namespace.
type AliasRefType struct{ Name string }

func (PrimitiveType) typeNode() {}
func (ListType) typeNode()      {}
func (DictType) typeNode()      {}
func (NullableType) typeNode()  {}
func (TupleType) typeNode()     {}
func (RecordType) typeNode()    {}
func (UnionType) typeNode()     {}
func (AliasRefType) typeNode()  {}
