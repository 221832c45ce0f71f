// eval.go — the tree-walking evaluator.
//
// Interp carries the two pieces of state evaluation needs beyond the
// lexical Env it is handed at each call: a context.Context for cooperative
// cancellation (checked at block entry and at each comprehension/loop
// iteration, never mid-expression) and the *Environment that resolves
// imports. Values are immutable; every list/dict constructor below builds a
// fresh one rather than mutating an operand in place.
package glint

import (
	"context"
	"strings"
)

// Interp evaluates a parsed program against a lexical Env.
type Interp struct {
	Runtime *Environment
	Ctx     context.Context
}

// EvalProgram parses nothing; it evaluates an already-parsed Block against
// env using rt to resolve imports.
func EvalProgram(ctx context.Context, blk *Block, env *Env, rt *Environment) (Value, error) {
	it := &Interp{Runtime: rt, Ctx: ctx}
	return it.EvalBlock(blk, env)
}

func (it *Interp) checkCancelled() error {
	if it.Ctx == nil {
		return nil
	}
	select {
	case <-it.Ctx.Done():
		return newDiag(KindCancelled, Span{}, "evaluation cancelled: %v", it.Ctx.Err())
	default:
		return nil
	}
}

// EvalBlock runs blk's bindings in sequence, each introducing a fresh child
// frame rather than adding to a frame a prior binding's closures may have
// already captured: this is what makes a Pattern value's captured
// environment a true snapshot, even though Env itself is a plain, mutable
// map.
func (it *Interp) EvalBlock(blk *Block, env *Env) (Value, error) {
	if err := it.checkCancelled(); err != nil {
		return Value{}, err
	}
	frame := env.Child()
	for _, b := range blk.Bindings {
		next, err := it.evalBinding(b, frame)
		if err != nil {
			return Value{}, err
		}
		frame = next
	}
	if blk.Result == nil {
		return Null, nil
	}
	return it.Eval(blk.Result, frame)
}

// evalBinding evaluates b against frame (the environment as it stood before
// b) and returns the new frame subsequent bindings and the block's result
// should see. frame itself is never mutated: whatever b binds lands in a
// fresh child, so any closure that captured frame earlier never observes it.
func (it *Interp) evalBinding(b Binding, frame *Env) (*Env, error) {
	switch bind := b.(type) {
	case LetDestructure:
		if name, dup := duplicateName(bind.Pattern); dup {
			p := bind.Pos()
			return nil, newDiag(KindPatternMatchError, Span{Line: p.Line, Col: p.Col}, "duplicate binding %q in pattern", name)
		}
		v, err := it.Eval(bind.Value, frame)
		if err != nil {
			return nil, err
		}
		next := frame.Child()
		ok, err := Match(bind.Pattern, v, next)
		if err != nil {
			return nil, err
		}
		if !ok {
			p := bind.Pos()
			return nil, newDiag(KindPatternMatchError, Span{Line: p.Line, Col: p.Col}, "value does not match pattern")
		}
		return next, nil

	case LetFunction:
		if name, dup := duplicateName(bind.Param); dup {
			p := bind.Pos()
			return nil, newDiag(KindPatternMatchError, Span{Line: p.Line, Col: p.Col}, "duplicate binding %q in pattern", name)
		}
		var base *Func
		if existing, ok := frame.Lookup(bind.Name); ok && existing.Kind == KindPattern {
			base = existing.AsFunc()
		} else {
			base = &Func{Name: bind.Name}
		}
		alt := &Alternative{
			Param: bind.Param,
			Body:  &Block{Result: bind.Value},
			// frame, not the new child below: a call to bind.Name from
			// inside this alternative's own body resolves through frame,
			// which never gains bind.Name itself, only its child does.
			// That is what forbids self-recursion by construction rather
			// than by a post-hoc check.
			Env: frame,
		}
		nf := base.WithAlternative(alt)
		next := frame.Child()
		next.Define(bind.Name, PatternVal(nf))
		return next, nil

	case TypeAliasDecl:
		next := frame.Child()
		next.DefineType(bind.Name, bind.Type)
		return next, nil

	default:
		return nil, newDiag(KindSyntaxError, Span{}, "unknown binding kind %T", b)
	}
}

// Eval evaluates e against env.
func (it *Interp) Eval(e Expr, env *Env) (Value, error) {
	switch n := e.(type) {
	case NullLit:
		return Null, nil
	case BoolLit:
		return Bool(n.Value), nil
	case IntLit:
		return Int(n.Value), nil
	case FloatLit:
		return Float(n.Value), nil
	case TextLit:
		return Text(n.Value), nil

	case TemplateLit:
		var sb strings.Builder
		for _, part := range n.Parts {
			v, err := it.Eval(part, env)
			if err != nil {
				return Value{}, err
			}
			sb.WriteString(Canonical(v))
		}
		return Text(sb.String()), nil

	case Ident:
		if v, ok := env.Lookup(n.Name); ok {
			return v, nil
		}
		p := n.Pos()
		return Value{}, unboundIdentifier(Span{Line: p.Line, Col: p.Col}, n.Name, env.Names())

	case BlockExpr:
		return it.EvalBlock(n.Block, env)

	case If:
		cond, err := it.Eval(n.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if cond.Kind != KindBool {
			p := n.Cond.Pos()
			return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "if condition must be bool, found %s", cond.Kind)
		}
		if cond.AsBool() {
			return it.Eval(n.Then, env)
		}
		return it.Eval(n.Else, env)

	case Unary:
		return it.evalUnary(n, env)

	case Binary:
		return it.evalBinary(n, env)

	case Access:
		x, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		return it.index(x, Text(n.Name), n.Pos())

	case Index:
		x, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		idx, err := it.Eval(n.Index, env)
		if err != nil {
			return Value{}, err
		}
		return it.index(x, idx, n.Pos())

	case Cast:
		x, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		return castValue(x, n.Target, n.Pos())

	case TypeMatch:
		x, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		ok, err := Conforms(x, n.Type, env)
		if err != nil {
			return Value{}, err
		}
		return Bool(ok), nil

	case ListLit:
		return it.evalListLit(n, env)

	case DictLit:
		return it.evalDictLit(n, env)

	case ListComp:
		return it.evalListComp(n, env)

	case DictComp:
		return it.evalDictComp(n, env)

	case Import:
		return it.evalImport(n, env)

	default:
		p := e.Pos()
		return Value{}, newDiag(KindSyntaxError, Span{Line: p.Line, Col: p.Col}, "cannot evaluate %T", e)
	}
}

func (it *Interp) evalUnary(n Unary, env *Env) (Value, error) {
	x, err := it.Eval(n.X, env)
	if err != nil {
		return Value{}, err
	}
	p := n.Pos()
	switch n.Op {
	case "not":
		if x.Kind != KindBool {
			return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "'not' requires bool, found %s", x.Kind)
		}
		return Bool(!x.AsBool()), nil
	case "-":
		switch x.Kind {
		case KindInt:
			return Int(-x.AsInt()), nil
		case KindFloat:
			return Float(-x.AsFloat()), nil
		default:
			return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "unary '-' requires a number, found %s", x.Kind)
		}
	default:
		return Value{}, newDiag(KindSyntaxError, Span{Line: p.Line, Col: p.Col}, "unknown unary operator %q", n.Op)
	}
}

func (it *Interp) evalBinary(n Binary, env *Env) (Value, error) {
	p := n.Pos()
	span := Span{Line: p.Line, Col: p.Col}

	switch n.Op {
	case "and":
		x, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		if x.Kind != KindBool {
			return Value{}, newDiag(KindTypeMismatch, span, "'and' requires bool operands, found %s", x.Kind)
		}
		if !x.AsBool() {
			return Bool(false), nil
		}
		y, err := it.Eval(n.Y, env)
		if err != nil {
			return Value{}, err
		}
		if y.Kind != KindBool {
			return Value{}, newDiag(KindTypeMismatch, span, "'and' requires bool operands, found %s", y.Kind)
		}
		return y, nil

	case "or":
		x, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		if x.Kind != KindBool {
			return Value{}, newDiag(KindTypeMismatch, span, "'or' requires bool operands, found %s", x.Kind)
		}
		if x.AsBool() {
			return Bool(true), nil
		}
		y, err := it.Eval(n.Y, env)
		if err != nil {
			return Value{}, err
		}
		if y.Kind != KindBool {
			return Value{}, newDiag(KindTypeMismatch, span, "'or' requires bool operands, found %s", y.Kind)
		}
		return y, nil

	case "?":
		x, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		if !x.IsNull() {
			return x, nil
		}
		return it.Eval(n.Y, env)

	case "apply":
		fn, err := it.Eval(n.X, env)
		if err != nil {
			return Value{}, err
		}
		if fn.Kind != KindPattern {
			return Value{}, newDiag(KindTypeMismatch, span, "cannot call a %s value", fn.Kind)
		}
		arg, err := it.Eval(n.Y, env)
		if err != nil {
			return Value{}, err
		}
		return it.apply(fn.AsFunc(), arg, span)
	}

	x, err := it.Eval(n.X, env)
	if err != nil {
		return Value{}, err
	}
	y, err := it.Eval(n.Y, env)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case "+", "-", "*", "/", "%":
		return arith(n.Op, x, y, span)
	case "==":
		return Bool(Equal(x, y)), nil
	case "!=":
		return Bool(!Equal(x, y)), nil
	case "<", "<=", ">", ">=":
		return compareOrdered(n.Op, x, y, span)
	case "in":
		return it.evalIn(x, y, span)
	default:
		return Value{}, newDiag(KindSyntaxError, span, "unknown operator %q", n.Op)
	}
}

func (it *Interp) evalIn(needle, hay Value, span Span) (Value, error) {
	switch hay.Kind {
	case KindList:
		for _, e := range hay.AsList() {
			if Equal(e, needle) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case KindDict:
		if needle.Kind != KindText {
			return Value{}, newDiag(KindTypeMismatch, span, "'in' over a dict requires a text key, found %s", needle.Kind)
		}
		_, ok := hay.AsDict().Get(needle.AsText())
		return Bool(ok), nil
	case KindText:
		if needle.Kind != KindText {
			return Value{}, newDiag(KindTypeMismatch, span, "'in' over text requires a text operand, found %s", needle.Kind)
		}
		return Bool(strings.Contains(hay.AsText(), needle.AsText())), nil
	default:
		return Value{}, newDiag(KindTypeMismatch, span, "'in' requires a list, dict or text, found %s", hay.Kind)
	}
}

// apply calls fn with arg, trying each alternative's pattern in order and
// running the first one that matches in a child of its captured Env.
func (it *Interp) apply(fn *Func, arg Value, span Span) (Value, error) {
	if fn.Native != nil {
		v, err := fn.Native(arg)
		if d, ok := err.(*Diagnostic); ok && d.Span == (Span{}) {
			d.Span = span
		}
		return v, err
	}
	for _, alt := range fn.Alternatives {
		callEnv := alt.Env.Child()
		ok, err := Match(alt.Param, arg, callEnv)
		if err != nil {
			return Value{}, err
		}
		if ok {
			return it.EvalBlock(alt.Body, callEnv)
		}
	}
	return Value{}, newDiag(KindPatternMatchError, span, "no alternative of %q matches the given argument", fn.Name)
}

func (it *Interp) index(x, idx Value, pos Pos) (Value, error) {
	span := Span{Line: pos.Line, Col: pos.Col}
	switch x.Kind {
	case KindList:
		if idx.Kind != KindInt {
			return Value{}, newDiag(KindTypeMismatch, span, "list index must be int, found %s", idx.Kind)
		}
		items := x.AsList()
		i := idx.AsInt()
		if i < 0 {
			i += int64(len(items))
		}
		if i < 0 || i >= int64(len(items)) {
			return Value{}, newDiag(KindIndexError, span, "list index %d out of range (length %d)", idx.AsInt(), len(items))
		}
		return items[i], nil
	case KindDict:
		if idx.Kind != KindText {
			return Value{}, newDiag(KindTypeMismatch, span, "dict index must be text, found %s", idx.Kind)
		}
		v, ok := x.AsDict().Get(idx.AsText())
		if !ok {
			return Value{}, newDiag(KindIndexError, span, "dict has no key %q", idx.AsText())
		}
		return v, nil
	case KindText:
		if idx.Kind != KindInt {
			return Value{}, newDiag(KindTypeMismatch, span, "text index must be int, found %s", idx.Kind)
		}
		runes := []rune(x.AsText())
		i := idx.AsInt()
		if i < 0 {
			i += int64(len(runes))
		}
		if i < 0 || i >= int64(len(runes)) {
			return Value{}, newDiag(KindIndexError, span, "text index %d out of range (length %d runes)", idx.AsInt(), len(runes))
		}
		return Text(string(runes[i])), nil
	default:
		return Value{}, newDiag(KindTypeMismatch, span, "cannot index a %s value", x.Kind)
	}
}

func castValue(x Value, target string, pos Pos) (Value, error) {
	span := Span{Line: pos.Line, Col: pos.Col}
	switch target {
	case "int":
		switch x.Kind {
		case KindInt:
			return x, nil
		case KindFloat:
			return Int(int64(x.AsFloat())), nil
		case KindText:
			n, err := parseIntText(x.AsText())
			if err != nil {
				return Value{}, newDiag(KindOverflowOrDomain, span, "cannot cast %q to int", x.AsText())
			}
			return Int(n), nil
		case KindBool:
			if x.AsBool() {
				return Int(1), nil
			}
			return Int(0), nil
		}
	case "float":
		switch x.Kind {
		case KindFloat:
			return x, nil
		case KindInt:
			return Float(float64(x.AsInt())), nil
		case KindText:
			f, err := parseFloatText(x.AsText())
			if err != nil {
				return Value{}, newDiag(KindOverflowOrDomain, span, "cannot cast %q to float", x.AsText())
			}
			return Float(f), nil
		}
	case "text":
		return Text(Canonical(x)), nil
	}
	return Value{}, newDiag(KindTypeMismatch, span, "cannot cast a %s value to %s", x.Kind, target)
}

// --- list / dict construction ---

func (it *Interp) evalListLit(n ListLit, env *Env) (Value, error) {
	var out []Value
	for _, item := range n.Items {
		v, err := it.Eval(item.Value, env)
		if err != nil {
			return Value{}, err
		}
		if item.Spread {
			switch v.Kind {
			case KindList:
				out = append(out, v.AsList()...)
			case KindDict:
				d := v.AsDict()
				for _, k := range d.Keys {
					ev, _ := d.Get(k)
					out = append(out, List([]Value{Text(k), ev}))
				}
			default:
				p := item.Value.Pos()
				return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "spread target must be a list or dict, found %s", v.Kind)
			}
			continue
		}
		out = append(out, v)
	}
	return List(out), nil
}

func (it *Interp) evalDictLit(n DictLit, env *Env) (Value, error) {
	d := NewDict()
	for _, item := range n.Items {
		if item.Spread {
			v, err := it.Eval(item.Expr, env)
			if err != nil {
				return Value{}, err
			}
			switch v.Kind {
			case KindDict:
				for _, k := range v.AsDict().Keys {
					ev, _ := v.AsDict().Get(k)
					d.Set(k, ev)
				}
			case KindList:
				for _, pair := range v.AsList() {
					p := item.Expr.Pos()
					if pair.Kind != KindList || len(pair.AsList()) != 2 {
						return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "spread target must be a dict or list of two-element lists")
					}
					kv := pair.AsList()[0]
					if kv.Kind != KindText {
						return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "spread pair key must be text, found %s", kv.Kind)
					}
					d.Set(kv.AsText(), pair.AsList()[1])
				}
			default:
				p := item.Expr.Pos()
				return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "spread target must be a dict or list of two-element lists, found %s", v.Kind)
			}
			continue
		}
		if item.Guard != nil {
			g, err := it.Eval(item.Guard, env)
			if err != nil {
				return Value{}, err
			}
			if g.Kind != KindBool {
				p := item.Guard.Pos()
				return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "dict entry guard must be bool, found %s", g.Kind)
			}
			if !g.AsBool() {
				continue
			}
		}
		keyVal, err := it.Eval(item.KeyExpr, env)
		if err != nil {
			return Value{}, err
		}
		if keyVal.Kind != KindText {
			p := item.KeyExpr.Pos()
			return Value{}, newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "dict key must be text, found %s", keyVal.Kind)
		}
		val, err := it.Eval(item.Value, env)
		if err != nil {
			return Value{}, err
		}
		d.Set(keyVal.AsText(), val)
	}
	return DictVal(d), nil
}

// iterClauses walks nested `for` clauses, invoking body once per combined
// binding environment that also passes the trailing guard, if any.
func (it *Interp) iterClauses(clauses []CompClause, guard Expr, env *Env, body func(*Env) error) error {
	if len(clauses) == 0 {
		if guard != nil {
			g, err := it.Eval(guard, env)
			if err != nil {
				return err
			}
			if g.Kind != KindBool {
				p := guard.Pos()
				return newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "comprehension guard must be bool, found %s", g.Kind)
			}
			if !g.AsBool() {
				return nil
			}
		}
		return body(env)
	}
	clause := clauses[0]
	src, err := it.Eval(clause.Source, env)
	if err != nil {
		return err
	}
	var items []Value
	switch src.Kind {
	case KindList:
		items = src.AsList()
	case KindDict:
		d := src.AsDict()
		items = make([]Value, len(d.Keys))
		for i, k := range d.Keys {
			v, _ := d.Get(k)
			items[i] = List([]Value{Text(k), v})
		}
	default:
		p := clause.Source.Pos()
		return newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "comprehension source must be a list or dict, found %s", src.Kind)
	}
	for _, item := range items {
		if err := it.checkCancelled(); err != nil {
			return err
		}
		iterEnv := env.Child()
		ok, err := Match(clause.Pattern, item, iterEnv)
		if err != nil {
			return err
		}
		if !ok {
			p := clause.Pattern.Pos()
			return newDiag(KindPatternMatchError, Span{Line: p.Line, Col: p.Col}, "comprehension element does not match pattern")
		}
		if err := it.iterClauses(clauses[1:], guard, iterEnv, body); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interp) evalListComp(n ListComp, env *Env) (Value, error) {
	var out []Value
	err := it.iterClauses(n.Clauses, n.Guard, env, func(iterEnv *Env) error {
		v, err := it.Eval(n.Body, iterEnv)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return List(out), nil
}

func (it *Interp) evalDictComp(n DictComp, env *Env) (Value, error) {
	d := NewDict()
	err := it.iterClauses(n.Clauses, n.Guard, env, func(iterEnv *Env) error {
		kv, err := it.Eval(n.Key, iterEnv)
		if err != nil {
			return err
		}
		if kv.Kind != KindText {
			p := n.Key.Pos()
			return newDiag(KindTypeMismatch, Span{Line: p.Line, Col: p.Col}, "dict comprehension key must be text, found %s", kv.Kind)
		}
		vv, err := it.Eval(n.Value, iterEnv)
		if err != nil {
			return err
		}
		d.Set(kv.AsText(), vv)
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return DictVal(d), nil
}

func (it *Interp) evalImport(n Import, env *Env) (Value, error) {
	if it.Runtime == nil {
		return Value{}, newDiag(KindImportError, Span{}, "no import environment configured")
	}
	v, err := it.Runtime.resolveAndLoad(it.Ctx, n.Literal, n.AsText)
	if err != nil {
		if n.Or != nil {
			return it.Eval(n.Or, env)
		}
		return Value{}, err
	}
	return v, nil
}
