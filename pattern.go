// pattern.go — the pattern matcher.
//
// Match tries to bind pat against v, defining every bound identifier into
// env on success. It never partially commits: on failure the caller's env
// is left exactly as it found it, because Match only calls Env.Define after
// every sub-pattern along the way has already succeeded (match is computed
// bottom-up into a binding list before anything is defined).
package glint

import "fmt"

// Match reports whether pat matches v; on success it defines every bound
// name from pat into env.
func Match(pat *Pattern, v Value, env *Env) (bool, error) {
	binds := map[string]Value{}
	ok, err := match(pat, v, env, binds)
	if err != nil || !ok {
		return false, err
	}
	for name, val := range binds {
		env.Define(name, val)
	}
	return true, nil
}

func match(pat *Pattern, v Value, env *Env, binds map[string]Value) (bool, error) {
	switch pat.Kind {
	case PatWildcard:
		return true, nil

	case PatIdent:
		if pat.Type != nil {
			ok, err := Conforms(v, pat.Type, env)
			if err != nil || !ok {
				return ok, err
			}
		}
		if _, dup := binds[pat.Name]; dup {
			return false, newDiag(KindPatternMatchError, Span{}, "duplicate binding %q in pattern", pat.Name)
		}
		binds[pat.Name] = v
		return true, nil

	case PatLiteral:
		lit, err := evalConstExpr(pat.Literal)
		if err != nil {
			return false, err
		}
		return Equal(lit, v), nil

	case PatListExact:
		if v.Kind != KindList || len(v.AsList()) != len(pat.Elems) {
			return false, nil
		}
		items := v.AsList()
		for i, sub := range pat.Elems {
			ok, err := match(sub, items[i], env, binds)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	case PatListHead:
		if v.Kind != KindList || len(v.AsList()) < len(pat.Elems) {
			return false, nil
		}
		items := v.AsList()
		for i, sub := range pat.Elems {
			ok, err := match(sub, items[i], env, binds)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	case PatListTail:
		if v.Kind != KindList || len(v.AsList()) < len(pat.Elems) {
			return false, nil
		}
		items := v.AsList()
		offset := len(items) - len(pat.Elems)
		for i, sub := range pat.Elems {
			ok, err := match(sub, items[offset+i], env, binds)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	case PatDictStrict, PatDictOpen:
		if v.Kind != KindDict {
			return false, nil
		}
		d := v.AsDict()
		if pat.Kind == PatDictStrict && d.Len() != len(pat.Entries) {
			return false, nil
		}
		for _, entry := range pat.Entries {
			fv, present := d.Get(entry.Key)
			if !present {
				return false, nil
			}
			ok, err := match(entry.Sub, fv, env, binds)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown pattern kind %v", pat.Kind)
	}
}

// evalConstExpr evaluates the small literal-only expression grammar
// produced by parseLiteralForPattern (literals and their unary '-').
func evalConstExpr(e Expr) (Value, error) {
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
	case Unary:
		inner, err := evalConstExpr(n.X)
		if err != nil {
			return Value{}, err
		}
		switch inner.Kind {
		case KindInt:
			return Int(-inner.AsInt()), nil
		case KindFloat:
			return Float(-inner.AsFloat()), nil
		}
		return Value{}, fmt.Errorf("cannot negate non-numeric pattern literal")
	default:
		return Value{}, fmt.Errorf("unsupported pattern literal %T", e)
	}
}

// duplicateName returns the first identifier bound more than once by pat
// and true, or ("", false) if every bound name is unique. match()'s own
// duplicate check only fires on the branches actually visited during a
// particular match, so a clause whose duplicate lives behind a sub-pattern
// that the first failing comparison short-circuits past would otherwise
// slip through; this walks the whole pattern up front regardless of any
// value.
func duplicateName(pat *Pattern) (string, bool) {
	seen := map[string]bool{}
	var walk func(*Pattern) (string, bool)
	walk = func(p *Pattern) (string, bool) {
		switch p.Kind {
		case PatIdent:
			if seen[p.Name] {
				return p.Name, true
			}
			seen[p.Name] = true
		case PatListExact, PatListHead, PatListTail:
			for _, sub := range p.Elems {
				if name, dup := walk(sub); dup {
					return name, true
				}
			}
		case PatDictStrict, PatDictOpen:
			for _, entry := range p.Entries {
				if name, dup := walk(entry.Sub); dup {
					return name, true
				}
			}
		}
		return "", false
	}
	return walk(pat)
}
