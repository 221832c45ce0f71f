// types.go — the structural type checker over TypeExpr and Value.
//
// Conforms decides whether a runtime Value matches a TypeExpr, resolving
// alias references against the Env's separate type-alias namespace. Numeric
// coercion follows the same Int/Float promotion rules as arithmetic: `int`
// rejects floats, `float` accepts both, and `number` accepts either.
package glint

import "fmt"

// Conforms reports whether v matches t, resolving any AliasRefType against
// env's type-alias namespace.
func Conforms(v Value, t TypeExpr, env *Env) (bool, error) {
	switch tt := t.(type) {
	case PrimitiveType:
		return conformsPrimitive(v, tt.Name), nil
	case ListType:
		if v.Kind != KindList {
			return false, nil
		}
		for _, e := range v.AsList() {
			ok, err := Conforms(e, tt.Elem, env)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil
	case DictType:
		if v.Kind != KindDict {
			return false, nil
		}
		d := v.AsDict()
		for _, k := range d.Keys {
			e, _ := d.Get(k)
			ok, err := Conforms(e, tt.Elem, env)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil
	case NullableType:
		if v.IsNull() {
			return true, nil
		}
		return Conforms(v, tt.Inner, env)
	case TupleType:
		if v.Kind != KindList {
			return false, nil
		}
		items := v.AsList()
		if len(items) != len(tt.Elems) {
			return false, nil
		}
		for i, et := range tt.Elems {
			ok, err := Conforms(items[i], et, env)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil
	case RecordType:
		if v.Kind != KindDict {
			return false, nil
		}
		d := v.AsDict()
		for _, f := range tt.Fields {
			fv, ok := d.Get(f.Key)
			if !ok {
				return false, nil
			}
			conforms, err := Conforms(fv, f.Type, env)
			if err != nil || !conforms {
				return conforms, err
			}
		}
		if !tt.Open && d.Len() != len(tt.Fields) {
			return false, nil
		}
		return true, nil
	case UnionType:
		for _, alt := range tt.Alts {
			ok, err := Conforms(v, alt, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case AliasRefType:
		resolved, ok := env.LookupType(tt.Name)
		if !ok {
			return false, unboundIdentifier(Span{}, tt.Name, env.TypeNames())
		}
		return Conforms(v, resolved, env)
	default:
		return false, fmt.Errorf("unknown type expression %T", t)
	}
}

func conformsPrimitive(v Value, name string) bool {
	switch name {
	case "any":
		return true
	case "null":
		return v.Kind == KindNull
	case "bool":
		return v.Kind == KindBool
	case "int":
		return v.Kind == KindInt
	case "float":
		return v.Kind == KindFloat || v.Kind == KindInt
	case "number":
		return v.Kind == KindInt || v.Kind == KindFloat
	case "text":
		return v.Kind == KindText
	default:
		return false
	}
}

// TypeString renders t for diagnostics and debugging.
func TypeString(t TypeExpr) string {
	switch tt := t.(type) {
	case PrimitiveType:
		return tt.Name
	case ListType:
		return "[" + TypeString(tt.Elem) + "]"
	case DictType:
		return "{" + TypeString(tt.Elem) + "}"
	case NullableType:
		return "?" + TypeString(tt.Inner)
	case TupleType:
		s := "["
		for i, e := range tt.Elems {
			if i > 0 {
				s += ", "
			}
			s += TypeString(e)
		}
		return s + "]"
	case RecordType:
		s := "{"
		for i, f := range tt.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.Key + ": " + TypeString(f.Type)
		}
		if tt.Open {
			if len(tt.Fields) > 0 {
				s += ", "
			}
			s += ".."
		}
		return s + "}"
	case UnionType:
		s := ""
		for i, a := range tt.Alts {
			if i > 0 {
				s += " | "
			}
			s += TypeString(a)
		}
		return s
	case AliasRefType:
		return tt.Name
	default:
		return "?"
	}
}
