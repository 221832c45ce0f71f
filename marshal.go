// marshal.go — JSON serialization of representable Values.
//
// Marshal writes JSON bytes directly from a Value tree rather than
// bouncing through map[string]any, since Go maps don't preserve key order
// and Dict's insertion order is part of this language's value model.
package glint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Marshal renders v as JSON. It fails if v (or anything it contains) is a
// Pattern or Type value, per Value.Representable.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalInto(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalInto(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.AsBool() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.AsInt(), 10))
	case KindFloat:
		b, err := json.Marshal(v.AsFloat())
		if err != nil {
			return fmt.Errorf("glint: cannot marshal float: %w", err)
		}
		buf.Write(b)
	case KindText:
		b, err := json.Marshal(v.AsText())
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList:
		buf.WriteByte('[')
		for i, e := range v.AsList() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalInto(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindDict:
		d := v.AsDict()
		buf.WriteByte('{')
		for i, k := range d.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			ev, _ := d.Get(k)
			if err := marshalInto(buf, ev); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("glint: value of kind %s is not JSON-representable", v.Kind)
	}
	return nil
}

// Unmarshal parses JSON bytes into a Value: objects become Dict (key order
// as encountered in the input, unlike encoding/json's map[string]any which
// discards it), arrays become List, numbers become Int when they have no
// fractional/exponent part and fit in int64, Float otherwise.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("glint: invalid JSON: %w", err)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		s := t.String()
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid JSON number %q", s)
		}
		return Float(f), nil
	case string:
		return Text(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return List(items), nil
		case '{':
			d := NewDict()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key must be a string, found %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				d.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return DictVal(d), nil
		}
	}
	return Value{}, fmt.Errorf("unsupported JSON token %v (%T)", tok, tok)
}
