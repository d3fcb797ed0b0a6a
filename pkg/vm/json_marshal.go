package vm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// MarshalJSON serializes v the way JSON.stringify does without a replacer:
// enumerable own string keys in OwnPropertyKeys order, arrays by index,
// functions and undefined dropped from objects and null in arrays. Getters
// run and may throw. Cycles are a TypeError.
func (r *Realm) MarshalJSON(v Value) ([]byte, error) {
	enc := jsonEncoder{realm: r, stack: map[Ref]bool{}}
	buf, ok, err := enc.appendValue(nil, v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return buf, nil
}

type jsonEncoder struct {
	realm *Realm
	stack map[Ref]bool
}

// appendValue returns ok == false for values JSON cannot represent
// (undefined, functions, symbols).
func (e *jsonEncoder) appendValue(dst []byte, v Value) ([]byte, bool, error) {
	r := e.realm
	if obj := r.Object(v); obj != nil && (obj.kind == KindPrimitive || obj.kind == KindString) {
		v = obj.primitive
	}
	switch v.Type() {
	case TypeNull:
		return append(dst, "null"...), true, nil
	case TypeBoolean:
		return strconv.AppendBool(dst, v.AsBoolean()), true, nil
	case TypeNumber:
		n := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return append(dst, "null"...), true, nil
		}
		return append(dst, NumberToString(n)...), true, nil
	case TypeString:
		return jsonenc.AppendString(dst, v.AsString()), true, nil
	case TypeObject:
		obj := r.Object(v)
		if obj == nil || obj.callable != nil {
			return dst, false, nil
		}
		if e.stack[obj.ref] {
			return nil, false, r.NewTypeError("Converting circular structure to JSON")
		}
		e.stack[obj.ref] = true
		defer delete(e.stack, obj.ref)
		if obj.kind == KindArray {
			return e.appendArray(dst, obj)
		}
		return e.appendObject(dst, obj)
	default:
		return dst, false, nil
	}
}

func (e *jsonEncoder) appendArray(dst []byte, obj *Object) ([]byte, bool, error) {
	r := e.realm
	dst = append(dst, '[')
	n := obj.array.Length()
	for i := uint32(0); i < n; i++ {
		if i > 0 {
			dst = append(dst, ',')
		}
		elem, err := obj.Get(r, IndexKey(i), obj.Value())
		if err != nil {
			return nil, false, err
		}
		var ok bool
		if dst, ok, err = e.appendValue(dst, elem); err != nil {
			return nil, false, err
		}
		if !ok {
			dst = append(dst, "null"...)
		}
	}
	return append(dst, ']'), true, nil
}

func (e *jsonEncoder) appendObject(dst []byte, obj *Object) ([]byte, bool, error) {
	r := e.realm
	dst = append(dst, '{')
	first := true
	for _, key := range obj.OwnPropertyKeys(r) {
		if key.IsSymbol() {
			continue
		}
		p, ok := obj.GetOwnProperty(r, key)
		if !ok || !p.Attrs.Enumerable() {
			continue
		}
		val, err := obj.Get(r, key, obj.Value())
		if err != nil {
			return nil, false, err
		}
		mark := len(dst)
		if !first {
			dst = append(dst, ',')
		}
		dst = jsonenc.AppendString(dst, key.Name())
		dst = append(dst, ':')
		var written bool
		if dst, written, err = e.appendValue(dst, val); err != nil {
			return nil, false, err
		}
		if !written {
			dst = dst[:mark]
			continue
		}
		first = false
	}
	return append(dst, '}'), true, nil
}

// ParseJSON builds script values from JSON text. Object keys keep their
// document order.
func (r *Realm) ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := r.parseJSONValue(dec)
	if err != nil {
		return Undefined, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Undefined, r.NewSyntaxError("Unexpected non-whitespace character after JSON")
	}
	return v, nil
}

func (r *Realm) parseJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Undefined, r.NewSyntaxError("Unexpected end of JSON input: %v", err)
	}
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return BooleanValue(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return Undefined, r.NewSyntaxError("Bad number %s in JSON", t)
		}
		return NumberValue(f), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := r.NewArray()
			for i := uint32(0); dec.More(); i++ {
				elem, err := r.parseJSONValue(dec)
				if err != nil {
					return Undefined, err
				}
				arr.writeOwn(r, IndexKey(i), dataProperty(elem, AttrDefault))
			}
			if _, err := dec.Token(); err != nil {
				return Undefined, r.NewSyntaxError("Unterminated array in JSON")
			}
			return arr.Value(), nil
		case '{':
			obj := r.NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Undefined, r.NewSyntaxError("Bad object key in JSON: %v", err)
				}
				name, ok := kt.(string)
				if !ok {
					return Undefined, r.NewSyntaxError("Bad object key in JSON")
				}
				val, err := r.parseJSONValue(dec)
				if err != nil {
					return Undefined, err
				}
				obj.SetOwn(r, StringKey(name), val)
			}
			if _, err := dec.Token(); err != nil {
				return Undefined, r.NewSyntaxError("Unterminated object in JSON")
			}
			return obj.Value(), nil
		}
	}
	return Undefined, r.NewSyntaxError("Unexpected token %s in JSON", fmt.Sprint(tok))
}
