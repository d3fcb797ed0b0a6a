package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// Only the conversions the object model itself needs live here: key
// conversion, array length checks, descriptor booleans and the receiver
// coercions of non-strict calls.

// SameValue is identity with NaN equal to itself and +0 distinct from -0.
func SameValue(a, b Value) bool { return a.Is(b) }

func ToBoolean(v Value) bool {
	switch v.Type() {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.AsBoolean()
	case TypeNumber:
		n := v.AsNumber()
		return n != 0 && !math.IsNaN(n)
	case TypeString:
		return v.AsString() != ""
	default:
		return true
	}
}

// ToUint32 wraps n modulo 2^32.
func ToUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return uint32(int64(math.Mod(math.Trunc(n), 1<<32)))
}

// ToIntegerOrInfinity truncates n, mapping NaN to 0.
func ToIntegerOrInfinity(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	return math.Trunc(n) + 0 // normalizes -0
}

// NumberToString formats n the way scripts print numbers.
func NumberToString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	return string(jsonenc.AppendFloat64(nil, n))
}

// StringToNumber parses s with script numeric-literal rules: surrounding
// whitespace is ignored, the empty string is 0, anything else invalid is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
					return parseBigRadix(s[2:], base)
				}
				return math.NaN()
			}
			return float64(u)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func parseBigRadix(digits string, base int) float64 {
	var f float64
	for _, c := range digits {
		d, err := strconv.ParseUint(string(c), base, 8)
		if err != nil {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}

// ToPrimitive converts objects through valueOf/toString (string hint tries
// toString first). Primitives are returned unchanged and wrapper objects
// unwrap to their primitive.
func (r *Realm) ToPrimitive(v Value, hintString bool) (Value, error) {
	obj := r.Object(v)
	if obj == nil {
		return v, nil
	}
	if obj.kind == KindPrimitive || obj.kind == KindString {
		return obj.primitive, nil
	}
	order := []PropertyKey{keyValueOf, keyToString}
	if hintString {
		order = []PropertyKey{keyToString, keyValueOf}
	}
	for _, key := range order {
		fn, err := obj.Get(r, key, v)
		if err != nil {
			return Undefined, err
		}
		if !r.IsCallable(fn) {
			continue
		}
		result, err := r.Call(fn, v, nil)
		if err != nil {
			return Undefined, err
		}
		if !result.IsObject() {
			return result, nil
		}
	}
	if hintString {
		return NewString("[object " + obj.class + "]"), nil
	}
	return Undefined, r.NewTypeError("Cannot convert object to primitive value")
}

func (r *Realm) ToNumber(v Value) (float64, error) {
	switch v.Type() {
	case TypeUndefined:
		return math.NaN(), nil
	case TypeNull:
		return 0, nil
	case TypeBoolean:
		if v.AsBoolean() {
			return 1, nil
		}
		return 0, nil
	case TypeNumber:
		return v.AsNumber(), nil
	case TypeString:
		return StringToNumber(v.AsString()), nil
	case TypeSymbol:
		return 0, r.NewTypeError("Cannot convert a Symbol value to a number")
	}
	prim, err := r.ToPrimitive(v, false)
	if err != nil {
		return 0, err
	}
	return r.ToNumber(prim)
}

func (r *Realm) ToString(v Value) (string, error) {
	switch v.Type() {
	case TypeUndefined:
		return "undefined", nil
	case TypeNull:
		return "null", nil
	case TypeBoolean:
		return strconv.FormatBool(v.AsBoolean()), nil
	case TypeNumber:
		return NumberToString(v.AsNumber()), nil
	case TypeString:
		return v.AsString(), nil
	case TypeSymbol:
		return "", r.NewTypeError("Cannot convert a Symbol value to a string")
	}
	prim, err := r.ToPrimitive(v, true)
	if err != nil {
		return "", err
	}
	return r.ToString(prim)
}

// ToPropertyKey converts v to a key. Symbols stay symbols; everything else
// goes through ToString and canonical index normalization.
func (r *Realm) ToPropertyKey(v Value) (PropertyKey, error) {
	switch v.Type() {
	case TypeSymbol:
		return SymbolKey(v.AsSymbol()), nil
	case TypeNumber:
		n := v.AsNumber()
		if n >= 0 && n <= MaxArrayIndex && n == math.Trunc(n) && !math.Signbit(n) {
			return IndexKey(uint32(n)), nil
		}
	case TypeString:
		return StringKey(v.AsString()), nil
	}
	prim, err := r.ToPrimitive(v, true)
	if err != nil {
		return PropertyKey{}, err
	}
	if prim.IsSymbol() {
		return SymbolKey(prim.AsSymbol()), nil
	}
	s, err := r.ToString(prim)
	if err != nil {
		return PropertyKey{}, err
	}
	return StringKey(s), nil
}
