package vm

import (
	"fmt"
	"math"
	"strconv"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol

	TypeObject
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a script-visible value. Objects and symbols are referenced by
// handle; the value never owns what it points at.
type Value struct {
	typ     ValueType
	payload uint64 // boolean, float64 bits, SymbolID or Ref
	str     string
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int64) Value {
	return NumberValue(float64(value))
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, str: value}
}

// SymbolValue wraps a symbol allocated by a Realm's symbol table.
func SymbolValue(id SymbolID) Value {
	return Value{typ: TypeSymbol, payload: uint64(id)}
}

// ObjectValue wraps a heap handle.
func ObjectValue(ref Ref) Value {
	if ref == 0 {
		return Null
	}
	return Value{typ: TypeObject, payload: uint64(ref)}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsNullish() bool   { return v.typ == TypeUndefined || v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsSymbol() bool    { return v.typ == TypeSymbol }
func (v Value) IsObject() bool    { return v.typ == TypeObject }

// AsNumber returns the float payload. Only valid for TypeNumber.
func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic(fmt.Sprintf("value is not a number: %s", v.typ))
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic(fmt.Sprintf("value is not a boolean: %s", v.typ))
	}
	return v.payload != 0
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic(fmt.Sprintf("value is not a string: %s", v.typ))
	}
	return v.str
}

func (v Value) AsSymbol() SymbolID {
	if v.typ != TypeSymbol {
		panic(fmt.Sprintf("value is not a symbol: %s", v.typ))
	}
	return SymbolID(v.payload)
}

// AsRef returns the heap handle of an object value, or 0 for anything else.
func (v Value) AsRef() Ref {
	if v.typ != TypeObject {
		return 0
	}
	return Ref(v.payload)
}

// Is reports identity: same type and same payload. Numbers compare by bit
// pattern, so NaN is NaN and +0 is not -0 (SameValue).
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeString:
		return v.str == other.str
	case TypeNumber:
		a, b := v.AsNumber(), other.AsNumber()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		return v.payload == other.payload
	default:
		return v.payload == other.payload
	}
}

// Inspect returns a debug representation of the value.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return strconv.FormatBool(v.AsBoolean())
	case TypeNumber:
		return NumberToString(v.AsNumber())
	case TypeString:
		return strconv.Quote(v.str)
	case TypeSymbol:
		return fmt.Sprintf("Symbol(#%d)", v.payload)
	case TypeObject:
		return fmt.Sprintf("[object #%s]", Ref(v.payload))
	default:
		return "<unknown>"
	}
}

func (v Value) String() string { return v.Inspect() }
