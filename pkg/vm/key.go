package vm

import (
	"math"
	"strconv"
	"unique"
)

type KeyKind uint8

const (
	KeyIndex KeyKind = iota
	KeyString
	KeySymbol
)

// MaxArrayIndex is the largest valid array index (2^32 - 2).
const MaxArrayIndex = math.MaxUint32 - 1

// SymbolID identifies a symbol inside the symbol table of one Realm.
type SymbolID uint32

// PropertyKey unifies array indices, strings and symbols into one comparable
// value. Canonical array-index strings are always stored as KeyIndex so the
// same property never has two spellings.
type PropertyKey struct {
	kind  KeyKind
	index uint32
	name  unique.Handle[string]
	sym   SymbolID
}

// IndexKey returns the key for an array index. 2^32-1 is not an array index
// and becomes the string key "4294967295".
func IndexKey(index uint32) PropertyKey {
	if index > MaxArrayIndex {
		return PropertyKey{kind: KeyString, name: unique.Make(strconv.FormatUint(uint64(index), 10))}
	}
	return PropertyKey{kind: KeyIndex, index: index}
}

// StringKey normalizes name: canonical array indices become index keys.
func StringKey(name string) PropertyKey {
	if idx, ok := parseArrayIndex(name); ok {
		return PropertyKey{kind: KeyIndex, index: idx}
	}
	return PropertyKey{kind: KeyString, name: unique.Make(name)}
}

func SymbolKey(id SymbolID) PropertyKey {
	return PropertyKey{kind: KeySymbol, sym: id}
}

func (k PropertyKey) Kind() KeyKind  { return k.kind }
func (k PropertyKey) IsIndex() bool  { return k.kind == KeyIndex }
func (k PropertyKey) IsString() bool { return k.kind == KeyString }
func (k PropertyKey) IsSymbol() bool { return k.kind == KeySymbol }

// Index returns the array index of an index key.
func (k PropertyKey) Index() uint32 { return k.index }

// Symbol returns the symbol id of a symbol key.
func (k PropertyKey) Symbol() SymbolID { return k.sym }

// Name returns the string form of index and string keys. Symbol keys have no
// name; use Realm.SymbolDescription.
func (k PropertyKey) Name() string {
	switch k.kind {
	case KeyIndex:
		return strconv.FormatUint(uint64(k.index), 10)
	case KeyString:
		return k.name.Value()
	default:
		return ""
	}
}

// ToValue converts the key back into a script value (strings for index and
// string keys).
func (k PropertyKey) ToValue() Value {
	if k.kind == KeySymbol {
		return SymbolValue(k.sym)
	}
	return NewString(k.Name())
}

func (k PropertyKey) String() string {
	if k.kind == KeySymbol {
		return "@@" + strconv.FormatUint(uint64(k.sym), 10)
	}
	return k.Name()
}

// parseArrayIndex checks if a string represents a valid array index.
// Valid array indices are non-negative integers in range [0, 2^32-1) without leading zeros.
func parseArrayIndex(key string) (uint32, bool) {
	if key == "" || len(key) > 10 {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	var idx uint64
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if ch < '0' || ch > '9' {
			return 0, false
		}
		idx = idx*10 + uint64(ch-'0')
	}
	if idx > MaxArrayIndex {
		return 0, false
	}
	return uint32(idx), true
}

var (
	keyLength      = StringKey("length")
	keyName        = StringKey("name")
	keyPrototype   = StringKey("prototype")
	keyConstructor = StringKey("constructor")
	keyCallee      = StringKey("callee")
	keyCaller      = StringKey("caller")
	keyMessage     = StringKey("message")
	keyValueOf     = StringKey("valueOf")
	keyToString    = StringKey("toString")
)
