package vm

import (
	"fmt"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Realm is an isolated object world: its own heap, root shape, symbol table
// and intrinsic prototypes. Every object-model operation takes the realm
// explicitly; nothing is ambient. A realm is used by one goroutine at a time.
type Realm struct {
	id   uuid.UUID
	opts Options
	log  zerolog.Logger

	heap       *Heap
	rootShape  *Shape
	shapes     *shapeTable
	symbols    []string
	cacheStats ICacheStats

	// ToPropertyDescriptor field reads
	descriptorSites [6]PropInlineCache

	// Global environment
	GlobalObject *Object

	// Built-in prototypes
	ObjectPrototype         Value
	FunctionPrototype       Value
	ArrayPrototype          Value
	StringPrototype         Value
	NumberPrototype         Value
	BooleanPrototype        Value
	SymbolPrototype         Value
	ErrorPrototype          Value
	TypeErrorPrototype      Value
	RangeErrorPrototype     Value
	ReferenceErrorPrototype Value
	SyntaxErrorPrototype    Value

	// Well-known symbols
	SymbolIterator    Value
	SymbolToPrimitive Value
	SymbolToStringTag Value

	// Symbol registry for Symbol.for()
	SymbolRegistry map[string]Value

	// Intrinsic functions
	ThrowTypeErrorFunc Value // %ThrowTypeError% - for strict mode arguments.callee/caller
}

// NewRealm creates a realm with its prototypes and well-known symbols set up.
// Built-in constructors are installed separately (see package builtins).
func NewRealm(opts Options) *Realm {
	opts = opts.withDefaults()
	id := uuid.New()
	log := opts.Logger.With().Str("realm", id.String()).Logger()

	r := &Realm{
		id:             id,
		opts:           opts,
		log:            log,
		heap:           NewHeap(256, opts.MaxObjects, log),
		shapes:         &shapeTable{},
		SymbolRegistry: make(map[string]Value),
	}
	r.heap.SetBarrier(opts.Barrier)
	r.rootShape = newRootShape(r.shapes)
	r.InitializePrototypes()
	r.InitializeSymbols()
	r.log.Debug().Int("objects", r.heap.Size()).Msg("realm initialized")
	return r
}

func (r *Realm) ID() uuid.UUID          { return r.id }
func (r *Realm) Heap() *Heap            { return r.heap }
func (r *Realm) Logger() zerolog.Logger { return r.log }
func (r *Realm) Options() Options       { return r.opts }

// InitializePrototypes creates the prototype chain for this realm.
func (r *Realm) InitializePrototypes() {
	// Object.prototype is the root (inherits from null)
	r.ObjectPrototype = r.newObject(KindPlain, "Object", Null).Value()

	// Function.prototype is itself callable and returns undefined.
	fp := r.newObject(KindFunction, "Function", r.ObjectPrototype)
	fp.callable = &Callable{kind: CallableNative, native: func(*Realm, FunctionCall) (Value, error) {
		return Undefined, nil
	}}
	fp.DefineData(r, keyLength, IntegerValue(0), DataAttributes(false, false, true))
	fp.DefineData(r, keyName, NewString(""), DataAttributes(false, false, true))
	r.FunctionPrototype = fp.Value()

	r.ArrayPrototype = r.newObject(KindArray, "Array", r.ObjectPrototype).Value()
	r.StringPrototype = r.newStringObject("", r.ObjectPrototype).Value()
	r.NumberPrototype = r.newPrimitiveObject("Number", NumberValue(0), r.ObjectPrototype).Value()
	r.BooleanPrototype = r.newPrimitiveObject("Boolean", False, r.ObjectPrototype).Value()
	r.SymbolPrototype = r.newObject(KindPlain, "Symbol", r.ObjectPrototype).Value()

	// Error prototypes
	r.ErrorPrototype = r.newErrorPrototype("Error", r.ObjectPrototype)
	r.TypeErrorPrototype = r.newErrorPrototype("TypeError", r.ErrorPrototype)
	r.RangeErrorPrototype = r.newErrorPrototype("RangeError", r.ErrorPrototype)
	r.ReferenceErrorPrototype = r.newErrorPrototype("ReferenceError", r.ErrorPrototype)
	r.SyntaxErrorPrototype = r.newErrorPrototype("SyntaxError", r.ErrorPrototype)

	thrower := r.NewNativeFunction("", 0, func(r *Realm, _ FunctionCall) (Value, error) {
		return Undefined, r.NewTypeError("'caller', 'callee', and 'arguments' properties may not be accessed on strict mode functions or the arguments objects for calls to them")
	})
	thrower.SetIntegrityLevel(r, IntegrityFrozen)
	r.ThrowTypeErrorFunc = thrower.Value()

	// Create global object with ObjectPrototype in chain
	r.GlobalObject = r.NewObject()
}

func (r *Realm) newErrorPrototype(name string, parent Value) Value {
	proto := r.newObject(KindPlain, "Error", parent)
	proto.SetOwnNonEnumerable(r, keyName, NewString(name))
	proto.SetOwnNonEnumerable(r, keyMessage, NewString(""))
	return proto.Value()
}

// InitializeSymbols creates well-known symbols for this realm.
func (r *Realm) InitializeSymbols() {
	r.SymbolIterator = r.NewSymbol("Symbol.iterator")
	r.SymbolToPrimitive = r.NewSymbol("Symbol.toPrimitive")
	r.SymbolToStringTag = r.NewSymbol("Symbol.toStringTag")
}

// NewSymbol allocates a fresh symbol with the given description.
func (r *Realm) NewSymbol(description string) Value {
	r.symbols = append(r.symbols, description)
	return SymbolValue(SymbolID(len(r.symbols)))
}

// SymbolFor returns the registry symbol for key, creating it once.
func (r *Realm) SymbolFor(key string) Value {
	if sym, ok := r.SymbolRegistry[key]; ok {
		return sym
	}
	sym := r.NewSymbol(key)
	r.SymbolRegistry[key] = sym
	return sym
}

func (r *Realm) SymbolDescription(id SymbolID) string {
	if id == 0 || int(id) > len(r.symbols) {
		return ""
	}
	return r.symbols[id-1]
}

// KeyString renders a key for messages: names as-is, symbols as
// Symbol(description).
func (r *Realm) KeyString(k PropertyKey) string {
	if k.IsSymbol() {
		return "Symbol(" + r.SymbolDescription(k.Symbol()) + ")"
	}
	return k.Name()
}

// --- Allocation ---

func (r *Realm) newObject(kind ObjectKind, class string, proto Value) *Object {
	obj := &Object{
		kind:  kind,
		class: class,
		shape: r.rootShape.ChangePrototype(proto.AsRef()),
		array: newArrayStorage(r.opts.DenseGapLimit, r.opts.MaxDenseLength),
	}
	r.heap.Allocate(obj)
	obj.array.onPromote = func(length uint32, count int) {
		r.log.Debug().Stringer("object", obj.ref).Uint32("length", length).Int("count", count).Msg("element storage promoted to sparse")
	}
	r.heap.recordStore(obj.ref, proto)
	return obj
}

// NewObject creates a plain object inheriting from Object.prototype.
func (r *Realm) NewObject() *Object {
	return r.newObject(KindPlain, "Object", r.ObjectPrototype)
}

// NewObjectWithProto creates a plain object with an explicit prototype
// (an object or Null).
func (r *Realm) NewObjectWithProto(proto Value) *Object {
	if !proto.IsObject() {
		proto = Null
	}
	return r.newObject(KindPlain, "Object", proto)
}

// NewArray creates an array holding values.
func (r *Realm) NewArray(values ...Value) *Object {
	arr := r.newObject(KindArray, "Array", r.ArrayPrototype)
	for i, v := range values {
		arr.writeOwn(r, IndexKey(uint32(i)), dataProperty(v, AttrDefault))
	}
	return arr
}

// NewArrayWithProto creates an empty array with the given prototype.
func (r *Realm) NewArrayWithProto(proto Value) *Object {
	return r.newObject(KindArray, "Array", proto)
}

func (r *Realm) newStringObject(s string, proto Value) *Object {
	obj := r.newObject(KindString, "String", proto)
	obj.primitive = NewString(s)
	obj.units = utf16.Encode([]rune(s))
	return obj
}

// NewStringObject wraps s in a String object.
func (r *Realm) NewStringObject(s string) *Object {
	return r.newStringObject(s, r.StringPrototype)
}

func (r *Realm) newPrimitiveObject(class string, v Value, proto Value) *Object {
	obj := r.newObject(KindPrimitive, class, proto)
	obj.primitive = v
	return obj
}

// NewPrimitiveObject wraps a string, number, boolean or symbol with an
// explicit prototype. Strings get the exotic String behaviour.
func (r *Realm) NewPrimitiveObject(v Value, proto Value) (*Object, error) {
	switch v.Type() {
	case TypeString:
		return r.newStringObject(v.AsString(), proto), nil
	case TypeNumber:
		return r.newPrimitiveObject("Number", v, proto), nil
	case TypeBoolean:
		return r.newPrimitiveObject("Boolean", v, proto), nil
	case TypeSymbol:
		return r.newPrimitiveObject("Symbol", v, proto), nil
	}
	return nil, r.NewTypeError("%s cannot be wrapped", r.inspect(v))
}

// ToObject converts v to an object, wrapping primitives. Undefined and null
// are a TypeError.
func (r *Realm) ToObject(v Value) (*Object, error) {
	switch v.Type() {
	case TypeObject:
		return r.heap.Get(v.AsRef()), nil
	case TypeString:
		return r.NewStringObject(v.AsString()), nil
	case TypeNumber:
		return r.newPrimitiveObject("Number", v, r.NumberPrototype), nil
	case TypeBoolean:
		return r.newPrimitiveObject("Boolean", v, r.BooleanPrototype), nil
	case TypeSymbol:
		return r.newPrimitiveObject("Symbol", v, r.SymbolPrototype), nil
	default:
		return nil, r.NewTypeError("Cannot convert undefined or null to object")
	}
}

// Object resolves an object value; nil for anything else.
func (r *Realm) Object(v Value) *Object {
	if !v.IsObject() {
		return nil
	}
	return r.heap.Get(v.AsRef())
}

// Deref resolves a heap handle.
func (r *Realm) Deref(ref Ref) *Object {
	return r.heap.Get(ref)
}

// ShapeStats reports transition-tree counters and logs them at debug level.
func (r *Realm) ShapeStats() ShapeStats {
	stats := r.shapes.stats()
	r.log.Debug().
		Uint64("shapes", stats.Shapes).
		Uint64("hits", stats.TransitionHits).
		Uint64("misses", stats.TransitionMisses).
		Uint64("dictionary", stats.Dictionary).
		Msg("shape stats")
	return stats
}

// inspect renders v for error messages.
func (r *Realm) inspect(v Value) string {
	switch v.Type() {
	case TypeString:
		return fmt.Sprintf("%q", v.AsString())
	case TypeSymbol:
		return "Symbol(" + r.SymbolDescription(v.AsSymbol()) + ")"
	case TypeObject:
		obj := r.Object(v)
		if obj == nil {
			return "#<dead object>"
		}
		if obj.callable != nil {
			return "function " + obj.callable.name
		}
		return "#<" + obj.class + ">"
	default:
		return v.Inspect()
	}
}

// Inspect is the exported form of the message renderer.
func (r *Realm) Inspect(v Value) string { return r.inspect(v) }
