package vm

type ObjectKind uint8

const (
	KindPlain ObjectKind = iota
	KindArray
	KindString
	KindPrimitive
	KindArguments
	KindFunction
	KindError
)

func (k ObjectKind) String() string {
	switch k {
	case KindPlain:
		return "Object"
	case KindArray:
		return "Array"
	case KindString:
		return "String"
	case KindPrimitive:
		return "Primitive"
	case KindArguments:
		return "Arguments"
	case KindFunction:
		return "Function"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

type accessorPair struct {
	getter Value
	setter Value
}

// Object is one script-visible object. Named members live in slots laid out
// by the shape; index keys live in the array storage. Variant payloads hang
// off the kind-specific fields.
type Object struct {
	ref   Ref
	kind  ObjectKind
	class string

	shape     *Shape
	slots     []Value
	accessors map[int]accessorPair
	array     ArrayStorage

	primitive Value    // String, Number, Boolean and Symbol wrappers
	units     []uint16 // UTF-16 code units of a String wrapper
	arguments *ArgumentsBinding
	callable  *Callable

	deletes int // named-member removals before dictionary mode
}

// dictionaryAfterDeletes is how many named deletes an object takes before its
// shape leaves the shared transition tree.
const dictionaryAfterDeletes = 8

func (o *Object) Ref() Ref           { return o.ref }
func (o *Object) Value() Value       { return ObjectValue(o.ref) }
func (o *Object) Kind() ObjectKind   { return o.kind }
func (o *Object) Class() string      { return o.class }
func (o *Object) Shape() *Shape      { return o.shape }
func (o *Object) Prototype() Ref     { return o.shape.proto }
func (o *Object) IsExtensible() bool { return o.shape.extensible }
func (o *Object) IsArray() bool      { return o.kind == KindArray }

// PrimitiveValue is the wrapped value of String/Number/Boolean/Symbol objects.
func (o *Object) PrimitiveValue() Value { return o.primitive }

// Storage exposes the index store, mostly for tests and snapshots.
func (o *Object) Storage() *ArrayStorage { return &o.array }

// Callable returns the function record of a function object, or nil.
func (o *Object) Callable() *Callable { return o.callable }

// Arguments returns the binding of an arguments object, or nil.
func (o *Object) Arguments() *ArgumentsBinding { return o.arguments }

func (o *Object) proto(r *Realm) *Object {
	if o.shape.proto == 0 {
		return nil
	}
	return r.heap.Get(o.shape.proto)
}

// --- Own property lookup ---

// GetOwnProperty returns the own property for key without consulting the
// prototype chain.
func (o *Object) GetOwnProperty(r *Realm, key PropertyKey) (Property, bool) {
	if key.IsIndex() {
		return o.getOwnIndex(key.Index())
	}
	if key == keyLength {
		switch o.kind {
		case KindArray:
			return dataProperty(NumberValue(float64(o.array.Length())), DataAttributes(o.array.LengthWritable(), false, false)), true
		case KindString:
			return dataProperty(IntegerValue(int64(len(o.units))), AttrNone), true
		}
	}
	slot, attrs, ok := o.shape.Find(key)
	if !ok {
		return Property{}, false
	}
	if attrs.IsAccessor() {
		pair := o.accessors[slot]
		return accessorProperty(pair.getter, pair.setter, attrs), true
	}
	return dataProperty(o.slots[slot], attrs), true
}

func (o *Object) getOwnIndex(idx uint32) (Property, bool) {
	switch o.kind {
	case KindString:
		if int64(idx) < int64(len(o.units)) {
			return dataProperty(NewString(CodeUnitString(o.units[idx])), DataAttributes(false, true, false)), true
		}
	case KindArguments:
		return o.arguments.getIndex(o, idx)
	}
	return o.array.Get(idx)
}

func (o *Object) HasOwnProperty(r *Realm, key PropertyKey) bool {
	_, ok := o.GetOwnProperty(r, key)
	return ok
}

// HasProperty checks own properties and then the prototype chain.
func (o *Object) HasProperty(r *Realm, key PropertyKey) bool {
	for cur := o; cur != nil; cur = cur.proto(r) {
		if cur.HasOwnProperty(r, key) {
			return true
		}
	}
	return false
}

// FindProperty walks the prototype chain and returns the first property for
// key and the object holding it.
func (o *Object) FindProperty(r *Realm, key PropertyKey) (Property, *Object, bool) {
	for cur := o; cur != nil; cur = cur.proto(r) {
		if p, ok := cur.GetOwnProperty(r, key); ok {
			return p, cur, true
		}
	}
	return Property{}, nil, false
}

// --- [[Get]] ---

// Get reads key through the prototype chain. Accessors run with receiver as
// this; their exceptions propagate.
func (o *Object) Get(r *Realm, key PropertyKey, receiver Value) (Value, error) {
	// Fast path: own data member.
	if !key.IsIndex() && key != keyLength {
		if slot, attrs, ok := o.shape.Find(key); ok && attrs.IsData() {
			return o.slots[slot], nil
		}
	}
	p, _, ok := o.FindProperty(r, key)
	if !ok {
		return Undefined, nil
	}
	if p.IsAccessor() {
		if p.Getter.IsUndefined() {
			return Undefined, nil
		}
		return r.Call(p.Getter, receiver, nil)
	}
	return p.Value, nil
}

// GetValue is Get with the object itself as receiver.
func (o *Object) GetValue(r *Realm, key PropertyKey) (Value, error) {
	return o.Get(r, key, o.Value())
}

// --- [[Set]] ---

// Put performs an ordinary set. It returns false when the assignment is
// rejected (read-only data, accessor without setter, non-extensible
// receiver); strict callers turn that into a TypeError.
func (o *Object) Put(r *Realm, key PropertyKey, v Value, receiver Value) (bool, error) {
	// Fast path: writable own data member on the receiver itself.
	if receiver.AsRef() == o.ref && !key.IsIndex() && key != keyLength {
		if slot, attrs, ok := o.shape.Find(key); ok && attrs.Writable() {
			o.slots[slot] = v
			r.heap.recordStore(o.ref, v)
			return true, nil
		}
	}

	p, _, found := o.FindProperty(r, key)
	if !found {
		p = dataProperty(Undefined, AttrDefault)
	}

	if p.IsAccessor() {
		if p.Setter.IsUndefined() {
			return false, nil
		}
		if _, err := r.Call(p.Setter, receiver, []Value{v}); err != nil {
			return false, err
		}
		return true, nil
	}

	if !p.Attrs.Writable() {
		return false, nil
	}
	target := r.Object(receiver)
	if target == nil {
		return false, nil
	}
	existing, ok := target.GetOwnProperty(r, key)
	if ok {
		if existing.IsAccessor() || !existing.Attrs.Writable() {
			return false, nil
		}
		return target.DefineOwnProperty(r, key, PropertyDescriptor{Value: v, HasValue: true})
	}
	return target.DefineOwnProperty(r, key, DataDescriptor(v, true, true, true))
}

// PutValue is Put with the object itself as receiver.
func (o *Object) PutValue(r *Realm, key PropertyKey, v Value) (bool, error) {
	return o.Put(r, key, v, o.Value())
}

// --- [[Delete]] ---

// Delete removes an own property and reports whether it is gone.
func (o *Object) Delete(r *Realm, key PropertyKey) bool {
	if key.IsIndex() {
		idx := key.Index()
		switch o.kind {
		case KindString:
			if int64(idx) < int64(len(o.units)) {
				return false
			}
		case KindArguments:
			return o.arguments.deleteIndex(r, o, idx)
		}
		return o.array.Delete(idx)
	}
	if key == keyLength && (o.kind == KindArray || o.kind == KindString) {
		return false
	}

	slot, attrs, ok := o.shape.Find(key)
	if !ok {
		return true
	}
	if !attrs.Configurable() {
		return false
	}
	if o.deletes++; o.deletes >= dictionaryAfterDeletes {
		o.shape = o.shape.ToDictionary()
	}
	o.shape = o.shape.RemoveMember(key)
	o.slots[slot] = Undefined
	delete(o.accessors, slot)
	return true
}

// --- [[DefineOwnProperty]] ---

// DefineOwnProperty validates desc against the current property and applies
// it. A false result means the definition violates the property's
// attributes or the object's extensibility; errors carry exceptions only.
func (o *Object) DefineOwnProperty(r *Realm, key PropertyKey, desc PropertyDescriptor) (bool, error) {
	switch o.kind {
	case KindArray:
		if key == keyLength {
			return o.arraySetLength(r, desc)
		}
		if key.IsIndex() && key.Index() >= o.array.Length() && !o.array.LengthWritable() {
			return false, nil
		}
	case KindString:
		if ok, handled := o.stringDefine(r, key, desc); handled {
			return ok, nil
		}
	case KindArguments:
		if key.IsIndex() {
			return o.arguments.defineIndex(r, o, key.Index(), desc), nil
		}
	}
	return o.ordinaryDefine(r, key, desc), nil
}

func (o *Object) ordinaryDefine(r *Realm, key PropertyKey, desc PropertyDescriptor) bool {
	current, exists := o.GetOwnProperty(r, key)
	next, ok := validateAndApply(current, exists, desc, o.shape.extensible)
	if !ok {
		return false
	}
	if exists && next == current {
		return true
	}
	o.writeOwn(r, key, next)
	return true
}

// validateAndApply reconciles desc with the current property. It returns
// the property to store and whether the change is allowed.
func validateAndApply(current Property, exists bool, desc PropertyDescriptor, extensible bool) (Property, bool) {
	if !exists {
		if !extensible {
			return Property{}, false
		}
		if desc.IsAccessor() {
			getter, setter := Undefined, Undefined
			if desc.HasGet {
				getter = desc.Getter
			}
			if desc.HasSet {
				setter = desc.Setter
			}
			return accessorProperty(getter, setter, AccessorAttributes(desc.Enumerable.Bool(), desc.Configurable.Bool())), true
		}
		v := Undefined
		if desc.HasValue {
			v = desc.Value
		}
		return dataProperty(v, DataAttributes(desc.Writable.Bool(), desc.Enumerable.Bool(), desc.Configurable.Bool())), true
	}

	if desc.isEmpty() {
		return current, true
	}

	attrs := current.Attrs
	if !attrs.Configurable() {
		if desc.Configurable == FlagTrue {
			return current, false
		}
		if desc.Enumerable.IsSet() && desc.Enumerable.Bool() != attrs.Enumerable() {
			return current, false
		}
		if !desc.IsGeneric() && desc.IsAccessor() != attrs.IsAccessor() {
			return current, false
		}
		if attrs.IsAccessor() {
			if desc.HasGet && !desc.Getter.Is(current.Getter) {
				return current, false
			}
			if desc.HasSet && !desc.Setter.Is(current.Setter) {
				return current, false
			}
		} else if !attrs.Writable() {
			if desc.Writable == FlagTrue {
				return current, false
			}
			if desc.HasValue && !desc.Value.Is(current.Value) {
				return current, false
			}
		}
	}

	next := current
	switch {
	case desc.IsAccessor() && attrs.IsData():
		next = accessorProperty(Undefined, Undefined, AccessorAttributes(attrs.Enumerable(), attrs.Configurable()))
	case desc.IsData() && attrs.IsAccessor():
		next = dataProperty(Undefined, DataAttributes(false, attrs.Enumerable(), attrs.Configurable()))
	}
	if desc.HasValue {
		next.Value = desc.Value
	}
	if desc.HasGet {
		next.Getter = desc.Getter
	}
	if desc.HasSet {
		next.Setter = desc.Setter
	}
	if desc.Writable.IsSet() {
		next.Attrs = flagAttr(next.Attrs, AttrWritable, desc.Writable.Bool())
	}
	if desc.Enumerable.IsSet() {
		next.Attrs = flagAttr(next.Attrs, AttrEnumerable, desc.Enumerable.Bool())
	}
	if desc.Configurable.IsSet() {
		next.Attrs = flagAttr(next.Attrs, AttrConfigurable, desc.Configurable.Bool())
	}
	return next, true
}

func flagAttr(a, flag PropertyAttributes, on bool) PropertyAttributes {
	if on {
		return a.with(flag)
	}
	return a.without(flag)
}

// writeOwn stores a fully resolved property, creating it if needed. No
// attribute validation happens here.
func (o *Object) writeOwn(r *Realm, key PropertyKey, p Property) {
	if p.IsAccessor() {
		r.heap.recordStore(o.ref, p.Getter)
		r.heap.recordStore(o.ref, p.Setter)
	} else {
		r.heap.recordStore(o.ref, p.Value)
	}

	if key.IsIndex() {
		o.array.Set(key.Index(), p)
		return
	}

	slot, attrs, ok := o.shape.Find(key)
	if !ok {
		o.shape = o.shape.AddMember(key, p.Attrs)
		slot, _, _ = o.shape.Find(key)
		o.growSlots()
	} else if attrs != p.Attrs {
		o.shape = o.shape.ChangeAttributes(key, p.Attrs)
	}

	if p.IsAccessor() {
		if o.accessors == nil {
			o.accessors = make(map[int]accessorPair)
		}
		o.accessors[slot] = accessorPair{getter: p.Getter, setter: p.Setter}
		o.slots[slot] = Undefined
		return
	}
	delete(o.accessors, slot)
	o.slots[slot] = p.Value
}

func (o *Object) growSlots() {
	if n := o.shape.SlotCount(); n > len(o.slots) {
		for len(o.slots) < n {
			o.slots = append(o.slots, Undefined)
		}
	}
}

// --- Convenience definers used by built-ins and tests ---

// SetOwn creates or overwrites key as a default (writable, enumerable,
// configurable) data property without validation.
func (o *Object) SetOwn(r *Realm, key PropertyKey, v Value) {
	o.writeOwn(r, key, dataProperty(v, AttrDefault))
}

// SetOwnNonEnumerable is SetOwn for built-in methods and hidden members.
func (o *Object) SetOwnNonEnumerable(r *Realm, key PropertyKey, v Value) {
	o.writeOwn(r, key, dataProperty(v, DataAttributes(true, false, true)))
}

// DefineData forces a data property with the given attributes.
func (o *Object) DefineData(r *Realm, key PropertyKey, v Value, attrs PropertyAttributes) {
	o.writeOwn(r, key, dataProperty(v, attrs))
}

// DefineAccessor forces an accessor property.
func (o *Object) DefineAccessor(r *Realm, key PropertyKey, getter, setter Value, attrs PropertyAttributes) {
	o.writeOwn(r, key, accessorProperty(getter, setter, attrs|AttrAccessor))
}

// --- Prototype and extensibility ---

// SetPrototype replaces the prototype. proto must be an object or null.
// Cycles and changes to non-extensible objects are rejected.
func (o *Object) SetPrototype(r *Realm, proto Value) bool {
	if !proto.IsObject() && !proto.IsNull() {
		return false
	}
	ref := proto.AsRef()
	if ref == o.shape.proto {
		return true
	}
	if !o.shape.extensible {
		return false
	}
	for p := r.heap.Get(ref); p != nil; p = p.proto(r) {
		if p == o {
			return false
		}
	}
	o.shape = o.shape.ChangePrototype(ref)
	r.heap.recordStore(o.ref, proto)
	return true
}

// PrototypeValue returns the prototype as a value (null when absent).
func (o *Object) PrototypeValue() Value {
	return ObjectValue(o.shape.proto)
}

func (o *Object) PreventExtensions(r *Realm) bool {
	if o.kind == KindArguments {
		o.arguments.materialize(r, o)
	}
	o.shape = o.shape.PreventExtensions()
	return true
}

// --- Key enumeration ---

// OwnPropertyKeys lists own keys: array indices ascending, then strings in
// creation order, then symbols in creation order.
func (o *Object) OwnPropertyKeys(r *Realm) []PropertyKey {
	if o.kind == KindArguments {
		o.arguments.materialize(r, o)
	}
	indices := o.array.Indices()
	keys := make([]PropertyKey, 0, len(o.units)+len(indices)+o.shape.MemberCount()+1)
	for i := range o.units {
		keys = append(keys, IndexKey(uint32(i)))
	}
	for _, idx := range indices {
		if int64(idx) < int64(len(o.units)) {
			continue
		}
		keys = append(keys, IndexKey(idx))
	}
	if o.kind == KindArray || o.kind == KindString {
		keys = append(keys, keyLength)
	}
	var symbols []PropertyKey
	for _, k := range o.shape.Keys() {
		if k.IsSymbol() {
			symbols = append(symbols, k)
			continue
		}
		keys = append(keys, k)
	}
	return append(keys, symbols...)
}

// --- Heap integration ---

// MarkChildren visits every value this object holds a reference to.
func (o *Object) MarkChildren(visit func(Value)) {
	if o.shape.proto != 0 {
		visit(ObjectValue(o.shape.proto))
	}
	for _, v := range o.slots {
		visit(v)
	}
	for _, pair := range o.accessors {
		visit(pair.getter)
		visit(pair.setter)
	}
	o.array.values(visit)
	if o.kind == KindPrimitive || o.kind == KindString {
		visit(o.primitive)
	}
	if o.arguments != nil {
		o.arguments.markChildren(visit)
	}
	if o.callable != nil {
		o.callable.markChildren(visit)
	}
}
