package snapshot

import (
	"fmt"

	"objmodel/pkg/vm"
)

// intrinsics names the realm-owned objects a snapshot refers to by name
// instead of copying them.
func intrinsics(r *vm.Realm) map[string]vm.Value {
	named := map[string]vm.Value{
		"%ObjectPrototype%":         r.ObjectPrototype,
		"%FunctionPrototype%":       r.FunctionPrototype,
		"%ArrayPrototype%":          r.ArrayPrototype,
		"%StringPrototype%":         r.StringPrototype,
		"%NumberPrototype%":         r.NumberPrototype,
		"%BooleanPrototype%":        r.BooleanPrototype,
		"%SymbolPrototype%":         r.SymbolPrototype,
		"%ErrorPrototype%":          r.ErrorPrototype,
		"%TypeErrorPrototype%":      r.TypeErrorPrototype,
		"%RangeErrorPrototype%":     r.RangeErrorPrototype,
		"%ReferenceErrorPrototype%": r.ReferenceErrorPrototype,
		"%SyntaxErrorPrototype%":    r.SyntaxErrorPrototype,
		"%ThrowTypeError%":          r.ThrowTypeErrorFunc,
		"globalThis":                r.GlobalObject.Value(),
	}
	// Installed globals (constructors, namespaces).
	for _, key := range r.GlobalObject.OwnPropertyKeys(r) {
		if !key.IsString() {
			continue
		}
		if p, ok := r.GlobalObject.GetOwnProperty(r, key); ok && !p.IsAccessor() && p.Value.IsObject() {
			named[key.Name()] = p.Value
		}
	}
	return named
}

func wellKnownSymbols(r *vm.Realm) map[string]vm.Value {
	return map[string]vm.Value{
		"@@iterator":    r.SymbolIterator,
		"@@toPrimitive": r.SymbolToPrimitive,
		"@@toStringTag": r.SymbolToStringTag,
	}
}

type capturer struct {
	realm      *vm.Realm
	snap       *Snapshot
	objects    map[vm.Ref]uint32
	symbols    map[vm.SymbolID]uint32
	intrinsics map[vm.Ref]string
	wellKnown  map[vm.SymbolID]string
	queue      []*vm.Object
}

// Capture records every object reachable from roots through prototypes and
// own property values. Realm intrinsics are stored by name. Functions other
// than intrinsics have no portable form and fail the capture.
func Capture(r *vm.Realm, roots ...vm.Value) (*Snapshot, error) {
	c := &capturer{
		realm:      r,
		snap:       &Snapshot{Version: FormatVersion, Realm: r.ID().String()},
		objects:    make(map[vm.Ref]uint32),
		symbols:    make(map[vm.SymbolID]uint32),
		intrinsics: make(map[vm.Ref]string),
		wellKnown:  make(map[vm.SymbolID]string),
	}
	for name, v := range intrinsics(r) {
		if v.IsObject() {
			c.intrinsics[v.AsRef()] = name
		}
	}
	for name, v := range wellKnownSymbols(r) {
		c.wellKnown[v.AsSymbol()] = name
	}

	for _, root := range roots {
		v, err := c.value(root)
		if err != nil {
			return nil, err
		}
		c.snap.Roots = append(c.snap.Roots, v)
	}
	for len(c.queue) > 0 {
		obj := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.fill(obj); err != nil {
			return nil, err
		}
	}
	log := r.Logger()
	log.Debug().
		Int("objects", len(c.snap.Objects)).
		Int("symbols", len(c.snap.Symbols)).
		Msg("snapshot captured")
	return c.snap, nil
}

func (c *capturer) value(v vm.Value) (Value, error) {
	switch v.Type() {
	case vm.TypeUndefined:
		return Value{Tag: TagUndefined}, nil
	case vm.TypeNull:
		return Value{Tag: TagNull}, nil
	case vm.TypeBoolean:
		return Value{Tag: TagBoolean, Bool: v.AsBoolean()}, nil
	case vm.TypeNumber:
		return Value{Tag: TagNumber, Number: v.AsNumber()}, nil
	case vm.TypeString:
		return Value{Tag: TagString, String: v.AsString()}, nil
	case vm.TypeSymbol:
		return c.symbol(v.AsSymbol()), nil
	case vm.TypeObject:
		return c.object(v)
	}
	return Value{}, fmt.Errorf("snapshot: unsupported value type %s", v.Type())
}

func (c *capturer) symbol(id vm.SymbolID) Value {
	if name, ok := c.wellKnown[id]; ok {
		return Value{Tag: TagSymbol, String: name}
	}
	idx, ok := c.symbols[id]
	if !ok {
		idx = uint32(len(c.snap.Symbols))
		c.symbols[id] = idx
		c.snap.Symbols = append(c.snap.Symbols, Symbol{Description: c.realm.SymbolDescription(id)})
	}
	return Value{Tag: TagSymbol, Ref: idx}
}

func (c *capturer) object(v vm.Value) (Value, error) {
	ref := v.AsRef()
	if name, ok := c.intrinsics[ref]; ok {
		return Value{Tag: TagIntrinsic, String: name}, nil
	}
	if idx, ok := c.objects[ref]; ok {
		return Value{Tag: TagObject, Ref: idx}, nil
	}
	obj := c.realm.Deref(ref)
	if obj == nil {
		return Value{}, fmt.Errorf("snapshot: dangling reference %s", ref)
	}
	if obj.Callable() != nil {
		return Value{}, fmt.Errorf("snapshot: cannot capture function %q", c.realm.FunctionName(v))
	}
	idx := uint32(len(c.snap.Objects))
	c.objects[ref] = idx
	c.snap.Objects = append(c.snap.Objects, Object{})
	c.queue = append(c.queue, obj)
	return Value{Tag: TagObject, Ref: idx}, nil
}

// fill records the object's own state. Virtual properties (array and
// string length, string indices) are implied by the kind.
func (c *capturer) fill(obj *vm.Object) error {
	r := c.realm
	rec := Object{
		Kind:       obj.Kind().String(),
		Class:      obj.Class(),
		Extensible: obj.IsExtensible(),
	}
	proto, err := c.value(obj.PrototypeValue())
	if err != nil {
		return err
	}
	rec.Proto = proto

	switch obj.Kind() {
	case vm.KindArray:
		rec.Length = obj.Storage().Length()
		rec.LengthReadOnly = !obj.Storage().LengthWritable()
	case vm.KindString, vm.KindPrimitive:
		pv, err := c.value(obj.PrimitiveValue())
		if err != nil {
			return err
		}
		rec.Primitive = &pv
	}

	for _, key := range obj.OwnPropertyKeys(r) {
		if isVirtual(obj, key) {
			continue
		}
		p, ok := obj.GetOwnProperty(r, key)
		if !ok {
			continue
		}
		kv, err := c.value(key.ToValue())
		if err != nil {
			return err
		}
		prop := Property{Key: kv, Attrs: uint8(p.Attrs)}
		if p.IsAccessor() {
			g, err := c.value(p.Getter)
			if err != nil {
				return err
			}
			s, err := c.value(p.Setter)
			if err != nil {
				return err
			}
			prop.Getter, prop.Setter = &g, &s
		} else if prop.Value, err = c.value(p.Value); err != nil {
			return err
		}
		rec.Properties = append(rec.Properties, prop)
	}
	c.snap.Objects[c.objects[obj.Ref()]] = rec
	return nil
}

func isVirtual(obj *vm.Object, key vm.PropertyKey) bool {
	switch obj.Kind() {
	case vm.KindArray:
		return key.IsString() && key.Name() == "length"
	case vm.KindString:
		if key.IsIndex() {
			return int(key.Index()) < obj.StringLength()
		}
		return key.IsString() && key.Name() == "length"
	}
	return false
}
