package snapshot

import (
	"fmt"

	"objmodel/pkg/vm"
)

type restorer struct {
	realm      *vm.Realm
	objects    []*vm.Object
	symbols    []vm.Value
	intrinsics map[string]vm.Value
	wellKnown  map[string]vm.Value
}

// Restore rebuilds the snapshot's objects in r and returns its roots.
// Intrinsic references resolve to r's own intrinsics.
func Restore(r *vm.Realm, s *Snapshot) ([]vm.Value, error) {
	rs := &restorer{
		realm:      r,
		objects:    make([]*vm.Object, len(s.Objects)),
		symbols:    make([]vm.Value, len(s.Symbols)),
		intrinsics: intrinsics(r),
		wellKnown:  wellKnownSymbols(r),
	}
	for i, sym := range s.Symbols {
		rs.symbols[i] = r.NewSymbol(sym.Description)
	}

	// Allocate every object first so references resolve in any order.
	for i := range s.Objects {
		obj, err := rs.shell(&s.Objects[i])
		if err != nil {
			return nil, fmt.Errorf("snapshot: object %d: %w", i, err)
		}
		rs.objects[i] = obj
	}
	for i := range s.Objects {
		if err := rs.populate(rs.objects[i], &s.Objects[i]); err != nil {
			return nil, fmt.Errorf("snapshot: object %d: %w", i, err)
		}
	}

	roots := make([]vm.Value, len(s.Roots))
	for i, root := range s.Roots {
		v, err := rs.value(root)
		if err != nil {
			return nil, err
		}
		roots[i] = v
	}
	log := r.Logger()
	log.Debug().Str("source", s.Realm).Int("objects", len(s.Objects)).Msg("snapshot restored")
	return roots, nil
}

func (rs *restorer) shell(rec *Object) (*vm.Object, error) {
	r := rs.realm
	switch rec.Kind {
	case vm.KindPlain.String(), vm.KindArguments.String():
		return r.NewObjectWithProto(vm.Null), nil
	case vm.KindArray.String():
		return r.NewArrayWithProto(vm.Null), nil
	case vm.KindError.String():
		obj := r.NewErrorObject(vm.Null, "")
		obj.Delete(r, vm.StringKey("message"))
		return obj, nil
	case vm.KindString.String(), vm.KindPrimitive.String():
		if rec.Primitive == nil {
			return nil, fmt.Errorf("%s wrapper without a primitive value", rec.Kind)
		}
		pv, err := rs.value(*rec.Primitive)
		if err != nil {
			return nil, err
		}
		return r.ToObject(pv)
	}
	return nil, fmt.Errorf("unsupported object kind %q", rec.Kind)
}

func (rs *restorer) populate(obj *vm.Object, rec *Object) error {
	r := rs.realm
	proto, err := rs.value(rec.Proto)
	if err != nil {
		return err
	}
	if !obj.SetPrototype(r, proto) {
		return fmt.Errorf("cannot set prototype to %s", r.Inspect(proto))
	}

	for _, prop := range rec.Properties {
		kv, err := rs.value(prop.Key)
		if err != nil {
			return err
		}
		key, err := r.ToPropertyKey(kv)
		if err != nil {
			return err
		}
		p := vm.Property{Attrs: vm.PropertyAttributes(prop.Attrs)}
		if p.Attrs.IsAccessor() {
			if p.Getter, err = rs.optional(prop.Getter); err != nil {
				return err
			}
			if p.Setter, err = rs.optional(prop.Setter); err != nil {
				return err
			}
		} else if p.Value, err = rs.value(prop.Value); err != nil {
			return err
		}
		ok, err := obj.DefineOwnProperty(r, key, vm.DescriptorFromProperty(p))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cannot define property %s", r.KeyString(key))
		}
	}

	if obj.IsArray() {
		length := vm.PropertyDescriptor{Value: vm.NumberValue(float64(rec.Length)), HasValue: true}
		if rec.LengthReadOnly {
			length.Writable = vm.FlagFalse
		}
		ok, err := obj.DefineOwnProperty(r, vm.StringKey("length"), length)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cannot restore array length %d", rec.Length)
		}
	}
	if !rec.Extensible && !obj.PreventExtensions(r) {
		return fmt.Errorf("cannot prevent extensions")
	}
	return nil
}

func (rs *restorer) optional(v *Value) (vm.Value, error) {
	if v == nil {
		return vm.Undefined, nil
	}
	return rs.value(*v)
}

func (rs *restorer) value(v Value) (vm.Value, error) {
	switch v.Tag {
	case TagUndefined:
		return vm.Undefined, nil
	case TagNull:
		return vm.Null, nil
	case TagBoolean:
		return vm.BooleanValue(v.Bool), nil
	case TagNumber:
		return vm.NumberValue(v.Number), nil
	case TagString:
		return vm.NewString(v.String), nil
	case TagSymbol:
		if v.String != "" {
			sym, ok := rs.wellKnown[v.String]
			if !ok {
				return vm.Undefined, fmt.Errorf("snapshot: unknown well-known symbol %q", v.String)
			}
			return sym, nil
		}
		if int(v.Ref) >= len(rs.symbols) {
			return vm.Undefined, fmt.Errorf("snapshot: symbol index %d out of range", v.Ref)
		}
		return rs.symbols[v.Ref], nil
	case TagObject:
		if int(v.Ref) >= len(rs.objects) {
			return vm.Undefined, fmt.Errorf("snapshot: object index %d out of range", v.Ref)
		}
		return rs.objects[v.Ref].Value(), nil
	case TagIntrinsic:
		obj, ok := rs.intrinsics[v.String]
		if !ok {
			return vm.Undefined, fmt.Errorf("snapshot: unknown intrinsic %q", v.String)
		}
		return obj, nil
	}
	return vm.Undefined, fmt.Errorf("snapshot: unknown value tag %d", v.Tag)
}
