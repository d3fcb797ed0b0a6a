package builtins

import (
	"objmodel/pkg/vm"
)

type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject
}

func (o *ObjectInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	objectProto := r.Object(r.ObjectPrototype)

	// Prototype methods
	defineMethod(r, objectProto, "hasOwnProperty", 1, objectHasOwnPropertyImpl)
	defineMethod(r, objectProto, "propertyIsEnumerable", 1, objectPropertyIsEnumerableImpl)
	defineMethod(r, objectProto, "isPrototypeOf", 1, objectIsPrototypeOfImpl)
	defineMethod(r, objectProto, "toString", 0, objectToStringImpl)
	defineMethod(r, objectProto, "toLocaleString", 0, objectToStringImpl)
	defineMethod(r, objectProto, "valueOf", 0, objectValueOfImpl)

	// __proto__ accessor
	protoGetter := r.NewNativeFunction("get __proto__", 0, objectProtoGetterImpl)
	protoSetter := r.NewNativeFunction("set __proto__", 1, objectProtoSetterImpl)
	objectProto.DefineAccessor(r, vm.StringKey("__proto__"), protoGetter.Value(), protoSetter.Value(), vm.AccessorAttributes(false, true))

	ctor := r.NewNativeConstructor("Object", 1, objectConstructorImpl)
	linkConstructor(r, ctor, r.ObjectPrototype)

	// Static methods
	defineMethod(r, ctor, "keys", 1, objectKeysImpl)
	defineMethod(r, ctor, "values", 1, objectValuesImpl)
	defineMethod(r, ctor, "entries", 1, objectEntriesImpl)
	defineMethod(r, ctor, "assign", 2, objectAssignImpl)
	defineMethod(r, ctor, "create", 2, objectCreateImpl)
	defineMethod(r, ctor, "defineProperty", 3, objectDefinePropertyImpl)
	defineMethod(r, ctor, "defineProperties", 2, objectDefinePropertiesImpl)
	defineMethod(r, ctor, "getOwnPropertyDescriptor", 2, objectGetOwnPropertyDescriptorImpl)
	defineMethod(r, ctor, "getOwnPropertyDescriptors", 1, objectGetOwnPropertyDescriptorsImpl)
	defineMethod(r, ctor, "getOwnPropertyNames", 1, objectGetOwnPropertyNamesImpl)
	defineMethod(r, ctor, "getOwnPropertySymbols", 1, objectGetOwnPropertySymbolsImpl)
	defineMethod(r, ctor, "getPrototypeOf", 1, objectGetPrototypeOfImpl)
	defineMethod(r, ctor, "setPrototypeOf", 2, objectSetPrototypeOfImpl)
	defineMethod(r, ctor, "preventExtensions", 1, objectPreventExtensionsImpl)
	defineMethod(r, ctor, "isExtensible", 1, objectIsExtensibleImpl)
	defineMethod(r, ctor, "seal", 1, objectIntegrityImpl(vm.IntegritySealed))
	defineMethod(r, ctor, "freeze", 1, objectIntegrityImpl(vm.IntegrityFrozen))
	defineMethod(r, ctor, "isSealed", 1, objectTestIntegrityImpl(vm.IntegritySealed))
	defineMethod(r, ctor, "isFrozen", 1, objectTestIntegrityImpl(vm.IntegrityFrozen))
	defineMethod(r, ctor, "is", 2, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return vm.BooleanValue(vm.SameValue(call.Argument(0), call.Argument(1))), nil
	})

	return ctx.DefineGlobal("Object", ctor.Value())
}

func objectConstructorImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	value := call.Argument(0)
	if value.IsNullish() {
		proto := r.ObjectPrototype
		if call.IsConstructCall() {
			var err error
			if proto, err = r.PrototypeFromConstructor(call.NewTarget, r.ObjectPrototype); err != nil {
				return vm.Undefined, err
			}
		}
		return r.NewObjectWithProto(proto).Value(), nil
	}
	obj, err := r.ToObject(value)
	if err != nil {
		return vm.Undefined, err
	}
	return obj.Value(), nil
}

// --- Prototype methods ---

func objectHasOwnPropertyImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	key, err := r.ToPropertyKey(call.Argument(0))
	if err != nil {
		return vm.Undefined, err
	}
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(obj.HasOwnProperty(r, key)), nil
}

func objectPropertyIsEnumerableImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	key, err := r.ToPropertyKey(call.Argument(0))
	if err != nil {
		return vm.Undefined, err
	}
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	p, ok := obj.GetOwnProperty(r, key)
	return vm.BooleanValue(ok && p.Attrs.Enumerable()), nil
}

func objectIsPrototypeOfImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	v := r.Object(call.Argument(0))
	if v == nil {
		return vm.False, nil
	}
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	for p := v.Prototype(); p.IsValid(); {
		if p == obj.Ref() {
			return vm.True, nil
		}
		p = r.Deref(p).Prototype()
	}
	return vm.False, nil
}

func objectToStringImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	switch call.This.Type() {
	case vm.TypeUndefined:
		return vm.NewString("[object Undefined]"), nil
	case vm.TypeNull:
		return vm.NewString("[object Null]"), nil
	}
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	tag := obj.Class()
	if v, err := obj.Get(r, vm.SymbolKey(r.SymbolToStringTag.AsSymbol()), obj.Value()); err != nil {
		return vm.Undefined, err
	} else if v.IsString() {
		tag = v.AsString()
	}
	return vm.NewString("[object " + tag + "]"), nil
}

func objectValueOfImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	return obj.Value(), nil
}

func objectProtoGetterImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	return obj.PrototypeValue(), nil
}

func objectProtoSetterImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	if call.This.IsNullish() {
		return vm.Undefined, r.NewTypeError("Object.prototype.__proto__ called on null or undefined")
	}
	proto := call.Argument(0)
	obj := r.Object(call.This)
	if obj == nil || !(proto.IsObject() || proto.IsNull()) {
		return vm.Undefined, nil
	}
	if !obj.SetPrototype(r, proto) {
		return vm.Undefined, setPrototypeError(r, obj)
	}
	return vm.Undefined, nil
}

// --- Static methods ---

func objectKeysImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.Argument(0))
	if err != nil {
		return vm.Undefined, err
	}
	return r.NewArray(keyValues(r.NewObjectIterator(obj, vm.IterEnumerableOnly).Keys())...).Value(), nil
}

func objectValuesImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	return enumerableOwn(r, call.Argument(0), func(key vm.PropertyKey, v vm.Value) vm.Value {
		return v
	})
}

func objectEntriesImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	return enumerableOwn(r, call.Argument(0), func(key vm.PropertyKey, v vm.Value) vm.Value {
		return r.NewArray(key.ToValue(), v).Value()
	})
}

// enumerableOwn walks the enumerable own string keys of v, reading each value
// through [[Get]] at the moment it is visited.
func enumerableOwn(r *vm.Realm, v vm.Value, emit func(vm.PropertyKey, vm.Value) vm.Value) (vm.Value, error) {
	obj, err := r.ToObject(v)
	if err != nil {
		return vm.Undefined, err
	}
	var out []vm.Value
	it := r.NewObjectIterator(obj, vm.IterEnumerableOnly)
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		val, err := obj.Get(r, item.Key, obj.Value())
		if err != nil {
			return vm.Undefined, err
		}
		out = append(out, emit(item.Key, val))
	}
	return r.NewArray(out...).Value(), nil
}

func objectAssignImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	to, err := r.ToObject(call.Argument(0))
	if err != nil {
		return vm.Undefined, err
	}
	for _, src := range call.Args[min(1, len(call.Args)):] {
		if src.IsNullish() {
			continue
		}
		from, err := r.ToObject(src)
		if err != nil {
			return vm.Undefined, err
		}
		for _, key := range from.OwnPropertyKeys(r) {
			p, ok := from.GetOwnProperty(r, key)
			if !ok || !p.Attrs.Enumerable() {
				continue
			}
			v, err := from.Get(r, key, from.Value())
			if err != nil {
				return vm.Undefined, err
			}
			ok, err = to.Put(r, key, v, to.Value())
			if err := r.ThrowOnFalse(ok, err, "Cannot assign to read only property '%s' of object", r.KeyString(key)); err != nil {
				return vm.Undefined, err
			}
		}
	}
	return to.Value(), nil
}

func objectCreateImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	proto := call.Argument(0)
	if !proto.IsObject() && !proto.IsNull() {
		return vm.Undefined, r.NewTypeError("Object prototype may only be an Object or null: %s", r.Inspect(proto))
	}
	obj := r.NewObjectWithProto(proto)
	if props := call.Argument(1); !props.IsUndefined() {
		if err := defineProperties(r, obj, props); err != nil {
			return vm.Undefined, err
		}
	}
	return obj.Value(), nil
}

func objectDefinePropertyImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := requireObject(r, call.Argument(0), "Object.defineProperty")
	if err != nil {
		return vm.Undefined, err
	}
	key, err := r.ToPropertyKey(call.Argument(1))
	if err != nil {
		return vm.Undefined, err
	}
	desc, err := r.ToPropertyDescriptor(call.Argument(2))
	if err != nil {
		return vm.Undefined, err
	}
	ok, err := obj.DefineOwnProperty(r, key, desc)
	if err := r.ThrowOnFalse(ok, err, "Cannot redefine property: %s", r.KeyString(key)); err != nil {
		return vm.Undefined, err
	}
	return obj.Value(), nil
}

func objectDefinePropertiesImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := requireObject(r, call.Argument(0), "Object.defineProperties")
	if err != nil {
		return vm.Undefined, err
	}
	if err := defineProperties(r, obj, call.Argument(1)); err != nil {
		return vm.Undefined, err
	}
	return obj.Value(), nil
}

// defineProperties converts every descriptor before applying any of them.
func defineProperties(r *vm.Realm, obj *vm.Object, props vm.Value) error {
	src, err := r.ToObject(props)
	if err != nil {
		return err
	}
	type pending struct {
		key  vm.PropertyKey
		desc vm.PropertyDescriptor
	}
	var list []pending
	for _, key := range src.OwnPropertyKeys(r) {
		p, ok := src.GetOwnProperty(r, key)
		if !ok || !p.Attrs.Enumerable() {
			continue
		}
		v, err := src.Get(r, key, src.Value())
		if err != nil {
			return err
		}
		desc, err := r.ToPropertyDescriptor(v)
		if err != nil {
			return err
		}
		list = append(list, pending{key, desc})
	}
	for _, p := range list {
		ok, err := obj.DefineOwnProperty(r, p.key, p.desc)
		if err := r.ThrowOnFalse(ok, err, "Cannot redefine property: %s", r.KeyString(p.key)); err != nil {
			return err
		}
	}
	return nil
}

func objectGetOwnPropertyDescriptorImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.Argument(0))
	if err != nil {
		return vm.Undefined, err
	}
	key, err := r.ToPropertyKey(call.Argument(1))
	if err != nil {
		return vm.Undefined, err
	}
	p, ok := obj.GetOwnProperty(r, key)
	if !ok {
		return vm.Undefined, nil
	}
	return r.FromPropertyDescriptor(vm.DescriptorFromProperty(p)), nil
}

func objectGetOwnPropertyDescriptorsImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.Argument(0))
	if err != nil {
		return vm.Undefined, err
	}
	result := r.NewObject()
	for _, key := range obj.OwnPropertyKeys(r) {
		if p, ok := obj.GetOwnProperty(r, key); ok {
			result.SetOwn(r, key, r.FromPropertyDescriptor(vm.DescriptorFromProperty(p)))
		}
	}
	return result.Value(), nil
}

func objectGetOwnPropertyNamesImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	return ownKeysOfKind(r, call.Argument(0), false)
}

func objectGetOwnPropertySymbolsImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	return ownKeysOfKind(r, call.Argument(0), true)
}

func ownKeysOfKind(r *vm.Realm, v vm.Value, symbols bool) (vm.Value, error) {
	obj, err := r.ToObject(v)
	if err != nil {
		return vm.Undefined, err
	}
	var keys []vm.PropertyKey
	for _, key := range obj.OwnPropertyKeys(r) {
		if key.IsSymbol() == symbols {
			keys = append(keys, key)
		}
	}
	return r.NewArray(keyValues(keys)...).Value(), nil
}

func objectGetPrototypeOfImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.Argument(0))
	if err != nil {
		return vm.Undefined, err
	}
	return obj.PrototypeValue(), nil
}

func objectSetPrototypeOfImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target := call.Argument(0)
	if target.IsNullish() {
		return vm.Undefined, r.NewTypeError("Object.setPrototypeOf called on null or undefined")
	}
	proto := call.Argument(1)
	if !proto.IsObject() && !proto.IsNull() {
		return vm.Undefined, r.NewTypeError("Object prototype may only be an Object or null: %s", r.Inspect(proto))
	}
	obj := r.Object(target)
	if obj == nil {
		return target, nil
	}
	if !obj.SetPrototype(r, proto) {
		return vm.Undefined, setPrototypeError(r, obj)
	}
	return target, nil
}

func setPrototypeError(r *vm.Realm, obj *vm.Object) error {
	if !obj.IsExtensible() {
		return r.NewTypeError("%s is not extensible", r.Inspect(obj.Value()))
	}
	return r.NewTypeError("Cyclic __proto__ value")
}

func objectPreventExtensionsImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj := r.Object(call.Argument(0))
	if obj == nil {
		return call.Argument(0), nil
	}
	if !obj.PreventExtensions(r) {
		return vm.Undefined, r.NewTypeError("Cannot prevent extensions")
	}
	return obj.Value(), nil
}

func objectIsExtensibleImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj := r.Object(call.Argument(0))
	return vm.BooleanValue(obj != nil && obj.IsExtensible()), nil
}

func objectIntegrityImpl(level vm.IntegrityLevel) vm.NativeFunc {
	verb := "seal"
	if level == vm.IntegrityFrozen {
		verb = "freeze"
	}
	return func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		obj := r.Object(call.Argument(0))
		if obj == nil {
			return call.Argument(0), nil
		}
		ok, err := obj.SetIntegrityLevel(r, level)
		if err := r.ThrowOnFalse(ok, err, "Cannot %s object", verb); err != nil {
			return vm.Undefined, err
		}
		return obj.Value(), nil
	}
}

func objectTestIntegrityImpl(level vm.IntegrityLevel) vm.NativeFunc {
	return func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		obj := r.Object(call.Argument(0))
		if obj == nil {
			return vm.True, nil
		}
		return vm.BooleanValue(obj.TestIntegrityLevel(r, level)), nil
	}
}
