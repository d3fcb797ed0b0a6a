package builtins

import (
	"objmodel/pkg/vm"
)

var (
	keyPrototype   = vm.StringKey("prototype")
	keyConstructor = vm.StringKey("constructor")
	keyLength      = vm.StringKey("length")
)

// defineMethod installs a native function as a writable, non-enumerable,
// configurable property.
func defineMethod(r *vm.Realm, obj *vm.Object, name string, length int, fn vm.NativeFunc) *vm.Object {
	method := r.NewNativeFunction(name, length, fn)
	obj.SetOwnNonEnumerable(r, vm.StringKey(name), method.Value())
	return method
}

// linkConstructor wires ctor.prototype (fixed) and proto.constructor.
func linkConstructor(r *vm.Realm, ctor *vm.Object, proto vm.Value) {
	ctor.DefineData(r, keyPrototype, proto, vm.AttrNone)
	r.Object(proto).SetOwnNonEnumerable(r, keyConstructor, ctor.Value())
}

// requireObject returns v as an object or throws "<fn> called on non-object".
func requireObject(r *vm.Realm, v vm.Value, fn string) (*vm.Object, error) {
	obj := r.Object(v)
	if obj == nil {
		return nil, r.NewTypeError("%s called on non-object", fn)
	}
	return obj, nil
}

// keyValues converts keys to script values (strings and symbols).
func keyValues(keys []vm.PropertyKey) []vm.Value {
	out := make([]vm.Value, len(keys))
	for i, k := range keys {
		out[i] = k.ToValue()
	}
	return out
}

// listFromArrayLike reads 0..length-1 of an array-like object.
func listFromArrayLike(r *vm.Realm, v vm.Value) ([]vm.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	obj := r.Object(v)
	if obj == nil {
		return nil, r.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := obj.ArrayLength(r)
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Options().MaxArguments) {
		return nil, r.NewTypeError("Too many arguments in function call (only %d allowed)", r.Options().MaxArguments)
	}
	return obj.Elements(r)
}

// thisPrimitive unwraps the receiver of a wrapper prototype method: either
// the primitive itself or a wrapper object holding one of type typ.
func thisPrimitive(r *vm.Realm, this vm.Value, typ vm.ValueType, method, class string) (vm.Value, error) {
	if this.Type() == typ {
		return this, nil
	}
	if obj := r.Object(this); obj != nil && obj.PrimitiveValue().Type() == typ {
		return obj.PrimitiveValue(), nil
	}
	return vm.Undefined, r.NewTypeError("%s requires that 'this' be a %s", method, class)
}

// newWrapper is the construct path shared by String, Number and Boolean.
func newWrapper(r *vm.Realm, newTarget, prim, fallback vm.Value) (vm.Value, error) {
	proto, err := r.PrototypeFromConstructor(newTarget, fallback)
	if err != nil {
		return vm.Undefined, err
	}
	obj, err := r.NewPrimitiveObject(prim, proto)
	if err != nil {
		return vm.Undefined, err
	}
	return obj.Value(), nil
}
