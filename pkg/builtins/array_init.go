package builtins

import (
	"objmodel/pkg/vm"
)

type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray
}

func (a *ArrayInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	arrayProto := r.Object(r.ArrayPrototype)

	defineMethod(r, arrayProto, "push", 1, arrayPushImpl)
	defineMethod(r, arrayProto, "pop", 0, arrayPopImpl)

	ctor := r.NewNativeConstructor("Array", 1, arrayConstructorImpl)
	linkConstructor(r, ctor, r.ArrayPrototype)

	defineMethod(r, ctor, "isArray", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		obj := r.Object(call.Argument(0))
		return vm.BooleanValue(obj != nil && obj.IsArray()), nil
	})
	defineMethod(r, ctor, "of", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return r.NewArray(call.Args...).Value(), nil
	})

	return ctx.DefineGlobal("Array", ctor.Value())
}

// arrayConstructorImpl handles both Array(len) and Array(...items).
func arrayConstructorImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	proto, err := r.PrototypeFromConstructor(call.NewTarget, r.ArrayPrototype)
	if err != nil {
		return vm.Undefined, err
	}
	arr := r.NewArrayWithProto(proto)
	if len(call.Args) == 1 && call.Args[0].IsNumber() {
		ok, err := arr.DefineOwnProperty(r, keyLength, vm.PropertyDescriptor{Value: call.Args[0], HasValue: true})
		if err := r.ThrowOnFalse(ok, err, "Invalid array length"); err != nil {
			return vm.Undefined, err
		}
		return arr.Value(), nil
	}
	if _, err := arr.Push(r, call.Args...); err != nil {
		return vm.Undefined, err
	}
	return arr.Value(), nil
}

func arrayPushImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	ok, err := obj.Push(r, call.Args...)
	if err := r.ThrowOnFalse(ok, err, "Cannot add property, object is not extensible"); err != nil {
		return vm.Undefined, err
	}
	n, err := obj.ArrayLength(r)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.NumberValue(float64(n)), nil
}

func arrayPopImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := r.ToObject(call.This)
	if err != nil {
		return vm.Undefined, err
	}
	n, err := obj.ArrayLength(r)
	if err != nil {
		return vm.Undefined, err
	}
	if n == 0 {
		ok, err := obj.Put(r, keyLength, vm.NumberValue(0), obj.Value())
		return vm.Undefined, r.ThrowOnFalse(ok, err, "Cannot assign to read only property 'length' of object")
	}
	key := vm.IndexKey(n - 1)
	v, err := obj.Get(r, key, obj.Value())
	if err != nil {
		return vm.Undefined, err
	}
	if !obj.Delete(r, key) {
		return vm.Undefined, r.NewTypeError("Cannot delete property '%d' of %s", n-1, r.Inspect(obj.Value()))
	}
	ok, err := obj.Put(r, keyLength, vm.NumberValue(float64(n-1)), obj.Value())
	if err := r.ThrowOnFalse(ok, err, "Cannot assign to read only property 'length' of object"); err != nil {
		return vm.Undefined, err
	}
	return v, nil
}
