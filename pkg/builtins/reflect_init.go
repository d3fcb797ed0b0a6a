package builtins

import (
	"objmodel/pkg/vm"
)

type ReflectInitializer struct{}

func (ri *ReflectInitializer) Name() string {
	return "Reflect"
}

func (ri *ReflectInitializer) Priority() int {
	return PriorityReflect
}

func (ri *ReflectInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	reflectObj := r.NewObject()

	defineMethod(r, reflectObj, "apply", 3, reflectApplyImpl)
	defineMethod(r, reflectObj, "construct", 2, reflectConstructImpl)
	defineMethod(r, reflectObj, "defineProperty", 3, reflectDefinePropertyImpl)
	defineMethod(r, reflectObj, "deleteProperty", 2, reflectDeletePropertyImpl)
	defineMethod(r, reflectObj, "get", 2, reflectGetImpl)
	defineMethod(r, reflectObj, "getOwnPropertyDescriptor", 2, reflectGetOwnPropertyDescriptorImpl)
	defineMethod(r, reflectObj, "getPrototypeOf", 1, reflectGetPrototypeOfImpl)
	defineMethod(r, reflectObj, "has", 2, reflectHasImpl)
	defineMethod(r, reflectObj, "isExtensible", 1, reflectIsExtensibleImpl)
	defineMethod(r, reflectObj, "ownKeys", 1, reflectOwnKeysImpl)
	defineMethod(r, reflectObj, "preventExtensions", 1, reflectPreventExtensionsImpl)
	defineMethod(r, reflectObj, "set", 3, reflectSetImpl)
	defineMethod(r, reflectObj, "setPrototypeOf", 2, reflectSetPrototypeOfImpl)

	reflectObj.DefineData(r, vm.SymbolKey(r.SymbolToStringTag.AsSymbol()), vm.NewString("Reflect"), vm.DataAttributes(false, false, true))

	return ctx.DefineGlobal("Reflect", reflectObj.Value())
}

// targetAndKey validates the target object and converts the key argument.
func targetAndKey(r *vm.Realm, call vm.FunctionCall, fn string) (*vm.Object, vm.PropertyKey, error) {
	target, err := requireObject(r, call.Argument(0), fn)
	if err != nil {
		return nil, vm.PropertyKey{}, err
	}
	key, err := r.ToPropertyKey(call.Argument(1))
	if err != nil {
		return nil, vm.PropertyKey{}, err
	}
	return target, key, nil
}

func reflectApplyImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	fn := call.Argument(0)
	if !r.IsCallable(fn) {
		return vm.Undefined, r.NewTypeError("Reflect.apply target is not a function")
	}
	if !call.Argument(2).IsObject() {
		return vm.Undefined, r.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	args, err := listFromArrayLike(r, call.Argument(2))
	if err != nil {
		return vm.Undefined, err
	}
	return r.Call(fn, call.Argument(1), args)
}

func reflectConstructImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target := call.Argument(0)
	if !r.IsConstructor(target) {
		return vm.Undefined, r.NewTypeError("%s is not a constructor", r.Inspect(target))
	}
	newTarget := target
	if len(call.Args) > 2 {
		newTarget = call.Args[2]
		if !r.IsConstructor(newTarget) {
			return vm.Undefined, r.NewTypeError("%s is not a constructor", r.Inspect(newTarget))
		}
	}
	if !call.Argument(1).IsObject() {
		return vm.Undefined, r.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	args, err := listFromArrayLike(r, call.Argument(1))
	if err != nil {
		return vm.Undefined, err
	}
	return r.Construct(target, args, newTarget)
}

func reflectDefinePropertyImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, key, err := targetAndKey(r, call, "Reflect.defineProperty")
	if err != nil {
		return vm.Undefined, err
	}
	desc, err := r.ToPropertyDescriptor(call.Argument(2))
	if err != nil {
		return vm.Undefined, err
	}
	ok, err := target.DefineOwnProperty(r, key, desc)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(ok), nil
}

func reflectDeletePropertyImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, key, err := targetAndKey(r, call, "Reflect.deleteProperty")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(target.Delete(r, key)), nil
}

func reflectGetImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, key, err := targetAndKey(r, call, "Reflect.get")
	if err != nil {
		return vm.Undefined, err
	}
	receiver := target.Value()
	if len(call.Args) > 2 {
		receiver = call.Args[2]
	}
	return target.Get(r, key, receiver)
}

func reflectGetOwnPropertyDescriptorImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, key, err := targetAndKey(r, call, "Reflect.getOwnPropertyDescriptor")
	if err != nil {
		return vm.Undefined, err
	}
	p, ok := target.GetOwnProperty(r, key)
	if !ok {
		return vm.Undefined, nil
	}
	return r.FromPropertyDescriptor(vm.DescriptorFromProperty(p)), nil
}

func reflectGetPrototypeOfImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, err := requireObject(r, call.Argument(0), "Reflect.getPrototypeOf")
	if err != nil {
		return vm.Undefined, err
	}
	return target.PrototypeValue(), nil
}

func reflectHasImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, key, err := targetAndKey(r, call, "Reflect.has")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(target.HasProperty(r, key)), nil
}

func reflectIsExtensibleImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, err := requireObject(r, call.Argument(0), "Reflect.isExtensible")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(target.IsExtensible()), nil
}

func reflectOwnKeysImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, err := requireObject(r, call.Argument(0), "Reflect.ownKeys")
	if err != nil {
		return vm.Undefined, err
	}
	return r.NewArray(keyValues(target.OwnPropertyKeys(r))...).Value(), nil
}

func reflectPreventExtensionsImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, err := requireObject(r, call.Argument(0), "Reflect.preventExtensions")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(target.PreventExtensions(r)), nil
}

func reflectSetImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, key, err := targetAndKey(r, call, "Reflect.set")
	if err != nil {
		return vm.Undefined, err
	}
	receiver := target.Value()
	if len(call.Args) > 3 {
		receiver = call.Args[3]
	}
	ok, err := target.Put(r, key, call.Argument(2), receiver)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(ok), nil
}

func reflectSetPrototypeOfImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	target, err := requireObject(r, call.Argument(0), "Reflect.setPrototypeOf")
	if err != nil {
		return vm.Undefined, err
	}
	proto := call.Argument(1)
	if !proto.IsObject() && !proto.IsNull() {
		return vm.Undefined, r.NewTypeError("Object prototype may only be an Object or null: %s", r.Inspect(proto))
	}
	return vm.BooleanValue(target.SetPrototype(r, proto)), nil
}
