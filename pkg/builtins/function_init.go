package builtins

import (
	"objmodel/pkg/vm"
)

// FunctionInitializer implements the Function builtin
type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string {
	return "Function"
}

func (f *FunctionInitializer) Priority() int {
	return PriorityFunction // Must be after Object but before others
}

func (f *FunctionInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	functionProto := r.Object(r.FunctionPrototype)

	defineMethod(r, functionProto, "call", 1, functionCallImpl)
	defineMethod(r, functionProto, "apply", 2, functionApplyImpl)
	defineMethod(r, functionProto, "bind", 1, functionBindImpl)
	defineMethod(r, functionProto, "toString", 0, functionToStringImpl)

	// There is no source compiler behind the realm, so the Function global
	// only exposes the prototype; calling it throws.
	ctor := r.NewNativeConstructor("Function", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return vm.Undefined, r.NewSyntaxError("Function constructor is not supported")
	})
	linkConstructor(r, ctor, r.FunctionPrototype)

	return ctx.DefineGlobal("Function", ctor.Value())
}

func functionCallImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	if !r.IsCallable(call.This) {
		return vm.Undefined, r.NewTypeError("Function.prototype.call called on non-function")
	}
	var args []vm.Value
	if len(call.Args) > 1 {
		args = call.Args[1:]
	}
	return r.Call(call.This, call.Argument(0), args)
}

func functionApplyImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	if !r.IsCallable(call.This) {
		return vm.Undefined, r.NewTypeError("Function.prototype.apply called on non-function")
	}
	args, err := listFromArrayLike(r, call.Argument(1))
	if err != nil {
		return vm.Undefined, err
	}
	return r.Call(call.This, call.Argument(0), args)
}

func functionBindImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	var args []vm.Value
	if len(call.Args) > 1 {
		args = append([]vm.Value(nil), call.Args[1:]...)
	}
	bound, err := r.BindFunction(call.This, call.Argument(0), args)
	if err != nil {
		return vm.Undefined, err
	}
	return bound.Value(), nil
}

func functionToStringImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	if !r.IsCallable(call.This) {
		return vm.Undefined, r.NewTypeError("Function.prototype.toString requires that 'this' be a Function")
	}
	return vm.NewString("function " + r.FunctionName(call.This) + "() { [native code] }"), nil
}
