package builtins

import (
	"objmodel/pkg/vm"
)

// ErrorInitializer implements Error and the native error subclasses
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string {
	return "Error"
}

func (e *ErrorInitializer) Priority() int {
	return PriorityError // After basic types but before utility objects
}

func (e *ErrorInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm

	// Error.prototype.toString()
	defineMethod(r, r.Object(r.ErrorPrototype), "toString", 0, errorToStringImpl)

	errorCtor, err := installErrorConstructor(ctx, "Error", r.ErrorPrototype, r.FunctionPrototype)
	if err != nil {
		return err
	}
	for _, sub := range []struct {
		name  string
		proto vm.Value
	}{
		{"TypeError", r.TypeErrorPrototype},
		{"RangeError", r.RangeErrorPrototype},
		{"ReferenceError", r.ReferenceErrorPrototype},
		{"SyntaxError", r.SyntaxErrorPrototype},
	} {
		// Subclass constructors inherit from Error itself.
		if _, err := installErrorConstructor(ctx, sub.name, sub.proto, errorCtor.Value()); err != nil {
			return err
		}
	}
	return nil
}

func installErrorConstructor(ctx *RuntimeContext, name string, proto, parent vm.Value) (*vm.Object, error) {
	r := ctx.Realm
	ctor := r.NewNativeConstructor(name, 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		// Called without new, NewTarget is undefined and proto is used.
		instanceProto, err := r.PrototypeFromConstructor(call.NewTarget, proto)
		if err != nil {
			return vm.Undefined, err
		}
		obj := r.NewErrorObject(instanceProto, "")
		if msg := call.Argument(0); !msg.IsUndefined() {
			s, err := r.ToString(msg)
			if err != nil {
				return vm.Undefined, err
			}
			obj.SetOwnNonEnumerable(r, vm.StringKey("message"), vm.NewString(s))
		} else {
			obj.Delete(r, vm.StringKey("message"))
		}
		return obj.Value(), nil
	})
	if !ctor.SetPrototype(r, parent) {
		return nil, r.NewTypeError("cannot link %s to its parent constructor", name)
	}
	linkConstructor(r, ctor, proto)
	return ctor, ctx.DefineGlobal(name, ctor.Value())
}

func errorToStringImpl(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
	obj, err := requireObject(r, call.This, "Error.prototype.toString")
	if err != nil {
		return vm.Undefined, err
	}
	name, err := stringProperty(r, obj, "name", "Error")
	if err != nil {
		return vm.Undefined, err
	}
	msg, err := stringProperty(r, obj, "message", "")
	if err != nil {
		return vm.Undefined, err
	}
	switch {
	case name == "":
		return vm.NewString(msg), nil
	case msg == "":
		return vm.NewString(name), nil
	}
	return vm.NewString(name + ": " + msg), nil
}

func stringProperty(r *vm.Realm, obj *vm.Object, name, fallback string) (string, error) {
	v, err := obj.Get(r, vm.StringKey(name), obj.Value())
	if err != nil {
		return "", err
	}
	if v.IsUndefined() {
		return fallback, nil
	}
	return r.ToString(v)
}
