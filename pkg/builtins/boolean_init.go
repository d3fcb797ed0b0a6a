package builtins

import (
	"strconv"

	"objmodel/pkg/vm"
)

type BooleanInitializer struct{}

func (b *BooleanInitializer) Name() string {
	return "Boolean"
}

func (b *BooleanInitializer) Priority() int {
	return PriorityBoolean
}

func (b *BooleanInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	booleanProto := r.Object(r.BooleanPrototype)

	defineMethod(r, booleanProto, "toString", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		b, err := thisPrimitive(r, call.This, vm.TypeBoolean, "Boolean.prototype.toString", "Boolean")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(strconv.FormatBool(b.AsBoolean())), nil
	})

	defineMethod(r, booleanProto, "valueOf", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return thisPrimitive(r, call.This, vm.TypeBoolean, "Boolean.prototype.valueOf", "Boolean")
	})

	// Boolean(x) coerces; new Boolean(x) wraps.
	booleanCtor := r.NewNativeConstructor("Boolean", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		prim := vm.BooleanValue(vm.ToBoolean(call.Argument(0)))
		if !call.IsConstructCall() {
			return prim, nil
		}
		return newWrapper(r, call.NewTarget, prim, r.BooleanPrototype)
	})
	linkConstructor(r, booleanCtor, r.BooleanPrototype)

	return ctx.DefineGlobal("Boolean", booleanCtor.Value())
}
