package builtins

import (
	"math"

	"objmodel/pkg/vm"
)

type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string {
	return "Globals"
}

func (g *GlobalsInitializer) Priority() int {
	return PriorityGlobals
}

func (g *GlobalsInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	global := r.GlobalObject

	// NaN, Infinity and undefined are fixed.
	global.DefineData(r, vm.StringKey("NaN"), vm.NumberValue(math.NaN()), vm.AttrNone)
	global.DefineData(r, vm.StringKey("Infinity"), vm.NumberValue(math.Inf(1)), vm.AttrNone)
	global.DefineData(r, vm.StringKey("undefined"), vm.Undefined, vm.AttrNone)

	// The coercing forms; Number.isNaN and Number.isFinite do not coerce.
	for _, fn := range []struct {
		name string
		test func(float64) bool
	}{
		{"isNaN", math.IsNaN},
		{"isFinite", isFinite},
	} {
		test := fn.test
		method := r.NewNativeFunction(fn.name, 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
			f, err := r.ToNumber(call.Argument(0))
			if err != nil {
				return vm.Undefined, err
			}
			return vm.BooleanValue(test(f)), nil
		})
		if err := ctx.DefineGlobal(fn.name, method.Value()); err != nil {
			return err
		}
	}

	return ctx.DefineGlobal("globalThis", global.Value())
}
