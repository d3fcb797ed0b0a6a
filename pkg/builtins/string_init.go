package builtins

import (
	"unicode/utf16"

	"objmodel/pkg/vm"
)

type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "String"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	stringProto := r.Object(r.StringPrototype)

	thisString := func(r *vm.Realm, this vm.Value, method string) (vm.Value, error) {
		return thisPrimitive(r, this, vm.TypeString, "String.prototype."+method, "String")
	}

	defineMethod(r, stringProto, "toString", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return thisString(r, call.This, "toString")
	})
	defineMethod(r, stringProto, "valueOf", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return thisString(r, call.This, "valueOf")
	})

	// charAt and charCodeAt coerce the receiver like the rest of
	// String.prototype; only undefined and null are rejected.
	defineMethod(r, stringProto, "charAt", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		units, pos, err := codeUnitArgs(r, call, "charAt")
		if err != nil || pos < 0 || pos >= float64(len(units)) {
			return vm.NewString(""), err
		}
		return vm.NewString(vm.CodeUnitString(units[int(pos)])), nil
	})
	defineMethod(r, stringProto, "charCodeAt", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		units, pos, err := codeUnitArgs(r, call, "charCodeAt")
		if err != nil || pos < 0 || pos >= float64(len(units)) {
			return vm.NumberValue(nanValue), err
		}
		return vm.IntegerValue(int64(units[int(pos)])), nil
	})

	stringCtor := r.NewNativeConstructor("String", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		prim := vm.NewString("")
		if len(call.Args) > 0 {
			arg := call.Args[0]
			if arg.IsSymbol() && !call.IsConstructCall() {
				return vm.NewString(r.Inspect(arg)), nil
			}
			str, err := r.ToString(arg)
			if err != nil {
				return vm.Undefined, err
			}
			prim = vm.NewString(str)
		}
		if !call.IsConstructCall() {
			return prim, nil
		}
		return newWrapper(r, call.NewTarget, prim, r.StringPrototype)
	})
	linkConstructor(r, stringCtor, r.StringPrototype)

	defineMethod(r, stringCtor, "fromCharCode", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		units := make([]uint16, len(call.Args))
		for i, arg := range call.Args {
			f, err := r.ToNumber(arg)
			if err != nil {
				return vm.Undefined, err
			}
			units[i] = uint16(vm.ToUint32(f))
		}
		return vm.NewString(string(utf16.Decode(units))), nil
	})

	return ctx.DefineGlobal("String", stringCtor.Value())
}

// codeUnitArgs coerces the receiver to a string and the first argument to an
// integer position.
func codeUnitArgs(r *vm.Realm, call vm.FunctionCall, method string) ([]uint16, float64, error) {
	if call.This.IsNullish() {
		return nil, 0, r.NewTypeError("String.prototype.%s called on null or undefined", method)
	}
	s, err := r.ToString(call.This)
	if err != nil {
		return nil, 0, err
	}
	pos := 0.0
	if arg := call.Argument(0); !arg.IsUndefined() {
		f, err := r.ToNumber(arg)
		if err != nil {
			return nil, 0, err
		}
		pos = vm.ToIntegerOrInfinity(f)
	}
	return utf16.Encode([]rune(s)), pos, nil
}
