package builtins

import (
	"objmodel/pkg/vm"
)

type SymbolInitializer struct{}

func (s *SymbolInitializer) Name() string {
	return "Symbol"
}

func (s *SymbolInitializer) Priority() int {
	return PrioritySymbol
}

func (s *SymbolInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	symbolProto := r.Object(r.SymbolPrototype)

	defineMethod(r, symbolProto, "toString", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		sym, err := thisPrimitive(r, call.This, vm.TypeSymbol, "Symbol.prototype.toString", "Symbol")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(r.Inspect(sym)), nil
	})
	defineMethod(r, symbolProto, "valueOf", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return thisPrimitive(r, call.This, vm.TypeSymbol, "Symbol.prototype.valueOf", "Symbol")
	})

	description := r.NewNativeFunction("get description", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		sym, err := thisPrimitive(r, call.This, vm.TypeSymbol, "Symbol.prototype.description", "Symbol")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(r.SymbolDescription(sym.AsSymbol())), nil
	})
	symbolProto.DefineAccessor(r, vm.StringKey("description"), description.Value(), vm.Undefined, vm.AccessorAttributes(false, true))
	symbolProto.DefineData(r, vm.SymbolKey(r.SymbolToStringTag.AsSymbol()), vm.NewString("Symbol"), vm.DataAttributes(false, false, true))

	// Symbol() cannot be used with new.
	symbolCtor := r.NewNativeFunction("Symbol", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		desc := ""
		if arg := call.Argument(0); !arg.IsUndefined() {
			str, err := r.ToString(arg)
			if err != nil {
				return vm.Undefined, err
			}
			desc = str
		}
		return r.NewSymbol(desc), nil
	})
	linkConstructor(r, symbolCtor, r.SymbolPrototype)

	defineMethod(r, symbolCtor, "for", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		key, err := r.ToString(call.Argument(0))
		if err != nil {
			return vm.Undefined, err
		}
		return r.SymbolFor(key), nil
	})

	defineMethod(r, symbolCtor, "keyFor", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		sym := call.Argument(0)
		if !sym.IsSymbol() {
			return vm.Undefined, r.NewTypeError("%s is not a symbol", r.Inspect(sym))
		}
		for key, registered := range r.SymbolRegistry {
			if sym.Is(registered) {
				return vm.NewString(key), nil
			}
		}
		return vm.Undefined, nil
	})

	// Well-known symbols
	for _, wk := range []struct {
		name  string
		value vm.Value
	}{
		{"iterator", r.SymbolIterator},
		{"toPrimitive", r.SymbolToPrimitive},
		{"toStringTag", r.SymbolToStringTag},
	} {
		symbolCtor.DefineData(r, vm.StringKey(wk.name), wk.value, vm.AttrNone)
	}

	return ctx.DefineGlobal("Symbol", symbolCtor.Value())
}
