package builtins

import (
	"objmodel/pkg/vm"
)

type JSONInitializer struct{}

func (j *JSONInitializer) Name() string {
	return "JSON"
}

func (j *JSONInitializer) Priority() int {
	return PriorityJSON
}

func (j *JSONInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	jsonObj := r.NewObject()

	defineMethod(r, jsonObj, "parse", 2, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		text, err := r.ToString(call.Argument(0))
		if err != nil {
			return vm.Undefined, err
		}
		return r.ParseJSON([]byte(text))
	})

	defineMethod(r, jsonObj, "stringify", 3, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		data, err := r.MarshalJSON(call.Argument(0))
		if err != nil {
			return vm.Undefined, err
		}
		if data == nil {
			return vm.Undefined, nil
		}
		return vm.NewString(string(data)), nil
	})

	jsonObj.DefineData(r, vm.SymbolKey(r.SymbolToStringTag.AsSymbol()), vm.NewString("JSON"), vm.DataAttributes(false, false, true))

	return ctx.DefineGlobal("JSON", jsonObj.Value())
}
