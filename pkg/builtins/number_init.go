package builtins

import (
	"math"
	"math/big"
	"strings"

	"objmodel/pkg/vm"
)

// maxRadixFractionDigits bounds the fraction part of toString(radix) for
// radices whose digits do not terminate.
const maxRadixFractionDigits = 52

var nanValue = math.NaN()

type NumberInitializer struct{}

func (n *NumberInitializer) Name() string {
	return "Number"
}

func (n *NumberInitializer) Priority() int {
	return PriorityNumber
}

func (n *NumberInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	numberProto := r.Object(r.NumberPrototype)

	defineMethod(r, numberProto, "toString", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		x, err := thisPrimitive(r, call.This, vm.TypeNumber, "Number.prototype.toString", "Number")
		if err != nil {
			return vm.Undefined, err
		}
		radix := 10.0
		if arg := call.Argument(0); !arg.IsUndefined() {
			rv, err := r.ToNumber(arg)
			if err != nil {
				return vm.Undefined, err
			}
			radix = vm.ToIntegerOrInfinity(rv)
		}
		if radix < 2 || radix > 36 {
			return vm.Undefined, r.NewRangeError("toString() radix must be between 2 and 36")
		}
		return vm.NewString(formatRadix(x.AsNumber(), int(radix))), nil
	})

	defineMethod(r, numberProto, "valueOf", 0, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return thisPrimitive(r, call.This, vm.TypeNumber, "Number.prototype.valueOf", "Number")
	})

	numberCtor := r.NewNativeConstructor("Number", 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		prim := vm.NumberValue(0)
		if len(call.Args) > 0 {
			f, err := r.ToNumber(call.Args[0])
			if err != nil {
				return vm.Undefined, err
			}
			prim = vm.NumberValue(f)
		}
		if !call.IsConstructCall() {
			return prim, nil
		}
		return newWrapper(r, call.NewTarget, prim, r.NumberPrototype)
	})
	linkConstructor(r, numberCtor, r.NumberPrototype)

	// Constants are neither writable nor configurable.
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"MAX_SAFE_INTEGER", 1<<53 - 1},
		{"MIN_SAFE_INTEGER", -(1<<53 - 1)},
		{"MAX_VALUE", math.MaxFloat64},
		{"MIN_VALUE", math.SmallestNonzeroFloat64},
		{"EPSILON", math.Nextafter(1, 2) - 1},
		{"NaN", math.NaN()},
		{"POSITIVE_INFINITY", math.Inf(1)},
		{"NEGATIVE_INFINITY", math.Inf(-1)},
	} {
		numberCtor.DefineData(r, vm.StringKey(c.name), vm.NumberValue(c.value), vm.AttrNone)
	}

	// Static predicates never coerce their argument.
	numberPredicate := func(name string, test func(float64) bool) {
		defineMethod(r, numberCtor, name, 1, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
			arg := call.Argument(0)
			return vm.BooleanValue(arg.IsNumber() && test(arg.AsNumber())), nil
		})
	}
	numberPredicate("isNaN", math.IsNaN)
	numberPredicate("isFinite", isFinite)
	numberPredicate("isInteger", isInteger)
	numberPredicate("isSafeInteger", func(f float64) bool {
		return isInteger(f) && math.Abs(f) <= 1<<53-1
	})

	return ctx.DefineGlobal("Number", numberCtor.Value())
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isInteger(f float64) bool {
	return isFinite(f) && f == math.Trunc(f)
}

// formatRadix renders f in the given base. Base 10 uses the shortest
// round-trip form; other bases print the integer part exactly and the
// fraction digit by digit.
func formatRadix(f float64, radix int) string {
	if radix == 10 || !isFinite(f) {
		return vm.NumberToString(f)
	}
	var sb strings.Builder
	if f < 0 {
		sb.WriteByte('-')
		f = -f
	}
	whole := math.Trunc(f)
	wi, _ := big.NewFloat(whole).Int(nil)
	sb.WriteString(wi.Text(radix))

	frac := f - whole
	if frac == 0 {
		return sb.String()
	}
	sb.WriteByte('.')
	for i := 0; frac > 0 && (i < maxRadixFractionDigits || radix&(radix-1) == 0); i++ {
		frac *= float64(radix)
		d := int(frac)
		frac -= float64(d)
		sb.WriteByte("0123456789abcdefghijklmnopqrstuvwxyz"[d])
	}
	return sb.String()
}
