package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objmodel/pkg/vm"
)

// collectArgs returns a native function that reports its this and arguments.
func collectArgs(r *vm.Realm, name string, length int) *vm.Object {
	return r.NewNativeFunction(name, length, func(r *vm.Realm, call vm.FunctionCall) (vm.Value, error) {
		return r.NewArray(append([]vm.Value{call.This}, call.Args...)...).Value(), nil
	})
}

func TestFunctionCallAndApply(t *testing.T) {
	r := newTestRealm(t)
	fn := collectArgs(r, "f", 2)
	this := r.NewObject().Value()

	got, err := callGlobal(t, r, fn.Value(), []vm.Value{this, vm.IntegerValue(1), vm.IntegerValue(2)}, "Function", "prototype", "call")
	require.NoError(t, err)
	values, err := r.Object(got).Elements(r)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.True(t, values[0].Is(this))
	assert.True(t, values[2].Is(vm.IntegerValue(2)))

	list := r.NewArray(vm.NewString("a"), vm.NewString("b"))
	got, err = callGlobal(t, r, fn.Value(), []vm.Value{this, list.Value()}, "Function", "prototype", "apply")
	require.NoError(t, err)
	values, err = r.Object(got).Elements(r)
	require.NoError(t, err)
	assert.Len(t, values, 3)

	_, err = callGlobal(t, r, fn.Value(), []vm.Value{this, vm.IntegerValue(1)}, "Function", "prototype", "apply")
	require.Error(t, err)
	assert.Equal(t, "TypeError", r.ErrorName(err))
}

func TestFunctionBindFlattens(t *testing.T) {
	r := newTestRealm(t)
	fn := collectArgs(r, "target", 3)
	thisA := r.NewObject().Value()
	thisB := r.NewObject().Value()

	bind := lookup(t, r, "Function", "prototype", "bind")
	once, err := r.Call(bind, fn.Value(), []vm.Value{thisA, vm.IntegerValue(1)})
	require.NoError(t, err)
	twice, err := r.Call(bind, once, []vm.Value{thisB, vm.IntegerValue(2)})
	require.NoError(t, err)

	c := r.Object(twice).Callable()
	require.NotNil(t, c)
	assert.Equal(t, vm.CallableBound, c.Kind())
	assert.True(t, c.BoundTarget().Is(fn.Value()), "nested bind should target the original function")

	name, err := r.Object(twice).GetValue(r, vm.StringKey("name"))
	require.NoError(t, err)
	assert.Equal(t, "bound bound target", name.AsString())

	length, err := r.Object(twice).GetValue(r, vm.StringKey("length"))
	require.NoError(t, err)
	assert.Equal(t, float64(1), length.AsNumber())

	got, err := r.Call(twice, vm.Undefined, []vm.Value{vm.IntegerValue(3)})
	require.NoError(t, err)
	values, err := r.Object(got).Elements(r)
	require.NoError(t, err)
	require.Len(t, values, 4)
	assert.True(t, values[0].Is(thisA))
	assert.Equal(t, []string{"1", "2", "3"}, []string{values[1].Inspect(), values[2].Inspect(), values[3].Inspect()})
}

func TestFunctionConstructorUnsupported(t *testing.T) {
	r := newTestRealm(t)
	_, err := r.Construct(lookup(t, r, "Function"), nil, vm.Undefined)
	require.Error(t, err)
	assert.Equal(t, "SyntaxError", r.ErrorName(err))
}
