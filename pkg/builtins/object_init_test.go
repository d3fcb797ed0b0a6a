package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objmodel/pkg/vm"
)

func newTestRealm(t *testing.T) *vm.Realm {
	t.Helper()
	r, err := NewRealm(vm.DefaultOptions())
	require.NoError(t, err)
	return r
}

// lookup resolves a dotted global path such as "Object.keys".
func lookup(t *testing.T, r *vm.Realm, path ...string) vm.Value {
	t.Helper()
	v := r.GlobalObject.Value()
	for _, name := range path {
		obj := r.Object(v)
		require.NotNil(t, obj, "resolving %v", path)
		var err error
		v, err = obj.GetValue(r, vm.StringKey(name))
		require.NoError(t, err)
	}
	return v
}

func callGlobal(t *testing.T, r *vm.Realm, this vm.Value, args []vm.Value, path ...string) (vm.Value, error) {
	t.Helper()
	return r.Call(lookup(t, r, path...), this, args)
}

func stringsOf(t *testing.T, r *vm.Realm, arr vm.Value) []string {
	t.Helper()
	obj := r.Object(arr)
	require.NotNil(t, obj)
	values, err := obj.Elements(r)
	require.NoError(t, err)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = r.Inspect(v)
	}
	return out
}

func TestObjectInitializer(t *testing.T) {
	// Test that ObjectInitializer implements the interface correctly
	var initializer BuiltinInitializer = &ObjectInitializer{}

	if initializer.Name() != "Object" {
		t.Errorf("Expected name 'Object', got %s", initializer.Name())
	}

	if initializer.Priority() != PriorityObject {
		t.Errorf("Expected priority %d, got %d", PriorityObject, initializer.Priority())
	}
}

func TestStandardInitializersSorted(t *testing.T) {
	inits := GetStandardInitializers()
	require.NotEmpty(t, inits)
	assert.Equal(t, "Object", inits[0].Name())
	for i := 1; i < len(inits); i++ {
		assert.LessOrEqual(t, inits[i-1].Priority(), inits[i].Priority())
	}
}

func TestInstallDefinesNonEnumerableGlobals(t *testing.T) {
	r := newTestRealm(t)
	for _, name := range []string{"Object", "Function", "Array", "Error", "TypeError", "Reflect", "JSON"} {
		p, ok := r.GlobalObject.GetOwnProperty(r, vm.StringKey(name))
		require.True(t, ok, name)
		assert.False(t, p.Attrs.Enumerable(), name)
		assert.True(t, p.Attrs.Writable(), name)
		assert.True(t, p.Attrs.Configurable(), name)
	}
}

func TestObjectKeysOrdering(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	for _, k := range []string{"b", "10", "a", "5", "2"} {
		obj.SetOwn(r, vm.StringKey(k), vm.NewString(k))
	}
	hidden := r.NewSymbol("hidden")
	obj.SetOwn(r, vm.SymbolKey(hidden.AsSymbol()), vm.True)

	keys, err := callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value()}, "Object", "keys")
	require.NoError(t, err)
	assert.Equal(t, []string{`"2"`, `"5"`, `"10"`, `"b"`, `"a"`}, stringsOf(t, r, keys))

	syms, err := callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value()}, "Object", "getOwnPropertySymbols")
	require.NoError(t, err)
	assert.Len(t, stringsOf(t, r, syms), 1)
}

func TestObjectDefinePropertyFailures(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	obj.DefineData(r, vm.StringKey("fixed"), vm.IntegerValue(1), vm.AttrNone)

	desc := r.NewObject()
	desc.SetOwn(r, vm.StringKey("value"), vm.IntegerValue(2))

	tests := []struct {
		name    string
		args    []vm.Value
		errName string
	}{
		{"non-object target", []vm.Value{vm.IntegerValue(1), vm.NewString("x"), desc.Value()}, "TypeError"},
		{"non-configurable redefinition", []vm.Value{obj.Value(), vm.NewString("fixed"), desc.Value()}, "TypeError"},
		{"descriptor not an object", []vm.Value{obj.Value(), vm.NewString("y"), vm.IntegerValue(3)}, "TypeError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := callGlobal(t, r, vm.Undefined, tt.args, "Object", "defineProperty")
			require.Error(t, err)
			assert.Equal(t, tt.errName, r.ErrorName(err))
		})
	}

	ok, err := callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value(), vm.NewString("fixed"), desc.Value()}, "Reflect", "defineProperty")
	require.NoError(t, err)
	assert.Equal(t, vm.False, ok)
}

func TestObjectDescriptorRoundTrip(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	obj.DefineData(r, vm.StringKey("x"), vm.IntegerValue(7), vm.DataAttributes(false, true, false))

	d, err := callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value(), vm.NewString("x")}, "Object", "getOwnPropertyDescriptor")
	require.NoError(t, err)

	desc, err := r.ToPropertyDescriptor(d)
	require.NoError(t, err)
	assert.True(t, desc.Equal(vm.DataDescriptor(vm.IntegerValue(7), false, true, false)))

	target := r.NewObject()
	_, err = callGlobal(t, r, vm.Undefined, []vm.Value{target.Value(), vm.NewString("x"), d}, "Object", "defineProperty")
	require.NoError(t, err)
	p, ok := target.GetOwnProperty(r, vm.StringKey("x"))
	require.True(t, ok)
	assert.Equal(t, vm.DataAttributes(false, true, false), p.Attrs)
}

func TestObjectFreeze(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	obj.SetOwn(r, vm.StringKey("a"), vm.IntegerValue(1))

	_, err := callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value()}, "Object", "freeze")
	require.NoError(t, err)

	frozen, err := callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value()}, "Object", "isFrozen")
	require.NoError(t, err)
	assert.Equal(t, vm.True, frozen)

	ok, err := obj.PutValue(r, vm.StringKey("a"), vm.IntegerValue(2))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value(), r.NewObject().Value()}, "Object", "assign")
	require.NoError(t, err)

	src := r.NewObject()
	src.SetOwn(r, vm.StringKey("a"), vm.IntegerValue(3))
	_, err = callGlobal(t, r, vm.Undefined, []vm.Value{obj.Value(), src.Value()}, "Object", "assign")
	require.Error(t, err)
	assert.Equal(t, "TypeError", r.ErrorName(err))

	// Primitives pass through.
	v, err := callGlobal(t, r, vm.Undefined, []vm.Value{vm.IntegerValue(5)}, "Object", "freeze")
	require.NoError(t, err)
	assert.Equal(t, vm.IntegerValue(5), v)
}

func TestObjectSetPrototypeOfCycle(t *testing.T) {
	r := newTestRealm(t)
	a := r.NewObject()
	b := r.NewObjectWithProto(a.Value())

	_, err := callGlobal(t, r, vm.Undefined, []vm.Value{a.Value(), b.Value()}, "Object", "setPrototypeOf")
	require.Error(t, err)
	assert.Equal(t, "TypeError", r.ErrorName(err))

	ok, err := callGlobal(t, r, vm.Undefined, []vm.Value{a.Value(), b.Value()}, "Reflect", "setPrototypeOf")
	require.NoError(t, err)
	assert.Equal(t, vm.False, ok)
	assert.Equal(t, r.ObjectPrototype, a.PrototypeValue())
}

func TestObjectPrototypeMethods(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	obj.SetOwn(r, vm.StringKey("x"), vm.IntegerValue(1))
	obj.SetOwnNonEnumerable(r, vm.StringKey("y"), vm.IntegerValue(2))

	tests := []struct {
		name   string
		method string
		this   vm.Value
		args   []vm.Value
		want   vm.Value
	}{
		{"own property", "hasOwnProperty", obj.Value(), []vm.Value{vm.NewString("x")}, vm.True},
		{"inherited property", "hasOwnProperty", obj.Value(), []vm.Value{vm.NewString("toString")}, vm.False},
		{"enumerable", "propertyIsEnumerable", obj.Value(), []vm.Value{vm.NewString("x")}, vm.True},
		{"non-enumerable", "propertyIsEnumerable", obj.Value(), []vm.Value{vm.NewString("y")}, vm.False},
		{"prototype of object", "isPrototypeOf", r.ObjectPrototype, []vm.Value{obj.Value()}, vm.True},
		{"toString object", "toString", obj.Value(), nil, vm.NewString("[object Object]")},
		{"toString array", "toString", r.NewArray().Value(), nil, vm.NewString("[object Array]")},
		{"toString null", "toString", vm.Null, nil, vm.NewString("[object Null]")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := callGlobal(t, r, tt.this, tt.args, "Object", "prototype", tt.method)
			require.NoError(t, err)
			assert.True(t, got.Is(tt.want), "got %s", r.Inspect(got))
		})
	}
}
