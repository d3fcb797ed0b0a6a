package builtins

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objmodel/pkg/vm"
)

func TestPrimitiveConstructors(t *testing.T) {
	r := newTestRealm(t)

	t.Run("call coerces", func(t *testing.T) {
		tests := []struct {
			ctor string
			arg  vm.Value
			want vm.Value
		}{
			{"Boolean", vm.NewString(""), vm.False},
			{"Boolean", r.NewObject().Value(), vm.True},
			{"Number", vm.NewString(" 0x1f "), vm.NumberValue(31)},
			{"Number", vm.Null, vm.NumberValue(0)},
			{"String", vm.NumberValue(1e21), vm.NewString("1e+21")},
			{"String", r.NewSymbol("s"), vm.NewString("Symbol(s)")},
		}
		for _, tt := range tests {
			got, err := callGlobal(t, r, vm.Undefined, []vm.Value{tt.arg}, tt.ctor)
			require.NoError(t, err)
			assert.True(t, got.Is(tt.want), "%s(%s) = %s", tt.ctor, r.Inspect(tt.arg), r.Inspect(got))
		}
	})

	t.Run("new wraps", func(t *testing.T) {
		for _, c := range []struct {
			ctor  string
			arg   vm.Value
			proto vm.Value
		}{
			{"Boolean", vm.False, r.BooleanPrototype},
			{"Number", vm.NumberValue(7), r.NumberPrototype},
			{"String", vm.NewString("ab"), r.StringPrototype},
		} {
			v, err := r.Construct(lookup(t, r, c.ctor), []vm.Value{c.arg}, vm.Undefined)
			require.NoError(t, err)
			obj := r.Object(v)
			require.NotNil(t, obj, c.ctor)
			assert.True(t, obj.PrototypeValue().Is(c.proto), c.ctor)
			assert.True(t, obj.PrimitiveValue().Is(c.arg), c.ctor)

			prim, err := callGlobal(t, r, v, nil, c.ctor, "prototype", "valueOf")
			require.NoError(t, err)
			assert.True(t, prim.Is(c.arg), c.ctor)
		}
		// A wrapped false is still an object, so truthy.
		wrapped, err := r.Construct(lookup(t, r, "Boolean"), []vm.Value{vm.False}, vm.Undefined)
		require.NoError(t, err)
		assert.True(t, vm.ToBoolean(wrapped))
	})

	t.Run("symbol is not a constructor", func(t *testing.T) {
		_, err := r.Construct(lookup(t, r, "Symbol"), nil, vm.Undefined)
		assert.Equal(t, "TypeError", r.ErrorName(err))
	})

	t.Run("wrong receiver", func(t *testing.T) {
		_, err := callGlobal(t, r, vm.NewString("x"), nil, "Number", "prototype", "valueOf")
		assert.Equal(t, "TypeError", r.ErrorName(err))
		_, err = callGlobal(t, r, r.NewObject().Value(), nil, "Boolean", "prototype", "toString")
		assert.Equal(t, "TypeError", r.ErrorName(err))
	})
}

func TestNumberToStringRadix(t *testing.T) {
	r := newTestRealm(t)
	tests := []struct {
		n     float64
		radix vm.Value
		want  string
	}{
		{255, vm.NumberValue(16), "ff"},
		{-8, vm.NumberValue(2), "-1000"},
		{0.5, vm.NumberValue(2), "0.1"},
		{0.1, vm.NumberValue(2), "0.0001100110011001100110011001100110011001100110011001101"},
		{35, vm.NumberValue(36), "z"},
		{1e21, vm.Undefined, "1e+21"},
		{math.Inf(-1), vm.NumberValue(2), "-Infinity"},
	}
	for _, tt := range tests {
		got, err := callGlobal(t, r, vm.NumberValue(tt.n), []vm.Value{tt.radix}, "Number", "prototype", "toString")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.AsString(), "(%v).toString(%s)", tt.n, tt.radix.Inspect())
	}

	for _, radix := range []float64{1, 37} {
		_, err := callGlobal(t, r, vm.NumberValue(1), []vm.Value{vm.NumberValue(radix)}, "Number", "prototype", "toString")
		assert.Equal(t, "RangeError", r.ErrorName(err), "radix %v", radix)
	}
}

func TestNumberStatics(t *testing.T) {
	r := newTestRealm(t)
	check := func(fn string, arg vm.Value, want bool) {
		t.Helper()
		got, err := callGlobal(t, r, vm.Undefined, []vm.Value{arg}, "Number", fn)
		require.NoError(t, err)
		assert.Equal(t, want, got.AsBoolean(), "Number.%s(%s)", fn, r.Inspect(arg))
	}
	check("isNaN", vm.NewString("NaN"), false)
	check("isNaN", vm.NumberValue(math.NaN()), true)
	check("isInteger", vm.NumberValue(5), true)
	check("isInteger", vm.NumberValue(5.5), false)
	check("isSafeInteger", vm.NumberValue(1<<53), false)
	check("isFinite", vm.NumberValue(math.Inf(1)), false)

	p, ok := r.Object(lookup(t, r, "Number")).GetOwnProperty(r, vm.StringKey("MAX_SAFE_INTEGER"))
	require.True(t, ok)
	assert.Equal(t, float64(1<<53-1), p.Value.AsNumber())
	assert.Equal(t, vm.AttrNone, p.Attrs)
}

func TestStringMethods(t *testing.T) {
	r := newTestRealm(t)
	s := vm.NewString("a\U0001F600")

	v, err := callGlobal(t, r, s, []vm.Value{vm.NumberValue(1)}, "String", "prototype", "charCodeAt")
	require.NoError(t, err)
	assert.Equal(t, float64(0xD83D), v.AsNumber())

	v, err = callGlobal(t, r, s, []vm.Value{vm.NumberValue(9)}, "String", "prototype", "charAt")
	require.NoError(t, err)
	assert.Equal(t, "", v.AsString())

	v, err = callGlobal(t, r, s, []vm.Value{vm.NumberValue(-1)}, "String", "prototype", "charCodeAt")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.AsNumber()))

	v, err = callGlobal(t, r, vm.Undefined, []vm.Value{vm.NumberValue(0xD83D), vm.NumberValue(0xDE00), vm.NumberValue(0x10061)}, "String", "fromCharCode")
	require.NoError(t, err)
	assert.Equal(t, "\U0001F600a", v.AsString())

	_, err = callGlobal(t, r, vm.Null, nil, "String", "prototype", "charAt")
	assert.Equal(t, "TypeError", r.ErrorName(err))
}

func TestSymbolRegistry(t *testing.T) {
	r := newTestRealm(t)
	a, err := callGlobal(t, r, vm.Undefined, []vm.Value{vm.NewString("app")}, "Symbol", "for")
	require.NoError(t, err)
	b, err := callGlobal(t, r, vm.Undefined, []vm.Value{vm.NewString("app")}, "Symbol", "for")
	require.NoError(t, err)
	assert.True(t, a.Is(b))

	key, err := callGlobal(t, r, vm.Undefined, []vm.Value{a}, "Symbol", "keyFor")
	require.NoError(t, err)
	assert.Equal(t, "app", key.AsString())

	local, err := callGlobal(t, r, vm.Undefined, []vm.Value{vm.NewString("app")}, "Symbol")
	require.NoError(t, err)
	assert.False(t, local.Is(a))
	key, err = callGlobal(t, r, vm.Undefined, []vm.Value{local}, "Symbol", "keyFor")
	require.NoError(t, err)
	assert.True(t, key.IsUndefined())

	desc, err := r.Object(r.SymbolPrototype).Get(r, vm.StringKey("description"), local)
	require.NoError(t, err)
	assert.Equal(t, "app", desc.AsString())

	iter := lookup(t, r, "Symbol", "iterator")
	assert.True(t, iter.Is(r.SymbolIterator))
}

func TestGlobals(t *testing.T) {
	r := newTestRealm(t)
	assert.True(t, lookup(t, r, "globalThis").Is(r.GlobalObject.Value()))

	p, ok := r.GlobalObject.GetOwnProperty(r, vm.StringKey("undefined"))
	require.True(t, ok)
	assert.Equal(t, vm.AttrNone, p.Attrs)
	ok, err := r.GlobalObject.PutValue(r, vm.StringKey("NaN"), vm.NumberValue(1))
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := callGlobal(t, r, vm.Undefined, []vm.Value{vm.NewString("NaN")}, "isNaN")
	require.NoError(t, err)
	assert.True(t, v.AsBoolean())
}

func TestConsoleWritesToRealmLogger(t *testing.T) {
	var buf bytes.Buffer
	opts := vm.DefaultOptions()
	opts.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)
	r, err := NewRealm(opts)
	require.NoError(t, err)
	buf.Reset()

	_, err = callGlobal(t, r, vm.Undefined, []vm.Value{vm.NewString("hello"), vm.NumberValue(1), vm.True}, "console", "log")
	require.NoError(t, err)
	_, err = callGlobal(t, r, vm.Undefined, []vm.Value{vm.NewString("hidden")}, "console", "debug")
	require.NoError(t, err)
	_, err = callGlobal(t, r, vm.Undefined, nil, "console", "count")
	require.NoError(t, err)
	_, err = callGlobal(t, r, vm.Undefined, nil, "console", "count")
	require.NoError(t, err)

	var messages []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "console", entry["source"])
		assert.Equal(t, r.ID().String(), entry["realm"])
		messages = append(messages, entry["message"].(string))
	}
	assert.Equal(t, []string{"hello 1 true", "default: 1", "default: 2"}, messages)
}
