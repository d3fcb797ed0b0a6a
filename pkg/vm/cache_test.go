package vm

import (
	"testing"
)

func TestPropInlineCacheStates(t *testing.T) {
	r := newTestRealm(t)
	x := StringKey("x")
	build := func(prefix string) *Object {
		obj := r.NewObject()
		if prefix != "" {
			obj.SetOwn(r, StringKey(prefix), True)
		}
		obj.SetOwn(r, x, NewString(prefix))
		return obj
	}

	var ic PropInlineCache
	read := func(obj *Object) string {
		t.Helper()
		v, err := obj.GetCached(r, x, &ic)
		if err != nil {
			t.Fatalf("GetCached: %v", err)
		}
		return v.AsString()
	}

	if read(build("")) != "" || ic.State() != CacheStateMonomorphic {
		t.Fatalf("first read: state %s", ic.State())
	}
	if read(build("")) != "" || ic.Hits() != 1 {
		t.Errorf("same shape should hit, hits=%d", ic.Hits())
	}

	for i, prefix := range []string{"a", "b", "c"} {
		if got := read(build(prefix)); got != prefix {
			t.Errorf("read %q through cache, want %q", got, prefix)
		}
		if ic.State() != CacheStatePolymorphic {
			t.Errorf("after %d shapes: state %s", i+2, ic.State())
		}
	}
	// The fifth shape overflows the cache.
	if read(build("d")) != "d" || ic.State() != CacheStateMegamorphic {
		t.Errorf("expected megamorphic, got %s", ic.State())
	}
	if read(build("a")) != "a" {
		t.Errorf("megamorphic cache must still read correctly")
	}

	stats := r.CacheStats()
	if stats.TotalHits != 1 || stats.MonomorphicHits != 1 || stats.TotalMisses != uint64(ic.Misses()) {
		t.Errorf("stats = %+v, misses = %d", stats, ic.Misses())
	}

	ic.Reset()
	if ic.State() != CacheStateUninitialized || ic.Hits() != 1 {
		t.Errorf("Reset should clear entries but keep counters")
	}
}

func TestPropInlineCacheSkipsUncacheable(t *testing.T) {
	r := newTestRealm(t)
	proto := r.NewObject()
	proto.SetOwn(r, StringKey("inherited"), True)
	obj := r.NewObjectWithProto(proto.Value())
	obj.DefineAccessor(r, StringKey("acc"), Undefined, Undefined, AccessorAttributes(true, true))
	arr := r.NewArray(True, True)

	var ic PropInlineCache
	for _, tc := range []struct {
		obj  *Object
		key  PropertyKey
		want Value
	}{
		{obj, StringKey("inherited"), True},
		{obj, StringKey("acc"), Undefined},
		{arr, StringKey("length"), IntegerValue(2)},
	} {
		v, err := tc.obj.GetCached(r, tc.key, &ic)
		if err != nil || !v.Is(tc.want) {
			t.Errorf("%s = %s (%v), want %s", tc.key, v.Inspect(), err, tc.want.Inspect())
		}
		if ic.State() != CacheStateUninitialized {
			t.Errorf("%s populated the cache", tc.key)
		}
	}
}

func TestDescriptorReadsHitCache(t *testing.T) {
	r := newTestRealm(t)
	newDesc := func(v Value) Value {
		d := r.NewObject()
		d.SetOwn(r, StringKey("value"), v)
		d.SetOwn(r, StringKey("enumerable"), True)
		return d.Value()
	}

	first, err := r.ToPropertyDescriptor(newDesc(IntegerValue(1)))
	if err != nil {
		t.Fatal(err)
	}
	before := r.CacheStats()
	second, err := r.ToPropertyDescriptor(newDesc(IntegerValue(2)))
	if err != nil {
		t.Fatal(err)
	}
	after := r.CacheStats()

	if !first.Value.Is(IntegerValue(1)) || !second.Value.Is(IntegerValue(2)) || second.Enumerable != FlagTrue {
		t.Errorf("descriptors read wrong: %+v / %+v", first, second)
	}
	// Same shape: value and enumerable hit, absent fields never reach the cache.
	if hits := after.TotalHits - before.TotalHits; hits != 2 {
		t.Errorf("expected 2 cache hits on the second read, got %d", hits)
	}
}
