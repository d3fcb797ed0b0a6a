package vm

import (
	"math"
	"testing"
)

func newTestRealm(t *testing.T) *Realm {
	t.Helper()
	return NewRealm(DefaultOptions())
}

func keyNames(r *Realm, keys []PropertyKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.KeyString(k)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlainObjectBasic(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	foo := StringKey("foo")

	if obj.HasOwnProperty(r, foo) {
		t.Errorf("expected no own %q on a new object", "foo")
	}
	ok, err := obj.PutValue(r, foo, IntegerValue(42))
	if err != nil || !ok {
		t.Fatalf("Put failed: ok=%v err=%v", ok, err)
	}
	p, found := obj.GetOwnProperty(r, foo)
	if !found {
		t.Fatalf("expected own %q after Put", "foo")
	}
	if p.Value.AsNumber() != 42 || p.Attrs != AttrDefault {
		t.Errorf("unexpected property %v %s", p.Value.Inspect(), p.Attrs)
	}

	// Overwrite keeps the shape.
	shape := obj.Shape()
	if ok, _ := obj.PutValue(r, foo, IntegerValue(7)); !ok {
		t.Fatalf("overwrite rejected")
	}
	if obj.Shape() != shape {
		t.Errorf("expected same shape on overwrite")
	}
	v, _ := obj.GetValue(r, foo)
	if v.AsNumber() != 7 {
		t.Errorf("expected 7, got %s", v.Inspect())
	}

	if !obj.Delete(r, foo) {
		t.Fatalf("delete of configurable property failed")
	}
	if obj.HasOwnProperty(r, foo) {
		t.Errorf("property survived delete")
	}
	if !obj.Delete(r, foo) {
		t.Errorf("deleting a missing property should succeed")
	}
}

func TestShapeConvergence(t *testing.T) {
	r := newTestRealm(t)
	a := r.NewObject()
	b := r.NewObject()
	for _, obj := range []*Object{a, b} {
		obj.SetOwn(r, StringKey("x"), IntegerValue(1))
		obj.SetOwn(r, StringKey("y"), IntegerValue(2))
	}
	if a.Shape() != b.Shape() {
		t.Errorf("same keys in same order should share a shape")
	}

	c := r.NewObject()
	c.SetOwn(r, StringKey("y"), IntegerValue(2))
	c.SetOwn(r, StringKey("x"), IntegerValue(1))
	if c.Shape() == a.Shape() {
		t.Errorf("different insertion order should not share a shape")
	}

	before := r.ShapeStats()
	d := r.NewObject()
	d.SetOwn(r, StringKey("x"), IntegerValue(3))
	d.SetOwn(r, StringKey("y"), IntegerValue(4))
	after := r.ShapeStats()
	if after.Shapes != before.Shapes {
		t.Errorf("replaying known transitions created %d shapes", after.Shapes-before.Shapes)
	}
	if after.TransitionHits <= before.TransitionHits {
		t.Errorf("expected transition hits to grow")
	}
}

func TestShapeDeleteKeepsSlots(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	obj.SetOwn(r, StringKey("a"), IntegerValue(1))
	obj.SetOwn(r, StringKey("b"), IntegerValue(2))
	obj.SetOwn(r, StringKey("c"), IntegerValue(3))
	obj.Delete(r, StringKey("b"))

	got := keyNames(r, obj.OwnPropertyKeys(r))
	if !equalStrings(got, []string{"a", "c"}) {
		t.Errorf("keys after delete: %v", got)
	}
	v, _ := obj.GetValue(r, StringKey("c"))
	if v.AsNumber() != 3 {
		t.Errorf("c moved: %s", v.Inspect())
	}
	obj.SetOwn(r, StringKey("b"), IntegerValue(4))
	got = keyNames(r, obj.OwnPropertyKeys(r))
	if !equalStrings(got, []string{"a", "c", "b"}) {
		t.Errorf("re-added key should go last: %v", got)
	}
}

func TestShapeChurnIsBounded(t *testing.T) {
	t.Run("same key", func(t *testing.T) {
		r := newTestRealm(t)
		obj := r.NewObject()
		obj.SetOwn(r, StringKey("keep"), IntegerValue(7))
		start := r.ShapeStats()
		for i := 0; i < 10000; i++ {
			obj.PutValue(r, StringKey("x"), IntegerValue(int64(i)))
			if !obj.Delete(r, StringKey("x")) {
				t.Fatalf("round %d: delete failed", i)
			}
		}
		checkChurn(t, r, obj, start)
	})

	t.Run("distinct keys", func(t *testing.T) {
		r := newTestRealm(t)
		obj := r.NewObject()
		obj.SetOwn(r, StringKey("keep"), IntegerValue(7))
		start := r.ShapeStats()
		for i := 0; i < 10000; i++ {
			key := StringKey("k" + NumberToString(float64(i)))
			obj.PutValue(r, key, IntegerValue(int64(i)))
			obj.Delete(r, key)
		}
		checkChurn(t, r, obj, start)
	})

	t.Run("holes are refilled in order", func(t *testing.T) {
		r := newTestRealm(t)
		obj := r.NewObject()
		for _, k := range []string{"a", "b", "c"} {
			obj.SetOwn(r, StringKey(k), NewString(k))
		}
		for i := 0; i < dictionaryAfterDeletes; i++ {
			obj.PutValue(r, StringKey("t"), True)
			obj.Delete(r, StringKey("t"))
		}
		if !obj.Shape().IsDictionary() {
			t.Fatalf("expected dictionary shape after %d deletes", dictionaryAfterDeletes)
		}
		slots := obj.Shape().SlotCount()
		obj.Delete(r, StringKey("a"))
		obj.SetOwn(r, StringKey("d"), NewString("d"))
		obj.SetOwn(r, StringKey("a"), NewString("a2"))
		if got := obj.Shape().SlotCount(); got != slots {
			t.Errorf("SlotCount = %d, want %d", got, slots)
		}
		got := keyNames(r, obj.OwnPropertyKeys(r))
		if !equalStrings(got, []string{"b", "c", "d", "a"}) {
			t.Errorf("keys = %v", got)
		}
		for k, want := range map[string]string{"a": "a2", "b": "b", "c": "c", "d": "d"} {
			v, _ := obj.GetValue(r, StringKey(k))
			if v.AsString() != want {
				t.Errorf("%s = %s, want %q", k, v.Inspect(), want)
			}
		}
	})
}

func checkChurn(t *testing.T, r *Realm, obj *Object, start ShapeStats) {
	t.Helper()
	if n := obj.Shape().SlotCount(); n > dictionaryAfterDeletes+1 {
		t.Errorf("SlotCount = %d after churn", n)
	}
	if n := len(obj.slots); n > dictionaryAfterDeletes+1 {
		t.Errorf("%d slots allocated after churn", n)
	}
	stats := r.ShapeStats()
	if grown := stats.Shapes - start.Shapes; grown > 2*dictionaryAfterDeletes+2 {
		t.Errorf("shape tree grew by %d", grown)
	}
	if stats.Dictionary-start.Dictionary != 1 {
		t.Errorf("dictionary conversions = %d, want 1", stats.Dictionary-start.Dictionary)
	}
	if got := keyNames(r, obj.OwnPropertyKeys(r)); !equalStrings(got, []string{"keep"}) {
		t.Errorf("keys after churn = %v", got)
	}
	if v, _ := obj.GetValue(r, StringKey("keep")); v.AsNumber() != 7 {
		t.Errorf("keep = %s", v.Inspect())
	}
}

func TestOwnPropertyKeysOrder(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	sym := r.NewSymbol("s")
	obj.SetOwn(r, StringKey("b"), True)
	obj.SetOwn(r, SymbolKey(sym.AsSymbol()), True)
	obj.SetOwn(r, StringKey("10"), True)
	obj.SetOwn(r, StringKey("a"), True)
	obj.SetOwn(r, StringKey("2"), True)
	obj.SetOwn(r, StringKey("5"), True)
	obj.SetOwn(r, StringKey("01"), True)

	got := keyNames(r, obj.OwnPropertyKeys(r))
	want := []string{"2", "5", "10", "b", "a", "01", "Symbol(s)"}
	if !equalStrings(got, want) {
		t.Errorf("OwnPropertyKeys = %v, want %v", got, want)
	}
}

func TestDefineOwnPropertyValidation(t *testing.T) {
	r := newTestRealm(t)
	getter := r.NewNativeFunction("g", 0, func(*Realm, FunctionCall) (Value, error) { return Undefined, nil }).Value()

	tests := []struct {
		name    string
		initial PropertyDescriptor
		desc    PropertyDescriptor
		want    bool
	}{
		{"redefine same value on frozen data", DataDescriptor(IntegerValue(1), false, true, false), PropertyDescriptor{Value: IntegerValue(1), HasValue: true}, true},
		{"change value on frozen data", DataDescriptor(IntegerValue(1), false, true, false), PropertyDescriptor{Value: IntegerValue(2), HasValue: true}, false},
		{"make read-only writable", DataDescriptor(IntegerValue(1), false, true, false), PropertyDescriptor{Writable: FlagTrue}, false},
		{"make writable read-only", DataDescriptor(IntegerValue(1), true, true, false), PropertyDescriptor{Writable: FlagFalse}, true},
		{"flip enumerable on non-configurable", DataDescriptor(IntegerValue(1), true, true, false), PropertyDescriptor{Enumerable: FlagFalse}, false},
		{"make configurable again", DataDescriptor(IntegerValue(1), true, true, false), PropertyDescriptor{Configurable: FlagTrue}, false},
		{"data to accessor when non-configurable", DataDescriptor(IntegerValue(1), true, true, false), PropertyDescriptor{Getter: getter, HasGet: true}, false},
		{"data to accessor when configurable", DataDescriptor(IntegerValue(1), true, true, true), PropertyDescriptor{Getter: getter, HasGet: true}, true},
		{"same getter on sealed accessor", AccessorDescriptor(getter, Undefined, false, false), PropertyDescriptor{Getter: getter, HasGet: true}, true},
		{"swap getter on sealed accessor", AccessorDescriptor(getter, Undefined, false, false), PropertyDescriptor{Getter: Undefined, HasGet: true}, false},
		{"empty descriptor", DataDescriptor(IntegerValue(1), false, false, false), PropertyDescriptor{}, true},
		{"NaN is the same value", DataDescriptor(NaN, false, false, false), PropertyDescriptor{Value: NaN, HasValue: true}, true},
		{"zero signs differ", DataDescriptor(NumberValue(0), false, false, false), PropertyDescriptor{Value: NumberValue(math.Copysign(0, -1)), HasValue: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := r.NewObject()
			key := StringKey("p")
			if ok, err := obj.DefineOwnProperty(r, key, tt.initial); !ok || err != nil {
				t.Fatalf("initial define failed: ok=%v err=%v", ok, err)
			}
			got, err := obj.DefineOwnProperty(r, key, tt.desc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DefineOwnProperty = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefineOwnPropertyDefaults(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	key := StringKey("x")
	if ok, _ := obj.DefineOwnProperty(r, key, PropertyDescriptor{Value: IntegerValue(1), HasValue: true}); !ok {
		t.Fatalf("define failed")
	}
	p, _ := obj.GetOwnProperty(r, key)
	if p.Attrs != AttrNone {
		t.Errorf("missing fields should default to false, got %s", p.Attrs)
	}
	if got := DescriptorFromProperty(p); !got.Equal(DataDescriptor(IntegerValue(1), false, false, false)) {
		t.Errorf("descriptor round trip lost fields: %+v", got)
	}

	// Converting accessor to data keeps enumerable/configurable and resets writable.
	acc := StringKey("acc")
	obj.DefineOwnProperty(r, acc, AccessorDescriptor(Undefined, Undefined, true, true))
	obj.DefineOwnProperty(r, acc, PropertyDescriptor{Value: True, HasValue: true})
	p, _ = obj.GetOwnProperty(r, acc)
	if p.Attrs != DataAttributes(false, true, true) || !p.Value.Is(True) {
		t.Errorf("accessor to data: %s %s", p.Attrs, p.Value.Inspect())
	}
}

func TestDefineRejectsNonExtensible(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	obj.SetOwn(r, StringKey("a"), IntegerValue(1))
	obj.PreventExtensions(r)

	if ok, _ := obj.DefineOwnProperty(r, StringKey("b"), DataDescriptor(True, true, true, true)); ok {
		t.Errorf("new named property accepted on non-extensible object")
	}
	if ok, _ := obj.DefineOwnProperty(r, IndexKey(0), DataDescriptor(True, true, true, true)); ok {
		t.Errorf("new index accepted on non-extensible object")
	}
	if ok, _ := obj.PutValue(r, StringKey("b"), True); ok {
		t.Errorf("Put of new key accepted on non-extensible object")
	}
	if ok, _ := obj.PutValue(r, StringKey("a"), IntegerValue(2)); !ok {
		t.Errorf("existing writable property should still accept Put")
	}
}

func TestGetThroughPrototypeAccessor(t *testing.T) {
	r := newTestRealm(t)
	proto := r.NewObject()
	var seen Value
	getter := r.NewNativeFunction("get", 0, func(r *Realm, call FunctionCall) (Value, error) {
		seen = call.This
		return NewString("from getter"), nil
	})
	proto.DefineAccessor(r, StringKey("x"), getter.Value(), Undefined, AccessorAttributes(true, true))

	child := r.NewObjectWithProto(proto.Value())
	v, err := child.GetValue(r, StringKey("x"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.AsString() != "from getter" {
		t.Errorf("got %s", v.Inspect())
	}
	if !seen.Is(child.Value()) {
		t.Errorf("getter should run with the receiver as this")
	}

	// No setter: assignment is rejected, not thrown.
	ok, err := child.PutValue(r, StringKey("x"), True)
	if ok || err != nil {
		t.Errorf("Put to getter-only accessor: ok=%v err=%v", ok, err)
	}
}

func TestGetterExceptionPropagates(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	thrower := r.NewNativeFunction("boom", 0, func(r *Realm, _ FunctionCall) (Value, error) {
		return Undefined, r.NewRangeError("boom")
	})
	obj.DefineAccessor(r, StringKey("x"), thrower.Value(), Undefined, AccessorAttributes(true, true))
	_, err := obj.GetValue(r, StringKey("x"))
	if got := r.ErrorName(err); got != "RangeError" {
		t.Errorf("expected RangeError, got %q (%v)", got, err)
	}
}

func TestPutShadowsInheritedData(t *testing.T) {
	r := newTestRealm(t)
	proto := r.NewObject()
	proto.SetOwn(r, StringKey("x"), IntegerValue(1))
	proto.DefineData(r, StringKey("ro"), IntegerValue(1), AttrNone)
	child := r.NewObjectWithProto(proto.Value())

	if ok, _ := child.PutValue(r, StringKey("x"), IntegerValue(2)); !ok {
		t.Fatalf("Put rejected")
	}
	if !child.HasOwnProperty(r, StringKey("x")) {
		t.Errorf("Put should create an own property on the receiver")
	}
	pv, _ := proto.GetValue(r, StringKey("x"))
	if pv.AsNumber() != 1 {
		t.Errorf("prototype value changed to %s", pv.Inspect())
	}

	if ok, _ := child.PutValue(r, StringKey("ro"), IntegerValue(2)); ok {
		t.Errorf("inherited read-only property should block Put")
	}
	if child.HasOwnProperty(r, StringKey("ro")) {
		t.Errorf("rejected Put created an own property")
	}
}

func TestPutWithSetterReceiver(t *testing.T) {
	r := newTestRealm(t)
	proto := r.NewObject()
	setter := r.NewNativeFunction("set", 1, func(r *Realm, call FunctionCall) (Value, error) {
		obj := r.Object(call.This)
		obj.SetOwn(r, StringKey("stored"), call.Argument(0))
		return Undefined, nil
	})
	proto.DefineAccessor(r, StringKey("x"), Undefined, setter.Value(), AccessorAttributes(false, true))
	child := r.NewObjectWithProto(proto.Value())

	ok, err := child.PutValue(r, StringKey("x"), NewString("v"))
	if err != nil || !ok {
		t.Fatalf("Put: ok=%v err=%v", ok, err)
	}
	v, _ := child.GetValue(r, StringKey("stored"))
	if v.AsString() != "v" {
		t.Errorf("setter did not see the receiver: %s", v.Inspect())
	}
	if proto.HasOwnProperty(r, StringKey("stored")) {
		t.Errorf("setter ran against the holder")
	}
}

func TestSetPrototype(t *testing.T) {
	r := newTestRealm(t)
	a := r.NewObject()
	b := r.NewObjectWithProto(a.Value())
	c := r.NewObjectWithProto(b.Value())

	if a.SetPrototype(r, c.Value()) {
		t.Errorf("cycle accepted")
	}
	if !a.PrototypeValue().Is(r.ObjectPrototype) {
		t.Errorf("rejected SetPrototype changed the prototype")
	}
	if a.SetPrototype(r, NewString("x")) {
		t.Errorf("primitive prototype accepted")
	}
	if !c.SetPrototype(r, Null) {
		t.Errorf("null prototype rejected")
	}
	if !c.PrototypeValue().IsNull() {
		t.Errorf("expected null prototype")
	}

	c.PreventExtensions(r)
	if c.SetPrototype(r, a.Value()) {
		t.Errorf("non-extensible object changed prototype")
	}
	if !c.SetPrototype(r, Null) {
		t.Errorf("setting the same prototype should succeed on a non-extensible object")
	}
}

func TestIntegrityLevels(t *testing.T) {
	r := newTestRealm(t)

	tests := []struct {
		name      string
		level     IntegrityLevel
		wantWrite bool
	}{
		{"seal", IntegritySealed, true},
		{"freeze", IntegrityFrozen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := r.NewObject()
			obj.SetOwn(r, StringKey("a"), IntegerValue(1))
			obj.SetOwn(r, IndexKey(0), IntegerValue(2))

			ok, err := obj.SetIntegrityLevel(r, tt.level)
			if err != nil || !ok {
				t.Fatalf("SetIntegrityLevel: ok=%v err=%v", ok, err)
			}
			if !obj.TestIntegrityLevel(r, tt.level) {
				t.Errorf("object is not %s", tt.level)
			}
			for _, key := range []PropertyKey{StringKey("a"), IndexKey(0)} {
				before, _ := obj.GetOwnProperty(r, key)
				if obj.Delete(r, key) {
					t.Errorf("%s object allowed delete of %s", tt.level, key)
				}
				after, ok := obj.GetOwnProperty(r, key)
				if !ok || !after.Value.Is(before.Value) || after.Attrs != before.Attrs {
					t.Errorf("refused delete of %s changed it: %+v -> %+v (present=%v)", key, before, after, ok)
				}
			}
			for _, key := range []PropertyKey{StringKey("a"), IndexKey(0)} {
				ok, _ := obj.PutValue(r, key, IntegerValue(9))
				if ok != tt.wantWrite {
					t.Errorf("Put %s = %v, want %v", key, ok, tt.wantWrite)
				}
			}
			if ok, _ := obj.PutValue(r, StringKey("new"), True); ok {
				t.Errorf("%s object accepted a new property", tt.level)
			}
		})
	}
}

func TestFrozenArrayLength(t *testing.T) {
	r := newTestRealm(t)
	arr := r.NewArray(IntegerValue(1), IntegerValue(2))
	arr.SetIntegrityLevel(r, IntegrityFrozen)
	if !arr.IsFrozen(r) {
		t.Fatalf("array not frozen")
	}
	if ok, _ := arr.Push(r, IntegerValue(3)); ok {
		t.Errorf("push on frozen array succeeded")
	}
	if n, _ := arr.ArrayLength(r); n != 2 {
		t.Errorf("length changed to %d", n)
	}
}

func TestEmptyObjectIntegrity(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	if obj.IsSealed(r) {
		t.Errorf("extensible object reported sealed")
	}
	obj.PreventExtensions(r)
	if !obj.IsSealed(r) || !obj.IsFrozen(r) {
		t.Errorf("empty non-extensible object should be sealed and frozen")
	}
}
