package vm

import (
	"testing"
)

func TestObjectIteratorOrder(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	sym := r.NewSymbol("s")
	obj.SetOwn(r, StringKey("b"), True)
	obj.SetOwn(r, SymbolKey(sym.AsSymbol()), True)
	obj.SetOwn(r, IndexKey(1), True)
	obj.DefineData(r, StringKey("hidden"), True, DataAttributes(true, false, true))
	obj.SetOwn(r, IndexKey(0), True)

	tests := []struct {
		name  string
		flags IterFlags
		want  []string
	}{
		{"all string keys", 0, []string{"0", "1", "b", "hidden"}},
		{"enumerable only", IterEnumerableOnly, []string{"0", "1", "b"}},
		{"with symbols", IterEnumerableOnly | IterIncludeSymbols, []string{"0", "1", "b", "Symbol(s)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keyNames(r, r.NewObjectIterator(obj, tt.flags).Keys())
			if !equalStrings(got, tt.want) {
				t.Errorf("keys = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObjectIteratorShadowing(t *testing.T) {
	r := newTestRealm(t)
	proto := r.NewObject()
	proto.SetOwn(r, StringKey("a"), True)
	proto.SetOwn(r, StringKey("b"), True)
	proto.SetOwn(r, IndexKey(0), True)
	child := r.NewObjectWithProto(proto.Value())
	child.DefineData(r, StringKey("b"), False, DataAttributes(true, false, true))
	child.SetOwn(r, StringKey("c"), True)

	it := r.NewObjectIterator(child, IterEnumerableOnly|IterIncludePrototypes)
	var got []string
	var owners []*Object
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, r.KeyString(item.Key))
		owners = append(owners, item.Owner)
	}
	// A non-enumerable own "b" still hides the inherited one.
	want := []string{"c", "0", "a"}
	if !equalStrings(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if owners[0] != child || owners[1] != proto || owners[2] != proto {
		t.Errorf("owners do not match holders")
	}
	if _, ok := it.Next(); ok {
		t.Errorf("exhausted iterator yielded again")
	}
}

func TestObjectIteratorSkipsDeleted(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewObject()
	for _, k := range []string{"x", "y", "z"} {
		obj.SetOwn(r, StringKey(k), True)
	}
	it := r.NewObjectIterator(obj, IterEnumerableOnly)
	first, _ := it.Next()
	if first.Key.Name() != "x" {
		t.Fatalf("first key = %s", first.Key)
	}
	obj.Delete(r, StringKey("y"))
	obj.SetOwn(r, StringKey("w"), True)

	got := keyNames(r, it.Keys())
	if !equalStrings(got, []string{"z"}) {
		t.Errorf("remaining keys = %v", got)
	}
}

func TestObjectIteratorStringWrapper(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewStringObject("ab")
	got := keyNames(r, r.NewObjectIterator(obj, IterEnumerableOnly).Keys())
	if !equalStrings(got, []string{"0", "1"}) {
		t.Errorf("keys = %v", got)
	}
	if keys := r.NewObjectIterator(nil, 0).Keys(); len(keys) != 0 {
		t.Errorf("nil object yielded %v", keys)
	}
}
