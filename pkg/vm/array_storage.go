package vm

import (
	"slices"
)

type storageMode uint8

const (
	storageAbsent storageMode = iota
	storageDense
	storageSparse
)

const (
	DefaultDenseGapLimit  = 1024
	DefaultMaxDenseLength = 1 << 24
)

type element struct {
	value  Value
	getter Value
	setter Value
	attrs  PropertyAttributes
}

func (e element) present() bool { return !e.attrs.IsEmpty() }

func (e element) property() Property {
	if e.attrs.IsAccessor() {
		return accessorProperty(e.getter, e.setter, e.attrs)
	}
	return dataProperty(e.value, e.attrs)
}

func elementOf(p Property) element {
	if p.Attrs.IsAccessor() {
		return element{value: Undefined, getter: p.Getter, setter: p.Setter, attrs: p.Attrs}
	}
	return element{value: p.Value, getter: Undefined, setter: Undefined, attrs: p.Attrs}
}

// ArrayStorage holds the index-keyed properties of an object. It switches
// between a dense slice and a sparse map on its own; callers only see
// indices and properties.
//
// length is kept >= 1 + highest present index. For non-array objects it is
// bookkeeping only.
type ArrayStorage struct {
	mode   storageMode
	dense  []element
	sparse map[uint32]element
	count  int

	length         uint32
	lengthReadOnly bool

	gapLimit uint32
	maxDense uint32

	// onPromote is called when the storage leaves dense mode.
	onPromote func(length uint32, count int)
}

func newArrayStorage(gapLimit, maxDense uint32) ArrayStorage {
	if gapLimit == 0 {
		gapLimit = DefaultDenseGapLimit
	}
	if maxDense == 0 {
		maxDense = DefaultMaxDenseLength
	}
	return ArrayStorage{gapLimit: gapLimit, maxDense: maxDense}
}

func (a *ArrayStorage) Length() uint32 { return a.length }
func (a *ArrayStorage) Count() int     { return a.count }
func (a *ArrayStorage) IsDense() bool  { return a.mode == storageDense }
func (a *ArrayStorage) IsSparse() bool { return a.mode == storageSparse }

func (a *ArrayStorage) LengthWritable() bool { return !a.lengthReadOnly }

func (a *ArrayStorage) SetLengthWritable(writable bool) {
	a.lengthReadOnly = !writable
}

func (a *ArrayStorage) lookup(i uint32) (element, bool) {
	switch a.mode {
	case storageDense:
		if int64(i) < int64(len(a.dense)) && a.dense[i].present() {
			return a.dense[i], true
		}
	case storageSparse:
		e, ok := a.sparse[i]
		return e, ok
	}
	return element{}, false
}

func (a *ArrayStorage) Get(i uint32) (Property, bool) {
	e, ok := a.lookup(i)
	if !ok {
		return Property{}, false
	}
	return e.property(), true
}

func (a *ArrayStorage) Has(i uint32) bool {
	_, ok := a.lookup(i)
	return ok
}

// Set stores p at i, replacing any existing element. It fails only when i is
// at or beyond a read-only length.
func (a *ArrayStorage) Set(i uint32, p Property) bool {
	if i >= a.length && a.lengthReadOnly {
		return false
	}
	a.store(i, elementOf(p))
	if i >= a.length {
		a.length = i + 1
	}
	return true
}

func (a *ArrayStorage) store(i uint32, e element) {
	switch a.mode {
	case storageAbsent:
		if i < a.gapLimit && i < a.maxDense {
			a.mode = storageDense
		} else {
			a.mode = storageSparse
			a.sparse = make(map[uint32]element)
		}
	case storageDense:
		n := uint32(len(a.dense))
		if i >= a.maxDense || (i >= n && i-n > a.gapLimit) {
			a.toSparse()
		}
	}

	switch a.mode {
	case storageDense:
		if int(i) >= len(a.dense) {
			a.dense = slices.Grow(a.dense, int(i)+1-len(a.dense))
			a.dense = a.dense[:i+1]
		}
		if !a.dense[i].present() {
			a.count++
		}
		a.dense[i] = e
	case storageSparse:
		if _, ok := a.sparse[i]; !ok {
			a.count++
		}
		a.sparse[i] = e
	}
}

func (a *ArrayStorage) toSparse() {
	sparse := make(map[uint32]element, a.count)
	for i, e := range a.dense {
		if e.present() {
			sparse[uint32(i)] = e
		}
	}
	a.dense = nil
	a.sparse = sparse
	a.mode = storageSparse
	if a.onPromote != nil {
		a.onPromote(a.length, a.count)
	}
}

// updateAttrs rewrites the attributes of a present element in place.
func (a *ArrayStorage) updateAttrs(i uint32, attrs PropertyAttributes) {
	e, ok := a.lookup(i)
	if !ok {
		return
	}
	e.attrs = attrs
	a.store(i, e)
}

// Delete removes i. Non-configurable elements are kept and reported false.
func (a *ArrayStorage) Delete(i uint32) bool {
	e, ok := a.lookup(i)
	if !ok {
		return true
	}
	if !e.attrs.Configurable() {
		return false
	}
	a.remove(i)
	return true
}

func (a *ArrayStorage) remove(i uint32) {
	switch a.mode {
	case storageDense:
		a.dense[i] = element{}
		for len(a.dense) > 0 && !a.dense[len(a.dense)-1].present() {
			a.dense = a.dense[:len(a.dense)-1]
		}
	case storageSparse:
		delete(a.sparse, i)
	}
	a.count--
}

// Indices returns the present indices in ascending order.
func (a *ArrayStorage) Indices() []uint32 {
	out := make([]uint32, 0, a.count)
	switch a.mode {
	case storageDense:
		for i, e := range a.dense {
			if e.present() {
				out = append(out, uint32(i))
			}
		}
	case storageSparse:
		for i := range a.sparse {
			out = append(out, i)
		}
		slices.Sort(out)
	}
	return out
}

// SetLength grows length without touching elements. Shrinking goes through
// Truncate.
func (a *ArrayStorage) SetLength(n uint32) {
	if n > a.length {
		a.length = n
	}
}

// Truncate deletes elements at or above n from the top down. It stops at the
// first non-configurable element and returns the achieved length.
func (a *ArrayStorage) Truncate(n uint32) uint32 {
	if n >= a.length {
		a.length = n
		return n
	}
	indices := a.Indices()
	for j := len(indices) - 1; j >= 0; j-- {
		idx := indices[j]
		if idx < n {
			break
		}
		if !a.Delete(idx) {
			a.length = idx + 1
			a.Compact()
			return a.length
		}
	}
	a.length = n
	a.Compact()
	return n
}

// Compact moves a sparse store back to dense once it fills at least half of
// its index range.
func (a *ArrayStorage) Compact() {
	if a.count == 0 {
		a.mode = storageAbsent
		a.dense = nil
		a.sparse = nil
		return
	}
	if a.mode != storageSparse {
		return
	}
	var top uint32
	for i := range a.sparse {
		top = max(top, i)
	}
	span := uint64(top) + 1
	if span >= uint64(a.maxDense) || uint64(a.count)*2 < span {
		return
	}
	dense := make([]element, span)
	for i, e := range a.sparse {
		dense[i] = e
	}
	a.dense = dense
	a.sparse = nil
	a.mode = storageDense
}

// values visits every stored value, getter and setter.
func (a *ArrayStorage) values(visit func(Value)) {
	each := func(e element) {
		if e.attrs.IsAccessor() {
			visit(e.getter)
			visit(e.setter)
			return
		}
		visit(e.value)
	}
	switch a.mode {
	case storageDense:
		for _, e := range a.dense {
			if e.present() {
				each(e)
			}
		}
	case storageSparse:
		for _, e := range a.sparse {
			each(e)
		}
	}
}
