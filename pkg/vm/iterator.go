package vm

type IterFlags uint8

const (
	// IterEnumerableOnly skips non-enumerable properties.
	IterEnumerableOnly IterFlags = 1 << iota
	// IterIncludeSymbols yields symbol keys after string keys.
	IterIncludeSymbols
	// IterIncludePrototypes continues up the prototype chain, hiding keys
	// shadowed by a nearer object.
	IterIncludePrototypes
)

type iterPhase uint8

const (
	phaseArray iterPhase = iota
	phaseMembers
	phaseAdvance
	phaseDone
)

// IterItem is one enumerated property.
type IterItem struct {
	Key      PropertyKey
	Property Property
	Owner    *Object
}

// ObjectIterator enumerates own (and optionally inherited) properties in
// OwnPropertyKeys order. It is single pass. Properties deleted after the
// iterator captured an object's keys are skipped when reached.
type ObjectIterator struct {
	realm *Realm
	flags IterFlags
	obj   *Object
	phase iterPhase

	indices []PropertyKey
	members []PropertyKey
	pos     int
	seen    map[PropertyKey]struct{}
}

func (r *Realm) NewObjectIterator(obj *Object, flags IterFlags) *ObjectIterator {
	it := &ObjectIterator{realm: r, flags: flags, obj: obj}
	if flags&IterIncludePrototypes != 0 {
		it.seen = make(map[PropertyKey]struct{})
	}
	if obj == nil {
		it.phase = phaseDone
		return it
	}
	it.load()
	return it
}

// load snapshots the keys of the current object.
func (it *ObjectIterator) load() {
	keys := it.obj.OwnPropertyKeys(it.realm)
	it.indices = it.indices[:0]
	it.members = it.members[:0]
	for _, k := range keys {
		switch {
		case k.IsIndex():
			it.indices = append(it.indices, k)
		case k.IsSymbol() && it.flags&IterIncludeSymbols == 0:
		default:
			it.members = append(it.members, k)
		}
	}
	it.pos = 0
	it.phase = phaseArray
}

// Next returns the next property, or false once exhausted.
func (it *ObjectIterator) Next() (IterItem, bool) {
	for {
		switch it.phase {
		case phaseArray:
			if it.pos >= len(it.indices) {
				it.phase = phaseMembers
				it.pos = 0
				continue
			}
			key := it.indices[it.pos]
			it.pos++
			if item, ok := it.yield(key); ok {
				return item, true
			}

		case phaseMembers:
			if it.pos >= len(it.members) {
				it.phase = phaseAdvance
				continue
			}
			key := it.members[it.pos]
			it.pos++
			if item, ok := it.yield(key); ok {
				return item, true
			}

		case phaseAdvance:
			if it.flags&IterIncludePrototypes == 0 {
				it.phase = phaseDone
				continue
			}
			next := it.obj.proto(it.realm)
			if next == nil {
				it.phase = phaseDone
				continue
			}
			it.obj = next
			it.load()

		case phaseDone:
			return IterItem{}, false
		}
	}
}

func (it *ObjectIterator) yield(key PropertyKey) (IterItem, bool) {
	p, ok := it.obj.GetOwnProperty(it.realm, key)
	if !ok {
		return IterItem{}, false
	}
	if it.seen != nil {
		if _, shadowed := it.seen[key]; shadowed {
			return IterItem{}, false
		}
		it.seen[key] = struct{}{}
	}
	if it.flags&IterEnumerableOnly != 0 && !p.Attrs.Enumerable() {
		return IterItem{}, false
	}
	return IterItem{Key: key, Property: p, Owner: it.obj}, true
}

// Keys drains the iterator into a slice of keys.
func (it *ObjectIterator) Keys() []PropertyKey {
	var keys []PropertyKey
	for {
		item, ok := it.Next()
		if !ok {
			return keys
		}
		keys = append(keys, item.Key)
	}
}
