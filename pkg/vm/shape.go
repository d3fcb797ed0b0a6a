package vm

import (
	"sync"
	"sync/atomic"
)

type shapeOp uint8

const (
	opAddMember shapeOp = iota
	opRemoveMember
	opChangeAttributes
	opChangePrototype
	opSeal
	opFreeze
	opPreventExtensions
)

type transitionKey struct {
	op    shapeOp
	key   PropertyKey
	attrs PropertyAttributes
	proto Ref
}

type shapeMember struct {
	slot  int
	attrs PropertyAttributes
}

// Shape describes the named (string and symbol keyed) members of an object,
// its prototype and whether it is extensible. Shapes are immutable once
// returned: every change is a transition to another shape, and identical
// transitions from the same shape converge on the same *Shape.
type Shape struct {
	id         uint64
	parent     *Shape
	proto      Ref
	members    map[PropertyKey]shapeMember
	order      []PropertyKey
	slotCount  int
	extensible bool
	// dictionary shapes belong to one object: they are never cached as
	// transitions and their holes are reused.
	dictionary bool

	mu          sync.RWMutex
	transitions map[transitionKey]*Shape
	table       *shapeTable
}

// shapeTable is the per-realm bookkeeping shared by every shape of the tree.
type shapeTable struct {
	nextID       atomic.Uint64
	created      atomic.Uint64
	dictionaries atomic.Uint64
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// ShapeStats summarizes the transition tree of a realm.
type ShapeStats struct {
	Shapes           uint64
	TransitionHits   uint64
	TransitionMisses uint64
	// Dictionary counts objects that left the transition tree.
	Dictionary uint64
}

func newRootShape(table *shapeTable) *Shape {
	s := &Shape{
		members:    map[PropertyKey]shapeMember{},
		extensible: true,
		table:      table,
	}
	s.id = table.nextID.Add(1)
	table.created.Add(1)
	return s
}

func (s *Shape) ID() uint64         { return s.id }
func (s *Shape) Parent() *Shape     { return s.parent }
func (s *Shape) Prototype() Ref     { return s.proto }
func (s *Shape) SlotCount() int     { return s.slotCount }
func (s *Shape) IsExtensible() bool { return s.extensible }
func (s *Shape) MemberCount() int   { return len(s.order) }
func (s *Shape) IsDictionary() bool { return s.dictionary }

func (s *Shape) Has(key PropertyKey) bool {
	_, ok := s.members[key]
	return ok
}

// Find returns the slot and attributes of key, or ok == false.
func (s *Shape) Find(key PropertyKey) (slot int, attrs PropertyAttributes, ok bool) {
	m, ok := s.members[key]
	if !ok {
		return -1, AttrEmpty, false
	}
	return m.slot, m.attrs, true
}

// Keys returns member keys in insertion order. The slice is shared; do not modify.
func (s *Shape) Keys() []PropertyKey {
	return s.order
}

// IsSealed holds when the shape is not extensible and no member is configurable.
func (s *Shape) IsSealed() bool {
	if s.extensible {
		return false
	}
	for _, m := range s.members {
		if m.attrs.Configurable() {
			return false
		}
	}
	return true
}

// IsFrozen additionally requires every data member to be read-only.
func (s *Shape) IsFrozen() bool {
	if !s.IsSealed() {
		return false
	}
	for _, m := range s.members {
		if m.attrs.Writable() {
			return false
		}
	}
	return true
}

func (s *Shape) lookupTransition(k transitionKey) *Shape {
	s.mu.RLock()
	next := s.transitions[k]
	s.mu.RUnlock()
	if next != nil {
		s.table.hits.Add(1)
	}
	return next
}

// transition finds or builds the successor for k. build receives a fresh
// copy of the receiver (minus id and transition table) to mutate. Dictionary
// shapes copy every time and cache nothing.
func (s *Shape) transition(k transitionKey, build func(next *Shape)) *Shape {
	if s.dictionary {
		next := s.copyShape()
		next.id = s.table.nextID.Add(1)
		build(next)
		return next
	}
	if next := s.lookupTransition(k); next != nil {
		return next
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if next := s.transitions[k]; next != nil {
		s.table.hits.Add(1)
		return next
	}

	next := s.copyShape()
	next.parent = s
	build(next)

	next.id = s.table.nextID.Add(1)
	s.table.created.Add(1)
	s.table.misses.Add(1)
	if s.transitions == nil {
		s.transitions = make(map[transitionKey]*Shape)
	}
	s.transitions[k] = next
	return next
}

// copyShape returns an unregistered copy without id, parent or transitions.
func (s *Shape) copyShape() *Shape {
	next := &Shape{
		proto:      s.proto,
		members:    make(map[PropertyKey]shapeMember, len(s.members)+1),
		order:      make([]PropertyKey, len(s.order), len(s.order)+1),
		slotCount:  s.slotCount,
		extensible: s.extensible,
		dictionary: s.dictionary,
		table:      s.table,
	}
	for key, m := range s.members {
		next.members[key] = m
	}
	copy(next.order, s.order)
	return next
}

// ToDictionary detaches the receiver's layout from the transition tree.
// Slots keep their numbers. Later changes copy the shape instead of growing
// the tree, and additions fill holes left by removals.
func (s *Shape) ToDictionary() *Shape {
	if s.dictionary {
		return s
	}
	next := s.copyShape()
	next.dictionary = true
	next.id = s.table.nextID.Add(1)
	s.table.dictionaries.Add(1)
	return next
}

// AddMember appends key to the member order. Tree shapes give it a fresh
// slot; dictionary shapes reuse the lowest hole. Re-adding a present key,
// or adding to a non-extensible shape, returns the receiver.
func (s *Shape) AddMember(key PropertyKey, attrs PropertyAttributes) *Shape {
	if s.Has(key) || !s.extensible || key.IsIndex() {
		return s
	}
	return s.transition(transitionKey{op: opAddMember, key: key, attrs: attrs}, func(next *Shape) {
		slot := next.slotCount
		if next.dictionary {
			slot = next.firstHole()
		}
		next.members[key] = shapeMember{slot: slot, attrs: attrs}
		next.order = append(next.order, key)
		if slot == next.slotCount {
			next.slotCount++
		}
	})
}

// firstHole returns the lowest slot no member uses, or slotCount.
func (s *Shape) firstHole() int {
	if len(s.members) == s.slotCount {
		return s.slotCount
	}
	used := make([]bool, s.slotCount)
	for _, m := range s.members {
		used[m.slot] = true
	}
	for i, u := range used {
		if !u {
			return i
		}
	}
	return s.slotCount
}

// RemoveMember drops key. Its slot becomes a hole; remaining slots keep
// their numbers.
func (s *Shape) RemoveMember(key PropertyKey) *Shape {
	if !s.Has(key) {
		return s
	}
	return s.transition(transitionKey{op: opRemoveMember, key: key}, func(next *Shape) {
		delete(next.members, key)
		for i, k := range next.order {
			if k == key {
				next.order = append(next.order[:i], next.order[i+1:]...)
				break
			}
		}
	})
}

func (s *Shape) ChangeAttributes(key PropertyKey, attrs PropertyAttributes) *Shape {
	m, ok := s.members[key]
	if !ok || m.attrs == attrs {
		return s
	}
	return s.transition(transitionKey{op: opChangeAttributes, key: key, attrs: attrs}, func(next *Shape) {
		next.members[key] = shapeMember{slot: m.slot, attrs: attrs}
	})
}

func (s *Shape) ChangePrototype(proto Ref) *Shape {
	if s.proto == proto {
		return s
	}
	return s.transition(transitionKey{op: opChangePrototype, proto: proto}, func(next *Shape) {
		next.proto = proto
	})
}

func (s *Shape) PreventExtensions() *Shape {
	if !s.extensible {
		return s
	}
	return s.transition(transitionKey{op: opPreventExtensions}, func(next *Shape) {
		next.extensible = false
	})
}

// Seal makes the shape non-extensible and every member non-configurable.
func (s *Shape) Seal() *Shape {
	if s.IsSealed() {
		return s
	}
	return s.transition(transitionKey{op: opSeal}, func(next *Shape) {
		next.extensible = false
		for key, m := range next.members {
			m.attrs = m.attrs.without(AttrConfigurable)
			next.members[key] = m
		}
	})
}

// Freeze is Seal plus read-only data members.
func (s *Shape) Freeze() *Shape {
	if s.IsFrozen() {
		return s
	}
	return s.transition(transitionKey{op: opFreeze}, func(next *Shape) {
		next.extensible = false
		for key, m := range next.members {
			m.attrs = m.attrs.without(AttrConfigurable)
			if m.attrs.IsData() {
				m.attrs = m.attrs.without(AttrWritable)
			}
			next.members[key] = m
		}
	})
}

func (t *shapeTable) stats() ShapeStats {
	return ShapeStats{
		Shapes:           t.created.Load(),
		TransitionHits:   t.hits.Load(),
		TransitionMisses: t.misses.Load(),
		Dictionary:       t.dictionaries.Load(),
	}
}
