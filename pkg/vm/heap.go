package vm

import (
	"fmt"

	"github.com/rs/zerolog"

	"objmodel/pkg/errors"
)

// Ref is a generation-checked handle to an object in a Heap. The low 32 bits
// are slot index + 1, the high 32 bits the slot generation. The zero Ref
// refers to nothing.
type Ref uint64

func makeRef(index int, gen uint32) Ref {
	return Ref(uint64(gen)<<32 | uint64(index+1))
}

func (r Ref) index() int         { return int(uint32(r)) - 1 }
func (r Ref) generation() uint32 { return uint32(r >> 32) }
func (r Ref) IsValid() bool      { return r != 0 }

func (r Ref) String() string {
	return fmt.Sprintf("%d.%d", r.index(), r.generation())
}

// WriteBarrier is notified whenever a reference to an object is stored into
// another object (prototype links, property values, array elements).
type WriteBarrier interface {
	OnReferenceStore(holder Ref, referent Value)
}

// WriteBarrierFunc adapts a function to WriteBarrier.
type WriteBarrierFunc func(holder Ref, referent Value)

func (f WriteBarrierFunc) OnReferenceStore(holder Ref, referent Value) { f(holder, referent) }

type heapSlot struct {
	obj *Object
	gen uint32
}

// Heap is the arena owning every object of a realm. Objects refer to each
// other only through Refs; a freed slot bumps its generation so stale Refs
// resolve to nil.
type Heap struct {
	slots      []heapSlot
	free       []int
	live       int
	maxObjects int
	barrier    WriteBarrier
	log        zerolog.Logger
}

// NewHeap creates an arena. maxObjects <= 0 means unlimited.
func NewHeap(initialCapacity, maxObjects int, log zerolog.Logger) *Heap {
	return &Heap{
		slots:      make([]heapSlot, 0, initialCapacity),
		maxObjects: maxObjects,
		log:        log,
	}
}

// Allocate places obj in the arena and assigns its Ref. Exceeding the object
// limit is fatal.
func (h *Heap) Allocate(obj *Object) Ref {
	if h.maxObjects > 0 && h.live >= h.maxObjects {
		panic(&errors.ResourceError{
			Resource: "heap",
			Limit:    h.maxObjects,
			Msg:      fmt.Sprintf("object limit of %d reached", h.maxObjects),
		})
	}
	if h.maxObjects > 0 && h.live == h.maxObjects*9/10 {
		h.log.Warn().Int("live", h.live).Int("max", h.maxObjects).Msg("heap nearing object limit")
	}

	var idx int
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		idx = len(h.slots)
		h.slots = append(h.slots, heapSlot{})
	}
	slot := &h.slots[idx]
	slot.obj = obj
	ref := makeRef(idx, slot.gen)
	obj.ref = ref
	h.live++
	return ref
}

// Get resolves ref, returning nil for freed or foreign handles.
func (h *Heap) Get(ref Ref) *Object {
	idx := ref.index()
	if ref == 0 || idx < 0 || idx >= len(h.slots) {
		return nil
	}
	slot := &h.slots[idx]
	if slot.gen != ref.generation() {
		return nil
	}
	return slot.obj
}

// Free releases the slot behind ref. Used by the collector.
func (h *Heap) Free(ref Ref) bool {
	obj := h.Get(ref)
	if obj == nil {
		return false
	}
	slot := &h.slots[ref.index()]
	slot.obj = nil
	slot.gen++
	h.free = append(h.free, ref.index())
	h.live--
	h.log.Debug().Stringer("ref", ref).Msg("heap slot freed")
	return true
}

// Size returns the number of live objects.
func (h *Heap) Size() int {
	return h.live
}

func (h *Heap) SetBarrier(b WriteBarrier) {
	h.barrier = b
}

func (h *Heap) recordStore(holder Ref, v Value) {
	if h.barrier != nil && v.IsObject() {
		h.barrier.OnReferenceStore(holder, v)
	}
}

// Reachable walks MarkChildren from roots and returns every reachable ref.
// Order is breadth first from the roots.
func (h *Heap) Reachable(roots ...Ref) []Ref {
	seen := make(map[Ref]bool)
	var out, queue []Ref
	push := func(ref Ref) {
		if ref == 0 || seen[ref] || h.Get(ref) == nil {
			return
		}
		seen[ref] = true
		queue = append(queue, ref)
	}
	for _, root := range roots {
		push(root)
	}
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		out = append(out, ref)
		h.Get(ref).MarkChildren(func(v Value) {
			push(v.AsRef())
		})
	}
	return out
}
