package vm

// PropCacheState represents the different states of inline cache
type PropCacheState uint8

const (
	CacheStateUninitialized PropCacheState = iota
	CacheStateMonomorphic                  // Single shape cached
	CacheStatePolymorphic                  // Multiple shapes cached (up to 4)
	CacheStateMegamorphic                  // Too many shapes, always miss
)

func (s PropCacheState) String() string {
	switch s {
	case CacheStateMonomorphic:
		return "monomorphic"
	case CacheStatePolymorphic:
		return "polymorphic"
	case CacheStateMegamorphic:
		return "megamorphic"
	default:
		return "uninitialized"
	}
}

// PropCacheEntry pairs a shape with the slot its member lives in.
type PropCacheEntry struct {
	shape *Shape
	slot  int
}

// PropInlineCache remembers where one key lives for the shapes seen at a
// single access site. Shapes are immutable, so a (shape, slot) pair never
// goes stale.
type PropInlineCache struct {
	state      PropCacheState
	entries    [4]PropCacheEntry
	entryCount int
	hitCount   uint32
	missCount  uint32
}

// ICacheStats holds counters across every cache of a realm.
type ICacheStats struct {
	TotalHits       uint64
	TotalMisses     uint64
	MonomorphicHits uint64
	PolymorphicHits uint64
}

func (ic *PropInlineCache) State() PropCacheState { return ic.state }
func (ic *PropInlineCache) Hits() uint32          { return ic.hitCount }
func (ic *PropInlineCache) Misses() uint32        { return ic.missCount }

func (ic *PropInlineCache) lookup(shape *Shape) (int, bool) {
	switch ic.state {
	case CacheStateMonomorphic:
		if ic.entries[0].shape == shape {
			ic.hitCount++
			return ic.entries[0].slot, true
		}
	case CacheStatePolymorphic:
		for i := 0; i < ic.entryCount; i++ {
			if ic.entries[i].shape == shape {
				ic.hitCount++
				// Move hit entry to front
				if i > 0 {
					entry := ic.entries[i]
					copy(ic.entries[1:i+1], ic.entries[0:i])
					ic.entries[0] = entry
				}
				return ic.entries[0].slot, true
			}
		}
	}
	ic.missCount++
	return -1, false
}

func (ic *PropInlineCache) update(shape *Shape, slot int) {
	switch ic.state {
	case CacheStateUninitialized:
		ic.state = CacheStateMonomorphic
		ic.entries[0] = PropCacheEntry{shape: shape, slot: slot}
		ic.entryCount = 1
	case CacheStateMonomorphic:
		if ic.entries[0].shape == shape {
			ic.entries[0].slot = slot
			return
		}
		ic.state = CacheStatePolymorphic
		ic.entries[1] = PropCacheEntry{shape: shape, slot: slot}
		ic.entryCount = 2
	case CacheStatePolymorphic:
		for i := 0; i < ic.entryCount; i++ {
			if ic.entries[i].shape == shape {
				ic.entries[i].slot = slot
				return
			}
		}
		if ic.entryCount < len(ic.entries) {
			ic.entries[ic.entryCount] = PropCacheEntry{shape: shape, slot: slot}
			ic.entryCount++
			return
		}
		ic.state = CacheStateMegamorphic
		ic.entryCount = 0
	}
}

// Reset clears the cache but keeps hit/miss counts.
func (ic *PropInlineCache) Reset() {
	ic.state = CacheStateUninitialized
	ic.entryCount = 0
}

// GetCached is Get for named keys with a per-site cache over own data
// members. Anything else (indices, accessors, inherited members, virtual
// length) falls back to Get.
func (o *Object) GetCached(r *Realm, key PropertyKey, ic *PropInlineCache) (Value, error) {
	if slot, ok := ic.lookup(o.shape); ok {
		r.cacheStats.TotalHits++
		if ic.state == CacheStateMonomorphic {
			r.cacheStats.MonomorphicHits++
		} else {
			r.cacheStats.PolymorphicHits++
		}
		return o.slots[slot], nil
	}
	r.cacheStats.TotalMisses++
	if !key.IsIndex() && key != keyLength {
		if slot, attrs, ok := o.shape.Find(key); ok && attrs.IsData() {
			ic.update(o.shape, slot)
			return o.slots[slot], nil
		}
	}
	return o.Get(r, key, o.Value())
}

// CacheStats returns inline cache counters and logs them at debug level.
func (r *Realm) CacheStats() ICacheStats {
	stats := r.cacheStats
	total := stats.TotalHits + stats.TotalMisses
	if total == 0 {
		r.log.Debug().Msg("IC stats: no cache activity")
		return stats
	}
	r.log.Debug().
		Uint64("hits", stats.TotalHits).
		Uint64("misses", stats.TotalMisses).
		Float64("hit_rate", float64(stats.TotalHits)/float64(total)*100).
		Uint64("monomorphic", stats.MonomorphicHits).
		Uint64("polymorphic", stats.PolymorphicHits).
		Msg("IC stats")
	return stats
}
