package decode

const numCacheEntries = 64

type cacheEntry struct {
	valid bool
	tag   uint64
	pa    uint64
	ins   Instruction
}

// Cache is a 64-entry direct-mapped decode cache, indexed by a hash of the
// lookup key (VA for the PC cache, PA for the PA cache).
type Cache struct {
	entries [numCacheEntries]cacheEntry
}

func index(key uint64) int {
	// multiplicative hash, matching the teacher's preference for simple
	// bit-masking over anything cryptographic
	return int((key * 2654435761) % numCacheEntries)
}

// Lookup returns the cached instruction for key, if present.
func (c *Cache) Lookup(key uint64) (Instruction, bool) {
	e := &c.entries[index(key)]
	if e.valid && e.tag == key {
		return e.ins, true
	}
	return Instruction{}, false
}

// Insert stores ins under key, evicting whatever direct-mapped slot
// previously held that index.
func (c *Cache) Insert(key uint64, ins Instruction) {
	e := &c.entries[index(key)]
	e.valid = true
	e.tag = key
	e.pa = ins.PA
	e.ins = ins
}

// CachedPA returns the physical address recorded for key, used by the
// PC-cache-hit guard against page remap (the cached entry is only valid if
// its recorded PA still matches a freshly translated PA).
func (c *Cache) CachedPA(key uint64) (uint64, bool) {
	e := &c.entries[index(key)]
	if e.valid && e.tag == key {
		return e.pa, true
	}
	return 0, false
}

// Invalidate clears a single entry by key, used for targeted invalidation
// when a code-modification range happens to fall on that slot.
func (c *Cache) Invalidate(key uint64) {
	e := &c.entries[index(key)]
	if e.tag == key {
		e.valid = false
	}
}

// InvalidateAll clears every entry, used on IMB.
func (c *Cache) InvalidateAll() {
	for i := range c.entries {
		c.entries[i].valid = false
	}
}

// Dual bundles the PC-indexed and PA-indexed caches the Fetch/Decode Unit
// maintains together, since IMB invalidates both as a pair.
type Dual struct {
	PC Cache
	PA Cache
}

// InvalidateAll clears both caches, the IMB and code-modification path.
func (d *Dual) InvalidateAll() {
	d.PC.InvalidateAll()
	d.PA.InvalidateAll()
}
