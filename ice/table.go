package ice

import (
	"sort"
	"sync"
)

type tableEntry struct {
	key Key
	reg Registration
	seq uint64
}

// copy detaches an entry from the table so put may overwrite reg later.
func (e *tableEntry) copy() *tableEntry {
	cp := *e
	return &cp
}

// registrationTable maps Keys to Registrations for one container.
// Reads and writes may race with each other safely.
//
// The resolved list used to refuse late re-registration shares the mutex,
// but Register checks it and writes the entry in one step while a concurrent
// Resolve marks keys only after it finished building. A registration racing
// with the first resolution of the same key may therefore slip through; treat
// AlreadyResolved as a guard against programming mistakes, not a barrier.
type registrationTable struct {
	mu       sync.RWMutex
	buckets  map[string][]*tableEntry
	resolved map[string][]Key
	seq      uint64
}

func newRegistrationTable() *registrationTable {
	return &registrationTable{
		buckets:  make(map[string][]*tableEntry),
		resolved: make(map[string][]Key),
	}
}

// put registers reg under key, overwriting an earlier registration of the
// same key unless that key has already been resolved.
func (t *registrationTable) put(key Key, reg Registration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, k := range t.resolved[key.bucket()] {
		if k.same(key) {
			return newError(AlreadyResolved, key, nil, "%v was already resolved and cannot be registered again", key)
		}
	}
	if e := t.exact(key); e != nil {
		e.reg = reg
		return nil
	}
	t.insert(key, reg)
	return nil
}

// putIfAbsent keeps an existing registration and returns whichever is current.
func (t *registrationTable) putIfAbsent(key Key, reg Registration) *tableEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.exact(key); e != nil {
		return e.copy()
	}
	return t.insert(key, reg).copy()
}

// get prefers the exact key and falls back to an equivalent one, which lets an
// open template registration answer for a closed specialization.
func (t *registrationTable) get(key Key) *tableEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e := t.exact(key); e != nil {
		return e.copy()
	}
	for _, e := range t.buckets[key.bucket()] {
		if e.key.Equal(key) {
			return e.copy()
		}
	}
	return nil
}

func (t *registrationTable) markResolved(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := key.bucket()
	for _, k := range t.resolved[b] {
		if k.same(key) {
			return
		}
	}
	t.resolved[b] = append(t.resolved[b], key)
}

// matching returns every entry whose type equals typ, in registration order.
func (t *registrationTable) matching(typ Type, namedOnly bool) []*tableEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*tableEntry
	for _, bucket := range t.buckets {
		for _, e := range bucket {
			if namedOnly && e.key.Name == "" {
				continue
			}
			if e.key.Type.Equal(typ) {
				out = append(out, e.copy())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// namedKeys lists the named keys registered for typ.
func (t *registrationTable) namedKeys(typ Type) []Key {
	entries := t.matching(typ, true)
	keys := make([]Key, 0, len(entries))
	for _, e := range entries {
		if !e.key.Type.IsOpen() {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (t *registrationTable) keys() []Key {
	t.mu.RLock()
	var entries []*tableEntry
	for _, bucket := range t.buckets {
		entries = append(entries, bucket...)
	}
	t.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	keys := make([]Key, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

func (t *registrationTable) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buckets = make(map[string][]*tableEntry)
	t.resolved = make(map[string][]Key)
}

// callers hold mu
func (t *registrationTable) exact(key Key) *tableEntry {
	for _, e := range t.buckets[key.bucket()] {
		if e.key.same(key) {
			return e
		}
	}
	return nil
}

func (t *registrationTable) insert(key Key, reg Registration) *tableEntry {
	t.seq++
	e := &tableEntry{key: key, reg: reg, seq: t.seq}
	b := key.bucket()
	t.buckets[b] = append(t.buckets[b], e)
	return e
}
