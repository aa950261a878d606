package ice

import "sync"

// pooled is one cached instance. suppressRelease marks values the container
// does not own and so must not release on Dispose.
type pooled struct {
	key             Key
	value           interface{}
	suppressRelease bool
}

// objectPool caches constructed instances per concrete type + name.
type objectPool struct {
	mu      sync.RWMutex
	entries map[string][]*pooled
	order   []*pooled
}

func newObjectPool() *objectPool {
	return &objectPool{entries: make(map[string][]*pooled)}
}

func (p *objectPool) get(key Key) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e := p.find(key); e != nil {
		return e.value, true
	}
	return nil, false
}

// put stores value under key, replacing an earlier value.
func (p *objectPool) put(key Key, value interface{}, suppressRelease bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e := p.find(key); e != nil {
		e.value, e.suppressRelease = value, suppressRelease
		return
	}
	p.insert(&pooled{key: key, value: value, suppressRelease: suppressRelease})
}

// putIfAbsent stores value unless key is already pooled and returns the
// value that ends up cached.
func (p *objectPool) putIfAbsent(key Key, value interface{}) interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e := p.find(key); e != nil {
		return e.value
	}
	p.insert(&pooled{key: key, value: value})
	return value
}

// snapshot returns the entries in insertion order.
func (p *objectPool) snapshot() []pooled {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]pooled, len(p.order))
	for i, e := range p.order {
		out[i] = *e
	}
	return out
}

func (p *objectPool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string][]*pooled)
	p.order = nil
}

func (p *objectPool) len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

// callers hold mu
func (p *objectPool) find(key Key) *pooled {
	for _, e := range p.entries[key.bucket()] {
		if e.key.same(key) {
			return e
		}
	}
	return nil
}

func (p *objectPool) insert(e *pooled) {
	b := e.key.bucket()
	p.entries[b] = append(p.entries[b], e)
	p.order = append(p.order, e)
}
