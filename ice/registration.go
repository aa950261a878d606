package ice

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// Lifetime decides whether a binding's instance is cached.
type Lifetime int32

const (
	// PerContext caches one instance per container (the default).
	PerContext Lifetime = iota
	// PerDependency builds a new instance on every resolution.
	PerDependency
)

func (l Lifetime) String() string {
	switch l {
	case PerContext:
		return "PerContext"
	case PerDependency:
		return "PerDependency"
	}
	return fmt.Sprintf("Lifetime(%d)", int32(l))
}

// ParseLifetime accepts the names used in configuration files.
// An empty string is PerContext.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "percontext", "singleton":
		return PerContext, nil
	case "perdependency", "transient":
		return PerDependency, nil
	}
	return 0, fmt.Errorf("unknown lifetime %q", s)
}

// LifetimeSelector is returned by RegisterType and RegisterFactory.
type LifetimeSelector interface {
	PerContext()
	PerDependency()
}

type lifetimeBox struct{ v int32 }

func (b *lifetimeBox) PerContext()    { atomic.StoreInt32(&b.v, int32(PerContext)) }
func (b *lifetimeBox) PerDependency() { atomic.StoreInt32(&b.v, int32(PerDependency)) }
func (b *lifetimeBox) get() Lifetime  { return Lifetime(atomic.LoadInt32(&b.v)) }

// Registration is a binding held by a container's table.
type Registration interface {
	fmt.Stringer
	resolve(c *Container, key Key, path *Path) (interface{}, error)
}

// typeBinding builds an implementation type, possibly an open template.
// A template binding serves many specializations, each with its own lock, so
// Repo[User] may depend on Repo[Order] through the same binding.
type typeBinding struct {
	impl     Type
	implicit bool
	lifetime lifetimeBox

	mu    sync.Mutex
	locks map[lockKey]*constructionLock
}

type lockKey struct {
	rt   reflect.Type
	name string
}

func newTypeBinding(impl Type) *typeBinding {
	return &typeBinding{impl: impl, locks: make(map[lockKey]*constructionLock)}
}

// lockFor returns the construction lock of one pooled specialization.
func (b *typeBinding) lockFor(poolKey Key) *constructionLock {
	k := lockKey{rt: poolKey.Type.rt, name: strings.ToLower(poolKey.Name)}
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[k]
	if !ok {
		l = newConstructionLock()
		b.locks[k] = l
	}
	return l
}

func (b *typeBinding) String() string {
	if b.implicit {
		return fmt.Sprintf("implicit type %v (%v)", b.impl, b.lifetime.get())
	}
	return fmt.Sprintf("type %v (%v)", b.impl, b.lifetime.get())
}

func (b *typeBinding) resolve(c *Container, key Key, path *Path) (interface{}, error) {
	concrete, err := c.specialize(b.impl, key, path)
	if err != nil {
		return nil, err
	}
	if concrete.isInterface() {
		return nil, newError(UnresolvableAbstractType, key, path,
			"%v is an interface and nothing in the container chain binds it", concrete)
	}
	build := func(p *Path) (interface{}, error) { return c.build(concrete, key, p) }
	if b.lifetime.get() == PerDependency {
		return build(path)
	}
	poolKey := Key{Type: concrete, Name: key.Name}
	return c.cached(poolKey, key, path, b.lockFor(poolKey), build)
}

// factoryBinding invokes a user supplied func.
type factoryBinding struct {
	fn       reflect.Value
	abstract Type
	lifetime lifetimeBox
	lock     *constructionLock
}

func (b *factoryBinding) String() string {
	return fmt.Sprintf("factory %v (%v)", funcName(b.fn), b.lifetime.get())
}

func (b *factoryBinding) resolve(c *Container, key Key, path *Path) (interface{}, error) {
	build := func(p *Path) (interface{}, error) {
		p, err := c.enter(key, b.abstract, p)
		if err != nil {
			return nil, err
		}
		return c.invoke(b.fn, key, p)
	}
	if b.lifetime.get() == PerDependency {
		return build(path)
	}
	return c.cached(Key{Type: b.abstract, Name: key.Name}, key, path, b.lock, build)
}

// instanceBinding holds a value supplied from outside.
type instanceBinding struct {
	value interface{}
}

func (b *instanceBinding) String() string {
	return fmt.Sprintf("instance %T", b.value)
}

func (b *instanceBinding) resolve(c *Container, key Key, path *Path) (interface{}, error) {
	return b.value, nil
}

// namedCollectionBinding answers map[K]T with every named registration of T
// in its own container. K is string or the named string type the names were
// registered with.
type namedCollectionBinding struct {
	elem    Type
	mapType reflect.Type
}

func (b *namedCollectionBinding) String() string {
	return fmt.Sprintf("named collection %v", b.mapType)
}

func (b *namedCollectionBinding) resolve(c *Container, key Key, path *Path) (interface{}, error) {
	keys := c.table.namedKeys(b.elem)
	m := reflect.MakeMapWithSize(b.mapType, len(keys))
	for _, k := range keys {
		v, err := c.resolveIn(k, path)
		if err != nil {
			return nil, err
		}
		m.SetMapIndex(reflect.ValueOf(k.Name).Convert(b.mapType.Key()), valueAs(v, b.mapType.Elem()))
	}
	return m.Interface(), nil
}

// valueAs turns an interface{} back into a reflect.Value of type t.
func valueAs(v interface{}, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		if rv.Type() == t {
			return rv
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out
	}
	return rv.Convert(t)
}
