package ice

import (
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ice/common"
	"github.com/twitter/ice/common/stats"
)

// Resolver is the read side of a Container. Factories may ask for it (or for
// *Container) as a parameter to receive the container that owns them.
type Resolver interface {
	Resolve(t Type, name string) (interface{}, error)
	ResolveAll(t Type) ([]interface{}, error)
	IsRegistered(t Type, name string) bool
}

// Disposable values are released by the container that pooled them.
// io.Closer is honored as well.
type Disposable interface {
	Dispose() error
}

// Container binds Keys to Registrations and builds object graphs from them.
// Containers form a chain from child to parent; lookups climb the chain.
type Container struct {
	id     string
	parent *Container

	table *registrationTable
	pool  *objectPool
	ctors *constructors

	lockTimeout time.Duration
	stat        stats.StatsReceiver
	logger      *log.Logger
	log         *log.Entry

	obsMu        sync.RWMutex
	observers    []observerEntry
	nextObserver ObserverID

	disposed int32
}

// Option configures a Container.
type Option func(*Container)

// WithLockTimeout bounds the wait for another goroutine's construction.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Container) { c.lockTimeout = d }
}

// WithStats records resolution metrics under the "ice" scope of stat.
func WithStats(stat stats.StatsReceiver) Option {
	return func(c *Container) {
		if stat != nil {
			c.stat = stat.Scope("ice")
		}
	}
}

// WithLogger replaces the logrus standard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty root container.
func New(opts ...Option) *Container {
	c := &Container{
		lockTimeout: DefaultLockTimeout,
		stat:        stats.NilStatsReceiver(),
		logger:      log.StandardLogger(),
	}
	return c.init(opts)
}

// NewChild creates a container whose lookups fall back to c.
// The child inherits c's options unless opts override them.
func (c *Container) NewChild(opts ...Option) *Container {
	child := &Container{
		parent:      c,
		lockTimeout: c.lockTimeout,
		stat:        c.stat,
		logger:      c.logger,
	}
	return child.init(opts)
}

func (c *Container) init(opts []Option) *Container {
	for _, opt := range opts {
		opt(c)
	}
	c.id = common.GenUUID()
	c.table = newRegistrationTable()
	c.pool = newObjectPool()
	c.ctors = newConstructors()
	parentID := ""
	if c.parent != nil {
		parentID = c.parent.id
	}
	c.log = c.logger.WithFields(logFields(c.id, parentID))

	// a container resolves itself, and never releases itself
	self := &instanceBinding{value: c}
	c.table.put(Key{Type: TypeOf(c)}, self)
	c.table.put(Key{Type: TypeOf((*Resolver)(nil))}, self)
	c.pool.put(Key{Type: TypeOf(c)}, c, true)
	c.log.Debug("container created")
	return c
}

// ID identifies the container in log lines.
func (c *Container) ID() string { return c.id }

// Parent returns the parent container, nil for a root.
func (c *Container) Parent() *Container { return c.parent }

func (c *Container) isDisposed() bool { return atomic.LoadInt32(&c.disposed) != 0 }

func (c *Container) alive(key Key) error {
	if c.isDisposed() {
		return newError(ContainerDisposed, key, nil, "container %s was disposed", c.id)
	}
	return nil
}

// RegisterOption tunes a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	name    string
	enum    reflect.Type
	release bool
	err     error
}

var stringType = reflect.TypeOf("")

// Named registers under a name. name is a string or a value of a named string
// type; with the latter, the named collection of the abstract type is keyed
// by that type instead of string.
func Named(name interface{}) RegisterOption {
	return func(o *registerOptions) {
		v := reflect.ValueOf(name)
		if !v.IsValid() || v.Kind() != reflect.String {
			o.err = fmt.Errorf("name must be a string kind; was %T", name)
			return
		}
		o.name = v.String()
		if v.Type() != stringType {
			o.enum = v.Type()
		}
	}
}

// ReleaseOnDispose hands ownership of a registered instance to the container.
func ReleaseOnDispose() RegisterOption {
	return func(o *registerOptions) { o.release = true }
}

func applyRegisterOptions(opts []RegisterOption) registerOptions {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RegisterType binds abstract to the implementation impl.
// impl may be an open Template; it is then specialized with the requested
// key's type arguments. The default lifetime is PerContext.
func (c *Container) RegisterType(impl, abstract Type, opts ...RegisterOption) (LifetimeSelector, error) {
	o := applyRegisterOptions(opts)
	key := Key{Type: abstract, Name: o.name}
	if err := c.alive(key); err != nil {
		return nil, err
	}
	switch {
	case o.err != nil:
		return nil, wrapError(InvalidRegistration, key, nil, o.err)
	case impl.IsZero() || abstract.IsZero():
		return nil, newError(InvalidRegistration, key, nil, "implementation and abstract type are required")
	case impl.rt != nil && abstract.rt != nil && !impl.rt.AssignableTo(abstract.rt):
		return nil, newError(InvalidRegistration, key, nil, "%v is not assignable to %v", impl, abstract)
	}
	b := newTypeBinding(impl)
	if err := c.register(key, b, o); err != nil {
		return nil, err
	}
	return &b.lifetime, nil
}

// RegisterInstance binds abstract to value. The container releases value on
// Dispose only with ReleaseOnDispose.
func (c *Container) RegisterInstance(value interface{}, abstract Type, opts ...RegisterOption) error {
	o := applyRegisterOptions(opts)
	key := Key{Type: abstract, Name: o.name}
	if err := c.alive(key); err != nil {
		return err
	}
	switch {
	case o.err != nil:
		return wrapError(InvalidRegistration, key, nil, o.err)
	case value == nil || abstract.IsZero():
		return newError(InvalidRegistration, key, nil, "value and abstract type are required")
	case abstract.IsOpen():
		return newError(InvalidRegistration, key, nil, "an instance cannot stand for template %v", abstract)
	case !reflect.TypeOf(value).AssignableTo(abstract.rt):
		return newError(InvalidRegistration, key, nil, "%T is not assignable to %v", value, abstract)
	}
	if err := c.register(key, &instanceBinding{value: value}, o); err != nil {
		return err
	}
	c.pool.put(Key{Type: TypeFor(reflect.TypeOf(value)), Name: o.name}, value, !o.release)
	return nil
}

// RegisterFactory binds abstract to the func fn. fn returns T or (T, error);
// its parameters are resolved from the container, an ice.Name parameter
// receives the requested name. A zero abstract Type binds fn's result type.
func (c *Container) RegisterFactory(fn interface{}, abstract Type, opts ...RegisterOption) (LifetimeSelector, error) {
	o := applyRegisterOptions(opts)
	key := Key{Type: abstract, Name: o.name}
	if err := c.alive(key); err != nil {
		return nil, err
	}
	v, err := checkProvider(fn)
	if err != nil {
		return nil, wrapError(InvalidRegistration, key, nil, err)
	}
	out := v.Type().Out(0)
	if abstract.IsZero() {
		abstract = TypeFor(out)
		key.Type = abstract
	}
	switch {
	case o.err != nil:
		return nil, wrapError(InvalidRegistration, key, nil, o.err)
	case abstract.IsOpen():
		return nil, newError(InvalidRegistration, key, nil, "a factory cannot stand for template %v", abstract)
	case !out.AssignableTo(abstract.rt):
		return nil, newError(InvalidRegistration, key, nil, "%s returns %v, not assignable to %v", funcName(v), out, abstract)
	}
	b := &factoryBinding{fn: v, abstract: abstract, lock: newConstructionLock()}
	if err := c.register(key, b, o); err != nil {
		return nil, err
	}
	return &b.lifetime, nil
}

func (c *Container) register(key Key, reg Registration, o registerOptions) error {
	if err := c.table.put(key, reg); err != nil {
		return err
	}
	c.log.WithField("key", key.String()).Debugf("Registered: %v", reg)
	if key.Name != "" && !key.Type.IsOpen() {
		kt := stringType
		if o.enum != nil {
			kt = o.enum
		}
		mt := reflect.MapOf(kt, key.Type.rt)
		c.table.putIfAbsent(Key{Type: TypeFor(mt)}, &namedCollectionBinding{elem: key.Type, mapType: mt})
	}
	return nil
}

// DeclareConstructor tells the container how to build the result type of each
// fn. When a type has several constructors the one with the most parameters
// is used; a tie fails resolution with AmbiguousConstructor.
// Declaring a constructor also makes its result type available as a
// specialization of its template.
func (c *Container) DeclareConstructor(fns ...interface{}) error {
	if err := c.alive(Key{}); err != nil {
		return err
	}
	for _, fn := range fns {
		v, err := checkProvider(fn)
		if err != nil {
			return wrapError(InvalidRegistration, Key{}, nil, err)
		}
		c.ctors.add(v)
	}
	return nil
}

// DeclareType makes the types of samples available as template
// specializations: DeclareType(&MemStore[User]{}) lets a binding to
// Template(&MemStore[int]{}) build *MemStore[User] for Store[User].
func (c *Container) DeclareType(samples ...interface{}) {
	for _, s := range samples {
		c.ctors.addType(reflect.TypeOf(s))
	}
}

// Resolve returns the value bound to (t, name), building it if needed.
func (c *Container) Resolve(t Type, name string) (interface{}, error) {
	c.stat.Counter(stats.IceResolveCounter).Inc(1)
	v, err := c.resolveIn(Key{Type: t, Name: name}, nil)
	if err != nil {
		c.stat.Counter(stats.IceResolveFailureCounter).Inc(1)
		c.log.WithField("key", Key{Type: t, Name: name}.String()).Debugf("Resolve failed: %v", err)
		return nil, err
	}
	return v, nil
}

// Get resolves T from r.
func Get[T any](r Resolver, name string) (T, error) {
	var zero T
	v, err := r.Resolve(Of[T](), name)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("ice: resolved %T, expected %T", v, zero)
	}
	return t, nil
}

// Extract resolves the type dest points to and stores the result in *dest.
func (c *Container) Extract(dest interface{}) error {
	destVal := reflect.ValueOf(dest)
	if !destVal.IsValid() || destVal.Kind() != reflect.Ptr || destVal.IsNil() {
		return fmt.Errorf("dest must be a non nil pointer; was %T", dest)
	}
	target := destVal.Type().Elem()
	v, err := c.Resolve(TypeFor(target), "")
	if err != nil {
		return err
	}
	destVal.Elem().Set(valueAs(v, target))
	return nil
}

// resolveIn resolves key on behalf of a construction already on path.
func (c *Container) resolveIn(key Key, path *Path) (interface{}, error) {
	if err := c.alive(key); err != nil {
		return nil, err
	}
	switch {
	case key.Type.IsZero():
		return nil, newError(InvalidResolutionTarget, key, path, "no type given")
	case key.Type.IsOpen():
		return nil, newError(InvalidResolutionTarget, key, path, "cannot resolve open template %v", key.Type)
	case key.Type.isPlainValue():
		return nil, newError(InvalidResolutionTarget, key, path, "%v is a plain value type; ice only builds composite objects", key.Type)
	}

	owner, entry, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		if entry, err = c.implicit(key, path); err != nil {
			return nil, err
		}
		owner = c
	}
	if owner != c {
		// an ancestor builds with its own construction context
		path = nil
	}
	v, err := entry.reg.resolve(owner, key, path)
	if err != nil {
		return nil, err
	}
	owner.table.markResolved(entry.key)
	return v, nil
}

// lookup climbs the chain. A disposed ancestor ends the search with
// ContainerDisposed rather than letting the requester bind the key itself.
func (c *Container) lookup(key Key) (*Container, *tableEntry, error) {
	for n := c; n != nil; n = n.parent {
		if err := n.alive(key); err != nil {
			return nil, nil, err
		}
		if e := n.table.get(key); e != nil {
			return n, e, nil
		}
	}
	return nil, nil, nil
}

// implicit binds a concrete type to itself in c, the container asked for it.
func (c *Container) implicit(key Key, path *Path) (*tableEntry, error) {
	if key.Type.isInterface() {
		return nil, newError(UnresolvableAbstractType, key, path, "nothing in the container chain binds %v", key)
	}
	if mt := key.Type.rt; mt.Kind() == reflect.Map && mt.Key().Kind() == reflect.String {
		// Not registered: the first named registration of the element type
		// installs the real collection binding.
		b := &namedCollectionBinding{elem: TypeFor(mt.Elem()), mapType: mt}
		return &tableEntry{key: key, reg: b}, nil
	}
	b := newTypeBinding(key.Type)
	b.implicit = true
	e := c.table.putIfAbsent(key, b)
	c.log.WithField("key", key.String()).Debug("Registered implicitly")
	return e, nil
}

// cached returns the pooled instance for poolKey, building it at most once.
func (c *Container) cached(poolKey, key Key, path *Path, lock *constructionLock,
	build func(*Path) (interface{}, error)) (interface{}, error) {
	if v, ok := c.pool.get(poolKey); ok {
		c.stat.Counter(stats.IcePoolHitCounter).Inc(1)
		return v, nil
	}
	if path.Contains(key) {
		return nil, c.circular(key, path.Push(key, poolKey.Type))
	}
	if !ConstructionLocking() {
		v, err := build(path)
		if err != nil {
			return nil, err
		}
		return c.pool.putIfAbsent(poolKey, v), nil
	}

	if !lock.acquire(c.lockTimeout) {
		c.stat.Counter(stats.IceLockTimeoutCounter).Inc(1)
		return nil, newError(ConstructionTimeout, key, path.Push(key, poolKey.Type),
			"waited %v for another goroutine to construct %v; likely a circular dependency across goroutines",
			c.lockTimeout, poolKey)
	}
	defer lock.release()

	if v, ok := c.pool.get(poolKey); ok {
		c.stat.Counter(stats.IcePoolHitCounter).Inc(1)
		return v, nil
	}
	v, err := build(path)
	if err != nil {
		return nil, err
	}
	v = c.pool.putIfAbsent(poolKey, v)
	c.stat.Gauge(stats.IcePooledGauge).Update(int64(c.pool.len()))
	return v, nil
}

// ResolveAll resolves every registration of t in the chain. A child's
// registration shadows an equal key in its ancestors. Implicit registrations
// are left out, so the result does not depend on earlier resolutions.
func (c *Container) ResolveAll(t Type) ([]interface{}, error) {
	var seen []Key
	var out []interface{}
	for n := c; n != nil; n = n.parent {
		if err := n.alive(Key{Type: t}); err != nil {
			return nil, err
		}
	entries:
		for _, e := range n.table.matching(t, false) {
			if e.key.Type.IsOpen() || isImplicit(e.reg) {
				continue
			}
			for _, k := range seen {
				if k.Equal(e.key) {
					continue entries
				}
			}
			seen = append(seen, e.key)
			v, err := n.resolveIn(e.key, nil)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func isImplicit(reg Registration) bool {
	b, ok := reg.(*typeBinding)
	return ok && b.implicit
}

// IsRegistered reports whether some container in the chain binds (t, name).
// Implicit registrations count once they were made.
func (c *Container) IsRegistered(t Type, name string) bool {
	_, e, err := c.lookup(Key{Type: t, Name: name})
	return err == nil && e != nil
}

// Keys lists the keys registered directly in c, in registration order.
func (c *Container) Keys() []Key {
	return c.table.keys()
}

// Dispose releases every pooled value the container owns, each once, in
// reverse order of pooling, then forgets everything. Afterwards every
// operation fails with ContainerDisposed.
func (c *Container) Dispose() error {
	if !atomic.CompareAndSwapInt32(&c.disposed, 0, 1) {
		return newError(ContainerDisposed, Key{}, nil, "container %s was disposed", c.id)
	}
	entries := c.pool.snapshot()
	released := make(releaseSet)
	count := 0
	var errs multiError
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.suppressRelease || e.value == nil || e.value == interface{}(c) {
			continue
		}
		if released.seen(e.value) {
			continue
		}
		count++
		if err := release(e.value); err != nil {
			errs = append(errs, errors.Wrapf(err, "releasing %v", e.key))
		}
		c.stat.Counter(stats.IceReleasedCounter).Inc(1)
	}
	c.pool.clear()
	c.table.clear()
	c.obsMu.Lock()
	c.observers = nil
	c.obsMu.Unlock()
	c.log.Infof("disposed, released %d values", count)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type pointerKey struct {
	t reflect.Type
	p uintptr
}

// releaseSet remembers released values by identity.
type releaseSet map[interface{}]bool

// seen marks v and reports whether it was marked before. Reference kinds are
// tracked by address; other values only if they can be hashed at all, since a
// comparable struct may still hold a slice in an interface field.
func (s releaseSet) seen(v interface{}) (dup bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		k := pointerKey{t: rv.Type(), p: rv.Pointer()}
		dup = s[k]
		s[k] = true
		return dup
	}
	if !rv.Type().Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			dup = false
		}
	}()
	dup = s[v]
	s[v] = true
	return dup
}

func release(v interface{}) error {
	switch r := v.(type) {
	case io.Closer:
		return r.Close()
	case Disposable:
		return r.Dispose()
	}
	return nil
}
