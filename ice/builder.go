package ice

import (
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ice/common/stats"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Field plans only depend on the struct type, so they are shared process wide.
var fieldPlans, _ = lru.New(512)

// constructors holds what a container was told about how to build types.
type constructors struct {
	mu      sync.RWMutex
	byType  map[reflect.Type][]reflect.Value
	byGroup map[string][]reflect.Type
}

func newConstructors() *constructors {
	return &constructors{
		byType:  make(map[reflect.Type][]reflect.Value),
		byGroup: make(map[string][]reflect.Type),
	}
}

func (cs *constructors) addType(t reflect.Type) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.addTypeLocked(t)
}

func (cs *constructors) addTypeLocked(t reflect.Type) {
	g := groupOf(t)
	for _, known := range cs.byGroup[g] {
		if known == t {
			return
		}
	}
	cs.byGroup[g] = append(cs.byGroup[g], t)
}

func (cs *constructors) add(fn reflect.Value) {
	out := fn.Type().Out(0)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.byType[out] = append(cs.byType[out], fn)
	cs.addTypeLocked(out)
}

func (cs *constructors) forType(t reflect.Type) []reflect.Value {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.byType[t]
}

func (cs *constructors) specialization(group, args string) (reflect.Type, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, t := range cs.byGroup[group] {
		if argsOf(t) == args {
			return t, true
		}
	}
	return nil, false
}

// checkProvider validates a constructor or factory func.
// It must return either exactly 1 value or 2 values with the second an error.
func checkProvider(f interface{}) (reflect.Value, error) {
	if f == nil {
		return reflect.Value{}, fmt.Errorf("provider is nil")
	}
	v := reflect.ValueOf(f)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("provider must be a func; was %v", t)
	}
	if t.IsVariadic() {
		return reflect.Value{}, fmt.Errorf("provider must not be variadic; was %v", t)
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return reflect.Value{}, fmt.Errorf("provider must return 1 value or (value, error); was %v", t)
	}
	return v, nil
}

// specialize picks the concrete type a TypeBinding builds for key.
func (c *Container) specialize(impl Type, key Key, path *Path) (Type, error) {
	if !impl.IsOpen() {
		return impl, nil
	}
	args := key.Type.Args()
	if args == "" {
		return Type{}, newError(UnresolvableAbstractType, key, path,
			"template %v needs type arguments but %v has none", impl, key.Type)
	}
	for n := c; n != nil; n = n.parent {
		if t, ok := n.ctors.specialization(impl.group, args); ok {
			return TypeFor(t), nil
		}
	}
	return Type{}, newError(UnresolvableAbstractType, key, path,
		"no specialization %s of template %v was declared", args, impl)
}

// constructorsFor returns the constructors declared for t by the nearest
// container in the chain that declared any.
func (c *Container) constructorsFor(t reflect.Type) []reflect.Value {
	for n := c; n != nil; n = n.parent {
		if fns := n.ctors.forType(t); len(fns) > 0 {
			return fns
		}
	}
	return nil
}

// enter pushes key onto path unless it is already being constructed there.
func (c *Container) enter(key Key, resolved Type, path *Path) (*Path, error) {
	if path.Contains(key) {
		return nil, c.circular(key, path.Push(key, resolved))
	}
	return path.Push(key, resolved), nil
}

func (c *Container) circular(key Key, path *Path) error {
	c.stat.Counter(stats.IceCircularDependencyCounter).Inc(1)
	return newError(CircularDependency, key, path, "already constructing %v", key)
}

// build creates a new instance of concrete to satisfy key.
func (c *Container) build(concrete Type, key Key, path *Path) (interface{}, error) {
	path, err := c.enter(key, concrete, path)
	if err != nil {
		return nil, err
	}
	t := concrete.rt

	if fns := c.constructorsFor(t); len(fns) > 0 {
		fn, err := pickConstructor(fns, key, path)
		if err != nil {
			return nil, err
		}
		return c.invoke(fn, key, path)
	}

	switch {
	case t.Kind() == reflect.Struct, t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		return c.buildStruct(planFor(t), key, path)
	case t.Kind() == reflect.Map:
		return c.created(key, reflect.MakeMap(t).Interface(), path), nil
	case t.Kind() == reflect.Slice:
		return c.created(key, reflect.MakeSlice(t, 0, 0).Interface(), path), nil
	case t.Kind() == reflect.Chan:
		return c.created(key, reflect.MakeChan(t, 0).Interface(), path), nil
	}
	return nil, newError(UnresolvableAbstractType, key, path,
		"%v has no declared constructor and is not a struct", t)
}

// pickConstructor takes the constructor with the most parameters.
func pickConstructor(fns []reflect.Value, key Key, path *Path) (reflect.Value, error) {
	best, tie := 0, false
	for i := 1; i < len(fns); i++ {
		switch n, m := fns[i].Type().NumIn(), fns[best].Type().NumIn(); {
		case n > m:
			best, tie = i, false
		case n == m:
			tie = true
		}
	}
	if tie {
		names := make([]string, len(fns))
		for i, fn := range fns {
			names[i] = fn.Type().String()
		}
		return reflect.Value{}, newError(AmbiguousConstructor, key, path,
			"several constructors take %d parameters: %s", fns[best].Type().NumIn(), strings.Join(names, ", "))
	}
	return fns[best], nil
}

// invoke resolves fn's parameters and calls it. path already holds key.
func (c *Container) invoke(fn reflect.Value, key Key, path *Path) (interface{}, error) {
	ft := fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		pt := ft.In(i)
		if pt == nameType {
			args[i] = reflect.ValueOf(Name(key.Name))
			continue
		}
		v, err := c.resolveIn(Key{Type: TypeFor(pt)}, path)
		if err != nil {
			return nil, err
		}
		args[i] = valueAs(v, pt)
	}

	latency := c.stat.Latency(stats.IceBuildLatency_ms).Time()
	results, goStack, err := call(fn, args)
	latency.Stop()
	if err != nil {
		ie := wrapError(ConstructionFailed, key, path, err)
		ie.GoStack = goStack
		return nil, ie
	}
	if len(results) == 2 && !results[1].IsNil() {
		err := results[1].Interface().(error)
		if _, ok := err.(*InjectionError); ok {
			return nil, err
		}
		return nil, wrapError(ConstructionFailed, key, path,
			fmt.Errorf("provider %s returned error: %w", funcName(fn), err))
	}
	return c.created(key, results[0].Interface(), path), nil
}

// call runs fn, turning a panic into an error.
func call(fn reflect.Value, args []reflect.Value) (results []reflect.Value, goStack string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", funcName(fn), r)
			goStack = string(debug.Stack())
		}
	}()
	return fn.Call(args), "", nil
}

// created records a finished construction and notifies observers.
func (c *Container) created(key Key, v interface{}, path *Path) interface{} {
	c.stat.Counter(stats.IceBuildCounter).Inc(1)
	c.log.WithField("key", key.String()).Debugf("Constructed: %T", v)
	c.notify(key, v)
	return v
}

type fieldSpec struct {
	index    int
	typ      reflect.Type
	name     string
	passName bool
}

type fieldPlan struct {
	structType reflect.Type
	ptr        bool
	fields     []fieldSpec
}

// planFor scans a struct (or pointer to struct) for injectable fields:
//
//	Store  Store    `ice:"inject"`
//	Backup Store    `ice:"inject,name=backup"`
//	Self   ice.Name              // receives the requested name
//	Label  string   `ice:"name"`
func planFor(t reflect.Type) *fieldPlan {
	if p, ok := fieldPlans.Get(t); ok {
		return p.(*fieldPlan)
	}
	plan := &fieldPlan{structType: t}
	if t.Kind() == reflect.Ptr {
		plan.ptr = true
		plan.structType = t.Elem()
	}
	st := plan.structType
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag, tagged := f.Tag.Lookup("ice")
		opts := strings.Split(tag, ",")
		switch {
		case f.Type == nameType && (!tagged || opts[0] != "-"):
			plan.fields = append(plan.fields, fieldSpec{index: i, typ: f.Type, passName: true})
		case tagged && opts[0] == "name" && f.Type.Kind() == reflect.String:
			plan.fields = append(plan.fields, fieldSpec{index: i, typ: f.Type, passName: true})
		case tagged && opts[0] == "inject":
			spec := fieldSpec{index: i, typ: f.Type}
			for _, o := range opts[1:] {
				if strings.HasPrefix(o, "name=") {
					spec.name = strings.TrimPrefix(o, "name=")
				}
			}
			plan.fields = append(plan.fields, spec)
		}
	}
	fieldPlans.Add(t, plan)
	return plan
}

func (c *Container) buildStruct(plan *fieldPlan, key Key, path *Path) (interface{}, error) {
	v := reflect.New(plan.structType).Elem()
	for _, f := range plan.fields {
		if f.passName {
			v.Field(f.index).SetString(key.Name)
			continue
		}
		dep, err := c.resolveIn(Key{Type: TypeFor(f.typ), Name: f.name}, path)
		if err != nil {
			return nil, err
		}
		v.Field(f.index).Set(valueAs(dep, f.typ))
	}
	if plan.ptr {
		return c.created(key, v.Addr().Interface(), path), nil
	}
	return c.created(key, v.Interface(), path), nil
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		return f.Name()
	}
	return fn.Type().String()
}

// logFields is attached to every log line a container writes.
func logFields(id, parent string) log.Fields {
	f := log.Fields{"container": id}
	if parent != "" {
		f["parent"] = parent
	}
	return f
}
