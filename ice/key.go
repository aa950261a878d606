package ice

import (
	"fmt"
	"reflect"
	"strings"
)

// Type describes what ice knows how to create.
// It is either a closed Go type or an open template standing for every
// specialization of one generic type.
type Type struct {
	rt    reflect.Type // nil for an open template
	group string
}

// TypeOf returns the Type of v.
// A nil pointer to an interface names the interface itself, so
// TypeOf((*Logger)(nil)) is Logger. Anything else is its dynamic type.
func TypeOf(v interface{}) Type {
	if v == nil {
		panic("ice: TypeOf(nil)")
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}
	return TypeFor(t)
}

// TypeFor wraps a reflect.Type.
func TypeFor(t reflect.Type) Type {
	if t == nil {
		panic("ice: TypeFor(nil)")
	}
	return Type{rt: t, group: groupOf(t)}
}

// Of returns the Type for T. Of[Logger]() is the interface Logger.
func Of[T any]() Type {
	return TypeFor(reflect.TypeOf((*T)(nil)).Elem())
}

// Template returns the open template of a generic type, given any of its
// specializations: Template(Repo[int]{}) stands for every Repo[X].
func Template(sample interface{}) Type {
	t := TypeOf(sample)
	if t.Args() == "" {
		panic(fmt.Errorf("ice: %v is not a generic type", t.rt))
	}
	return Type{group: t.group}
}

// IsOpen reports whether t is an open template.
func (t Type) IsOpen() bool { return t.rt == nil && t.group != "" }

// IsZero reports whether t was never set.
func (t Type) IsZero() bool { return t.rt == nil && t.group == "" }

// Reflect returns the underlying reflect.Type, nil for an open template.
func (t Type) Reflect() reflect.Type { return t.rt }

// Group is the template family of t. For non generic types it is the full name.
func (t Type) Group() string { return t.group }

// Args returns the type argument list of a closed generic type ("" otherwise).
func (t Type) Args() string {
	if t.rt == nil {
		return ""
	}
	return argsOf(t.rt)
}

// Equal compares two Types. Closed types must be identical; an open template
// equals any closed specialization of itself.
func (t Type) Equal(o Type) bool {
	if t.rt != nil && o.rt != nil {
		return t.rt == o.rt
	}
	return t.group == o.group
}

func (t Type) String() string {
	if t.rt == nil {
		return t.group + "[...]"
	}
	return t.rt.String()
}

func (t Type) isInterface() bool { return t.rt != nil && t.rt.Kind() == reflect.Interface }

func (t Type) isPlainValue() bool {
	if t.rt == nil {
		return false
	}
	switch t.rt.Kind() {
	case reflect.Bool, reflect.String, reflect.Uintptr, reflect.UnsafePointer,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// groupOf strips type arguments: pkg.Repo[pkg.User] -> pkg.Repo, *pkg.Repo[...] -> *pkg.Repo
func groupOf(t reflect.Type) string {
	if t.Kind() == reflect.Ptr && t.Name() == "" {
		return "*" + groupOf(t.Elem())
	}
	if t.Name() == "" {
		return t.String()
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if t.PkgPath() == "" {
		return name
	}
	return t.PkgPath() + "." + name
}

func argsOf(t reflect.Type) string {
	if t.Kind() == reflect.Ptr && t.Name() == "" {
		return argsOf(t.Elem())
	}
	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i < 0 {
		return ""
	}
	return name[i:]
}

// Key identifies a binding: a Type plus an optional, case-insensitive name.
type Key struct {
	Type Type
	Name string
}

// KeyOf is shorthand for Key{TypeOf(v), name}.
func KeyOf(v interface{}, name string) Key {
	return Key{Type: TypeOf(v), Name: name}
}

// Equal compares Types with Type.Equal and names ignoring case.
func (k Key) Equal(o Key) bool {
	return strings.EqualFold(k.Name, o.Name) && k.Type.Equal(o.Type)
}

// same is stricter than Equal: open and closed types never match.
// The registration table uses it so a closed registration never replaces an
// open template one.
func (k Key) same(o Key) bool {
	return strings.EqualFold(k.Name, o.Name) && k.Type.rt == o.Type.rt && k.Type.group == o.Type.group
}

// bucket is computed on the group, so all specializations of one template
// share a bucket.
func (k Key) bucket() string {
	return k.Type.group + "\x00" + strings.ToLower(k.Name)
}

func (k Key) String() string {
	if k.Name == "" {
		return k.Type.String()
	}
	return fmt.Sprintf("%v(%q)", k.Type, k.Name)
}

// Name is the type of a constructor parameter or struct field that receives
// the name under which the object being built was requested.
type Name string

var nameType = reflect.TypeOf(Name(""))
