package ice

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an injection failure. Kinds are errors themselves so callers
// can write errors.Is(err, ice.CircularDependency).
type Kind int

const (
	_ Kind = iota
	// AlreadyResolved: a key was registered again after it had been resolved.
	AlreadyResolved
	// UnresolvableAbstractType: an interface (or a type with no way to build it)
	// has no concrete binding anywhere in the chain.
	UnresolvableAbstractType
	// CircularDependency: a construction re-entered a key on its own path.
	CircularDependency
	// ConstructionTimeout: waited too long for another goroutine's construction,
	// most likely a cycle across goroutines.
	ConstructionTimeout
	// AmbiguousConstructor: several declared constructors share the maximal
	// parameter count.
	AmbiguousConstructor
	// InvalidResolutionTarget: a plain value type or an open template was requested.
	InvalidResolutionTarget
	// ContainerDisposed: the container was used after Dispose.
	ContainerDisposed
	// InvalidRegistration: the arguments to a Register call cannot form a binding.
	InvalidRegistration
	// ConstructionFailed: a constructor or factory returned an error or panicked.
	ConstructionFailed
)

var kindNames = map[Kind]string{
	AlreadyResolved:          "already resolved",
	UnresolvableAbstractType: "unresolvable abstract type",
	CircularDependency:       "circular dependency",
	ConstructionTimeout:      "construction timeout",
	AmbiguousConstructor:     "ambiguous constructor",
	InvalidResolutionTarget:  "invalid resolution target",
	ContainerDisposed:        "container disposed",
	InvalidRegistration:      "invalid registration",
	ConstructionFailed:       "construction failed",
}

func (k Kind) Error() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ice error kind %d", int(k))
}

func (k Kind) String() string { return k.Error() }

// InjectionError is every error the engine returns.
type InjectionError struct {
	Kind       Kind
	Key        Key
	Path       *Path
	// GoStack is set when a provider panicked.
	GoStack    string
	underlying error
}

func newError(kind Kind, key Key, path *Path, format string, a ...interface{}) *InjectionError {
	return &InjectionError{Kind: kind, Key: key, Path: path, underlying: fmt.Errorf(format, a...)}
}

func wrapError(kind Kind, key Key, path *Path, err error) *InjectionError {
	return &InjectionError{Kind: kind, Key: key, Path: path, underlying: err}
}

func (e *InjectionError) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ice %v: %v", e.Kind, e.underlying)
	if e.Path.Len() > 0 {
		fmt.Fprintf(&b, " [path: %v]", e.Path)
	}
	return b.String()
}

func (e *InjectionError) Error() string { return e.String() }

// Unwrap exposes the underlying cause, e.g. a factory's own error.
func (e *InjectionError) Unwrap() error { return e.underlying }

// Is matches the error's Kind.
func (e *InjectionError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the outermost InjectionError in err's chain, or 0.
func KindOf(err error) Kind {
	var ie *InjectionError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}

// multiError collects release failures during Dispose.
type multiError []error

func (m multiError) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}
	parts := make([]string, len(m))
	for i, err := range m {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(m), strings.Join(parts, "; "))
}
