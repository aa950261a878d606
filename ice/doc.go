/*
ice is a lightweight Dependency Injection Framework

ice's central metaphor is a "Magic Bag", implemented by Container.

It's a Bag because you put things in and then take things out.

Imagine a bag where you put in building materials and an Ikea instruction manual,
and then you pull out a fully-formed desk. The bag did the assembly! Magic!

Lifecycle

1) Create a Container, optionally as the child of another one
2) Register bindings: types, instances, factories
  a) or a Module, which can register many bindings at once
3) Resolve values
4) Dispose the Container, releasing what it built

Terms

Type: what ice knows how to create. A Go type, or an open Template standing for
every specialization of a generic type.

Key: a Type plus an optional case-insensitive name.

Registration: how a Key is satisfied. A type to build, a fixed instance, a
factory func, or the named collection map[string]T synthesized for every named
registration of T.

Lifetime: PerContext caches one instance per container, PerDependency builds on
every request.

Path: the chain of constructions in flight for one Resolve call. A Key that
shows up twice on its own Path is a circular dependency.

Construction lock: PerContext instances are built under a per registration lock
with a bounded wait (DefaultLockTimeout). A waiter that gives up reports
ConstructionTimeout, which usually means a cycle spanning goroutines.

Building

A concrete type is built with the declared constructor taking the most
parameters (see DeclareConstructor), or, for structs, by filling fields tagged
`ice:"inject"`. A parameter or field of type ice.Name receives the name under
which the object was requested.

Notes

ice uses reflection heavily.
*/
package ice
