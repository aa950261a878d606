package ice

import (
	"fmt"
)

// Module can install many bindings at once.
// It could be just []Provider, but this lets Module code look a little nicer,
// and lets configuration loaders hand a parsed file straight to a container.
type Module interface {
	Install(c *Container) error
}

// ModuleFunc adapts a func to Module.
type ModuleFunc func(c *Container) error

func (f ModuleFunc) Install(c *Container) error { return f(c) }

// InstallModule installs m, turning a panic inside Install into an error.
func (c *Container) InstallModule(m Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Error installing module %T: %v", m, r)
		}
	}()
	if err := c.alive(Key{}); err != nil {
		return err
	}
	return m.Install(c)
}

// Put registers each provider func as a PerContext factory for its result type.
// A provider returns either exactly 1 value or 2 values with the second an error.
func (c *Container) Put(providers ...interface{}) error {
	for _, p := range providers {
		if _, err := c.RegisterFactory(p, Type{}); err != nil {
			return err
		}
	}
	return nil
}
