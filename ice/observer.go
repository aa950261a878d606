package ice

// CreationObserver is told about every object a container constructs.
// It is called synchronously, after construction and before the value is
// pooled or returned.
type CreationObserver interface {
	ObjectCreated(key Key, value interface{})
}

// ObserverFunc adapts a func to CreationObserver.
type ObserverFunc func(key Key, value interface{})

func (f ObserverFunc) ObjectCreated(key Key, value interface{}) { f(key, value) }

// ObserverID identifies a subscription for RemoveObserver.
type ObserverID uint64

type observerEntry struct {
	id ObserverID
	o  CreationObserver
}

// AddObserver subscribes o to constructions performed by c.
// Constructions performed by an ancestor on c's behalf are reported to the
// ancestor's observers.
func (c *Container) AddObserver(o CreationObserver) ObserverID {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.nextObserver++
	c.observers = append(c.observers, observerEntry{id: c.nextObserver, o: o})
	return c.nextObserver
}

// RemoveObserver unsubscribes id. It reports whether id was subscribed.
func (c *Container) RemoveObserver(id ObserverID) bool {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	for i, e := range c.observers {
		if e.id == id {
			c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Container) notify(key Key, v interface{}) {
	c.obsMu.RLock()
	observers := c.observers
	c.obsMu.RUnlock()
	for _, e := range observers {
		e.o.ObjectCreated(key, v)
	}
}
