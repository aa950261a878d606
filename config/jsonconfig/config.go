package jsonconfig

import (
	"bytes"
	"encoding/json"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ice/ice"
)

// Catalog maps the type names used in configuration files to ice Types.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]ice.Type
}

func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]ice.Type)}
}

// Add makes t available under name. Names are case sensitive.
func (c *Catalog) Add(name string, t ice.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[name] = t
}

// AddSample adds the Type of each sample under its Go name, e.g. "*demo.MemStore".
// Use a nil interface pointer for interfaces: AddSample((*demo.Store)(nil)).
func (c *Catalog) AddSample(samples ...interface{}) {
	for _, s := range samples {
		t := ice.TypeOf(s)
		c.Add(t.String(), t)
	}
}

// Lookup finds the Type registered under name.
func (c *Catalog) Lookup(name string) (ice.Type, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[name]
	if !ok {
		return ice.Type{}, errors.Errorf("unknown type %q", name)
	}
	return t, nil
}

// Names lists the catalog, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.types))
	for n := range c.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Directive is one binding read from a configuration file.
type Directive struct {
	Abstract       string `json:"abstract" yaml:"abstract"`
	Implementation string `json:"implementation" yaml:"implementation"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	Lifetime       string `json:"lifetime,omitempty" yaml:"lifetime,omitempty"`
}

func (d Directive) String() string {
	s := d.Abstract
	if d.Name != "" {
		s += "(" + d.Name + ")"
	}
	return s + " -> " + d.Implementation
}

type binding struct {
	Directive
	abstract ice.Type
	impl     ice.Type
	lifetime ice.Lifetime
}

// Directives is a validated list of bindings. It is an ice Module.
type Directives struct {
	bindings []binding
}

// Directives checks each directive against the catalog.
func (c *Catalog) Directives(ds []Directive) (*Directives, error) {
	out := &Directives{bindings: make([]binding, 0, len(ds))}
	for i, d := range ds {
		if strings.TrimSpace(d.Abstract) == "" || strings.TrimSpace(d.Implementation) == "" {
			return nil, errors.Errorf("binding %d: abstract and implementation are required", i)
		}
		abstract, err := c.Lookup(d.Abstract)
		if err != nil {
			return nil, errors.Wrapf(err, "binding %d (%v)", i, d)
		}
		impl, err := c.Lookup(d.Implementation)
		if err != nil {
			return nil, errors.Wrapf(err, "binding %d (%v)", i, d)
		}
		lifetime, err := ice.ParseLifetime(d.Lifetime)
		if err != nil {
			return nil, errors.Wrapf(err, "binding %d (%v)", i, d)
		}
		out.bindings = append(out.bindings, binding{d, abstract, impl, lifetime})
	}
	return out, nil
}

var emptyJson = []byte("{}")

// Parse reads either {"bindings": [...]} or a bare array of directives.
func (c *Catalog) Parse(text []byte) (*Directives, error) {
	text = bytes.TrimSpace(text)
	if len(text) == 0 {
		text = emptyJson
	}
	var ds []Directive
	if text[0] == '[' {
		if err := json.Unmarshal(text, &ds); err != nil {
			return nil, errors.Wrap(err, "Couldn't parse directive list")
		}
	} else {
		var doc struct {
			Bindings []Directive `json:"bindings"`
		}
		if err := json.Unmarshal(text, &doc); err != nil {
			return nil, errors.Wrap(err, "Couldn't parse top-level config")
		}
		ds = doc.Bindings
	}
	log.Debugf("config parsed to: %+v", ds)
	return c.Directives(ds)
}

// Len is the number of bindings.
func (d *Directives) Len() int { return len(d.bindings) }

// List returns the directives as read.
func (d *Directives) List() []Directive {
	out := make([]Directive, len(d.bindings))
	for i, b := range d.bindings {
		out[i] = b.Directive
	}
	return out
}

// Install registers each binding with c, stopping at the first failure.
func (d *Directives) Install(c *ice.Container) error {
	for i, b := range d.bindings {
		var opts []ice.RegisterOption
		if b.Name != "" {
			opts = append(opts, ice.Named(b.Name))
		}
		sel, err := c.RegisterType(b.impl, b.abstract, opts...)
		if err != nil {
			return errors.Wrapf(err, "installing binding %d (%v)", i, b.Directive)
		}
		if b.lifetime == ice.PerDependency {
			sel.PerDependency()
		}
		log.WithField("binding", b.Directive.String()).Debug("installed")
	}
	return nil
}

// Keys are the keys Install registers, in order.
func (d *Directives) Keys() []ice.Key {
	keys := make([]ice.Key, len(d.bindings))
	for i, b := range d.bindings {
		keys[i] = ice.Key{Type: b.abstract, Name: b.Name}
	}
	return keys
}

func (d *Directives) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Bindings []Directive `json:"bindings"`
	}{d.List()})
}

// GetConfigText finds the right text for a configFlag.
// If configFlag looks like a filename (of the form foo.bar where foo and bar are just alphanumeric),
// read it as an asset.
// Otherwise, assume it's the literal text.
func GetConfigText(configFlag string, asset func(string) ([]byte, error)) ([]byte, error) {
	if matched, _ := regexp.Match(`^[[:alnum:]_-]*\.[[:alnum:]]*$`, []byte(configFlag)); matched {
		configFileName := path.Join("config", configFlag)
		log.Infof("reading config filename %v", configFileName)
		configText, err := asset(configFileName)
		if err != nil {
			return nil, errors.Wrapf(err, "Error Loading Config File %v", configFileName)
		}
		return configText, nil
	}
	log.Info("using -config as literal config")
	return []byte(configFlag), nil
}
