// Package yamlconfig reads the same bindings as jsonconfig from YAML.
//
//	bindings:
//	  - abstract: demo.Store
//	    implementation: "*demo.MemStore"
//	  - abstract: demo.Store
//	    implementation: "*demo.DiskStore"
//	    name: backup
//	    lifetime: perdependency
//
// A bare sequence of bindings is accepted too.
package yamlconfig

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/twitter/ice/config/jsonconfig"
)

type document struct {
	Bindings []jsonconfig.Directive `yaml:"bindings"`
}

// Parse reads text and checks each binding against catalog.
func Parse(catalog *jsonconfig.Catalog, text []byte) (*jsonconfig.Directives, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		return nil, errors.Wrap(err, "Couldn't parse yaml config")
	}
	var ds []jsonconfig.Directive
	if len(root.Content) > 0 {
		n := root.Content[0]
		switch n.Kind {
		case yaml.SequenceNode:
			if err := n.Decode(&ds); err != nil {
				return nil, errors.Wrap(err, "Couldn't parse binding list")
			}
		case yaml.MappingNode:
			var doc document
			if err := n.Decode(&doc); err != nil {
				return nil, errors.Wrap(err, "Couldn't parse top-level config")
			}
			ds = doc.Bindings
		default:
			return nil, errors.Errorf("line %d: expected a mapping or a sequence of bindings", n.Line)
		}
	}
	log.Debugf("yaml config parsed to: %+v", ds)
	return catalog.Directives(ds)
}

// Marshal writes directives in the document form Parse reads.
func Marshal(d *jsonconfig.Directives) ([]byte, error) {
	out, err := yaml.Marshal(document{Bindings: d.List()})
	if err != nil {
		return nil, errors.Wrap(err, "Couldn't marshal bindings")
	}
	return out, nil
}
