/*
Jsonconfig reads bindings from JSON into an ice Module.

To use:

 1. Create a Catalog. List the types a configuration file may name.
 2. Catalog.Parse parses bytes into Directives:
    a) each directive names an abstract type, an implementation, and
    optionally a name and a lifetime
    b) every type name is checked against the catalog
 3. Directives is an ice Module that registers each binding

Example:
1) Create the Catalog

	catalog := jsonconfig.NewCatalog()
	catalog.AddSample((*Store)(nil), &MemStore{}, &DiskStore{})

2) Parse

	mod, _ := catalog.Parse([]byte(`{
	 "bindings": [
	  {"abstract": "demo.Store", "implementation": "*demo.MemStore"},
	  {"abstract": "demo.Store", "implementation": "*demo.DiskStore", "name": "backup", "lifetime": "perdependency"}
	 ]
	}`))

3) Install the Directives

	c.InstallModule(mod)
*/
package jsonconfig
