package yamlconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/ice/config/jsonconfig"
	"github.com/twitter/ice/ice"
)

type Store interface{ Kind() string }

type memStore struct{}

func (s *memStore) Kind() string { return "mem" }

func catalog() *jsonconfig.Catalog {
	cat := jsonconfig.NewCatalog()
	cat.AddSample((*Store)(nil), &memStore{})
	return cat
}

const document1 = `bindings:
  - abstract: yamlconfig.Store
    implementation: '*yamlconfig.memStore'
  - abstract: yamlconfig.Store
    implementation: '*yamlconfig.memStore'
    name: other
    lifetime: transient
`

func TestParseDocument(t *testing.T) {
	d, err := Parse(catalog(), []byte(document1))
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, jsonconfig.Directive{
		Abstract:       "yamlconfig.Store",
		Implementation: "*yamlconfig.memStore",
		Name:           "other",
		Lifetime:       "transient",
	}, d.List()[1])

	c := ice.New()
	require.NoError(t, c.InstallModule(d))
	a, err := ice.Get[Store](c, "other")
	require.NoError(t, err)
	b, err := ice.Get[Store](c, "other")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestParseSequence(t *testing.T) {
	d, err := Parse(catalog(), []byte(`
- abstract: yamlconfig.Store
  implementation: "*yamlconfig.memStore"
`))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}

func TestParseEmpty(t *testing.T) {
	d, err := Parse(catalog(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{
		"just a string",
		"bindings: [",
		"bindings:\n  - abstract: yamlconfig.Missing\n    implementation: '*yamlconfig.memStore'\n",
	} {
		_, err := Parse(catalog(), []byte(text))
		assert.Error(t, err, text)
	}
}

func TestRoundTrip(t *testing.T) {
	d, err := Parse(catalog(), []byte(document1))
	require.NoError(t, err)
	out, err := Marshal(d)
	require.NoError(t, err)
	again, err := Parse(catalog(), out)
	require.NoError(t, err)
	assert.Equal(t, d.List(), again.List())
}
