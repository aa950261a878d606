package ice

import (
	"errors"
	"io"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisposeReleasesPooled(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	d := NewMockDisposable(mockCtrl)
	d.EXPECT().Dispose().Return(nil).Times(1)

	c := New()
	c.RegisterFactory(func() Disposable { return d }, Type{})
	_, err := c.Resolve(Of[Disposable](), "")
	require.NoError(t, err)
	_, err = c.Resolve(Of[Disposable](), "")
	require.NoError(t, err)

	require.NoError(t, c.Dispose())
}

func TestDisposeReleasesOnce(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	d := NewMockDisposable(mockCtrl)
	d.EXPECT().Dispose().Return(nil).Times(1)

	c := New()
	require.NoError(t, c.RegisterInstance(d, Of[Disposable](), ReleaseOnDispose()))
	require.NoError(t, c.RegisterInstance(d, TypeOf(d), Named("again"), ReleaseOnDispose()))

	require.NoError(t, c.Dispose())
}

func TestDisposeUnhashableValue(t *testing.T) {
	log := &releaseLog{}
	c := New()
	c.RegisterFactory(func() io.Closer { return tagged{data: []int{1}, log: log} }, Type{})
	_, err := c.Resolve(Of[io.Closer](), "")
	require.NoError(t, err)

	assert.NotPanics(t, func() { assert.NoError(t, c.Dispose()) })
	assert.Equal(t, []string{"tagged"}, log.get())
	_, err = c.Resolve(Of[io.Closer](), "")
	assert.True(t, errors.Is(err, ContainerDisposed), "was %v", err)
}

func TestDisposeSkipsUnownedInstances(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	// no expectations: any Dispose call fails the test
	d := NewMockDisposable(mockCtrl)

	c := New()
	require.NoError(t, c.RegisterInstance(d, Of[Disposable]()))
	_, err := c.Resolve(Of[Disposable](), "")
	require.NoError(t, err)
	require.NoError(t, c.Dispose())
}

func TestDisposeSkipsPerDependency(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	d := NewMockDisposable(mockCtrl)
	c := New()
	sel, _ := c.RegisterFactory(func() Disposable { return d }, Type{})
	sel.PerDependency()
	_, err := c.Resolve(Of[Disposable](), "")
	require.NoError(t, err)
	require.NoError(t, c.Dispose())
}

func TestDisposeReverseOrder(t *testing.T) {
	rl := &releaseLog{}
	c := New()
	c.RegisterFactory(func() *inner { return &inner{&closer{name: "inner", log: rl}} }, Type{})
	c.RegisterFactory(func(i *inner) io.Closer { return &closer{name: "outer", log: rl} }, Type{})

	_, err := c.Resolve(Of[io.Closer](), "")
	require.NoError(t, err)
	require.NoError(t, c.Dispose())
	assert.Equal(t, []string{"outer", "inner"}, rl.get())
}

func TestDisposeCollectsErrors(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	d := NewMockDisposable(mockCtrl)
	d.EXPECT().Dispose().Return(errors.New("stuck"))

	c := New()
	c.RegisterInstance(d, Of[Disposable](), ReleaseOnDispose())
	err := c.Dispose()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stuck")
}

func TestUseAfterDispose(t *testing.T) {
	c := New()
	c.Put(NewMemStorage)
	child := c.NewChild()
	require.NoError(t, c.Dispose())

	_, err := c.Resolve(Of[Storage](), "")
	assert.True(t, errors.Is(err, ContainerDisposed), "was %v", err)
	_, err = c.RegisterType(TypeOf(&memStorage{}), Of[Storage]())
	assert.True(t, errors.Is(err, ContainerDisposed), "was %v", err)
	err = c.Put(NewMemStorage)
	assert.True(t, errors.Is(err, ContainerDisposed), "was %v", err)
	err = c.DeclareConstructor(newEngine)
	assert.True(t, errors.Is(err, ContainerDisposed), "was %v", err)
	_, err = c.ResolveAll(Of[Storage]())
	assert.True(t, errors.Is(err, ContainerDisposed), "was %v", err)
	assert.False(t, c.IsRegistered(Of[Storage](), ""))
	assert.True(t, errors.Is(c.Dispose(), ContainerDisposed), "disposing twice")

	// a child falls back to a disposed parent only to learn it is gone
	_, err = child.Resolve(Of[Storage](), "")
	assert.True(t, errors.Is(err, ContainerDisposed), "was %v", err)
}

func TestDisposeChildKeepsParent(t *testing.T) {
	rl := &releaseLog{}
	parent := New()
	parent.RegisterFactory(func() io.Closer { return &closer{name: "parent", log: rl} }, Type{})
	child := parent.NewChild()
	child.RegisterFactory(func() io.Closer { return &closer{name: "child", log: rl} }, Type{}, Named("own"))

	_, err := child.Resolve(Of[io.Closer](), "")
	require.NoError(t, err)
	_, err = child.Resolve(Of[io.Closer](), "own")
	require.NoError(t, err)

	require.NoError(t, child.Dispose())
	assert.Equal(t, []string{"child"}, rl.get(), "the parent owns what it built")
	_, err = parent.Resolve(Of[io.Closer](), "")
	assert.NoError(t, err)
}

func TestObservers(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	o := NewMockCreationObserver(mockCtrl)
	o.EXPECT().ObjectCreated(gomock.Any(), gomock.Any()).Times(1)

	c := New()
	c.Put(NewMemStorage)
	id := c.AddObserver(o)
	c.Resolve(Of[Storage](), "")
	c.Resolve(Of[Storage](), "")

	assert.True(t, c.RemoveObserver(id))
	assert.False(t, c.RemoveObserver(id))
	c.RegisterType(TypeOf(&redPainter{}), Of[Painter]())
	c.Resolve(Of[Painter](), "")
}

func TestObserverSeesKeyAndValue(t *testing.T) {
	c := New()
	var keys []string
	var values []interface{}
	c.AddObserver(ObserverFunc(func(key Key, value interface{}) {
		keys = append(keys, key.String())
		values = append(values, value)
	}))
	c.Put(NewDB, NewMemStorage, NewYesAuther)
	var db DB
	require.NoError(t, c.Extract(&db))

	assert.Equal(t, []string{"ice.Storage", "ice.Auther", "ice.DB"}, keys)
	assert.Equal(t, db, values[2])
}

func TestObserversAreContainerScoped(t *testing.T) {
	parent := New()
	parent.Put(NewMemStorage)
	child := parent.NewChild()
	seen := 0
	child.AddObserver(ObserverFunc(func(Key, interface{}) { seen++ }))

	_, err := child.Resolve(Of[Storage](), "")
	require.NoError(t, err)
	assert.Equal(t, 0, seen, "the parent built it")

	_, err = child.Resolve(TypeOf(&memStorage{}), "")
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}
