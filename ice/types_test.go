package ice

import (
	"errors"
	"sync"
)

type intBox struct {
	i int
}

func MakeIntBox1() intBox {
	return intBox{i: 1}
}

type Storage interface {
	Set(i int)
	Get() int
}

type memStorage struct {
	val int
}

func (s *memStorage) Set(i int) { s.val = i }
func (s *memStorage) Get() int  { return s.val }

func NewMemStorage() Storage { return &memStorage{} }

type Auther interface {
	Auth(token string) error
}

type DB struct {
	s Storage
	a Auther
}

func NewDB(s Storage, a Auther) DB { return DB{s, a} }

func (db DB) IsEven(token string) (bool, error) {
	if err := db.a.Auth(token); err != nil {
		return false, err
	}
	return db.s.Get()%2 == 0, nil
}

func (db DB) Inc(token string) error {
	if err := db.a.Auth(token); err != nil {
		return err
	}
	db.s.Set(db.s.Get() + 1)
	return nil
}

type yesAuther struct{}

func (a *yesAuther) Auth(token string) error { return nil }

func NewYesAuther() Auther { return &yesAuther{} }

type noAuther struct{}

func (a *noAuther) Auth(token string) error { return errors.New("denied") }

type Evener struct {
	odder *Odder
}

func (e *Evener) IsEven(i int) bool {
	if i == 0 {
		return true
	}
	return e.odder.IsOdd(i - 1)
}

func MakeEvener(o *Odder) *Evener {
	return &Evener{o}
}

type Odder struct {
	evener *Evener
}

func (o *Odder) IsOdd(i int) bool {
	return o.evener.IsEven(i - 1)
}

func MakeOdder(e *Evener) *Odder {
	return &Odder{e}
}

// Struct built from its field plan, cycling through its fields.
type ping struct {
	Pong *pong `ice:"inject"`
}

type pong struct {
	Ping *ping `ice:"inject"`
}

// Painter has several named implementations.
type Painter interface {
	Color() string
}

type Color string

type brush struct {
	Name Name
}

func (b *brush) Color() string { return string(b.Name) }

type redPainter struct{}

func (p *redPainter) Color() string { return "red" }

type bluePainter struct{}

func (p *bluePainter) Color() string { return "blue" }

// gallery is filled through tagged fields.
type gallery struct {
	Default Painter `ice:"inject"`
	Blue    Painter `ice:"inject,name=blue"`
	Label   string  `ice:"name"`
	Self    Name
	Count   int
	hidden  Painter
}

type engine struct {
	storage Storage
	auther  Auther
	ctor    string
}

func newEngine() *engine                   { return &engine{ctor: "none"} }
func newEngineWithStorage(s Storage) *engine { return &engine{storage: s, ctor: "storage"} }
func newEngineWithAuther(a Auther) *engine  { return &engine{auther: a, ctor: "auther"} }
func newEngineWithBoth(s Storage, a Auther) *engine {
	return &engine{storage: s, auther: a, ctor: "both"}
}

// Generic types used to check template bindings.
type User struct{ ID int }

type Repo[T any] interface {
	Kind() string
}

type memRepo[T any] struct {
	Name Name
}

func (r *memRepo[T]) Kind() string { return "mem:" + string(r.Name) }

// closer records the order releases happen in.
type closer struct {
	name string
	log  *releaseLog
}

func (c *closer) Close() error {
	c.log.add(c.name)
	return nil
}

type releaseLog struct {
	mu    sync.Mutex
	names []string
}

func (l *releaseLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (l *releaseLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

type inner struct{ *closer }

type Order struct{ ID int }

// Store specializations may depend on each other through one template binding.
type Store[T any] interface {
	Depth() int
}

type linkedStore[T any] struct {
	next  interface{}
	depth int
}

func (s *linkedStore[T]) Depth() int { return s.depth }

// tagged has a comparable type, but a value holding a slice cannot be hashed.
type tagged struct {
	data interface{}
	log  *releaseLog
}

func (t tagged) Close() error {
	t.log.add("tagged")
	return nil
}
