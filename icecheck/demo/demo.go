// Package demo is a small object graph for icecheck to resolve: a key/value
// service with stores, a clock and named loggers.
package demo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/twitter/ice/config/jsonconfig"
	"github.com/twitter/ice/ice"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct{ At time.Time }

func (c *FixedClock) Now() time.Time { return c.At }

func NewFixedClock() *FixedClock { return &FixedClock{At: time.Unix(0, 0).UTC()} }

type Store interface {
	Get(key string) (string, bool)
	Put(key, value string)
	Keys() []string
}

type MemStore struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool
}

func NewMemStore() *MemStore { return &MemStore{data: make(map[string]string)} }

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *MemStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close forgets everything; the container calls it on Dispose.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]string{}
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *MemStore) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// NullStore drops writes.
type NullStore struct{}

func (NullStore) Get(string) (string, bool) { return "", false }
func (NullStore) Put(string, string)        {}
func (NullStore) Keys() []string            { return nil }

type Logger interface {
	Log(format string, args ...interface{}) string
}

// PrefixLogger prefixes lines with the name it was resolved under.
type PrefixLogger struct {
	Prefix ice.Name
}

func (l *PrefixLogger) Log(format string, args ...interface{}) string {
	return fmt.Sprintf("[%s] ", l.Prefix) + fmt.Sprintf(format, args...)
}

// Service is built from its tagged fields.
type Service struct {
	Store  Store  `ice:"inject"`
	Clock  Clock  `ice:"inject"`
	Logger Logger `ice:"inject,name=service"`
}

func (s *Service) Record(key, value string) string {
	s.Store.Put(key, value)
	return s.Logger.Log("%s=%s at %s", key, value, s.Clock.Now().Format(time.RFC3339))
}

// Report is built by a declared constructor.
type Report struct {
	Lines []string
}

func NewReport(s Store, loggers map[string]Logger) *Report {
	names := make([]string, 0, len(loggers))
	for n := range loggers {
		names = append(names, n)
	}
	sort.Strings(names)
	r := &Report{}
	for _, n := range names {
		r.Lines = append(r.Lines, loggers[n].Log("%d keys", len(s.Keys())))
	}
	return r
}

// Catalog lists every type a configuration file may name.
func Catalog() *jsonconfig.Catalog {
	cat := jsonconfig.NewCatalog()
	cat.AddSample(
		(*Clock)(nil), SystemClock{}, &FixedClock{},
		(*Store)(nil), &MemStore{}, NullStore{},
		(*Logger)(nil), &PrefixLogger{},
		&Service{}, &Report{},
	)
	return cat
}

// Install declares how the demo types are built.
func Install(c *ice.Container) error {
	return c.DeclareConstructor(NewMemStore, NewFixedClock, NewReport)
}
