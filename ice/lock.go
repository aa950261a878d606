package ice

import (
	"sync/atomic"
	"time"
)

// DefaultLockTimeout bounds how long a resolution waits for another
// goroutine's construction of the same cached instance.
const DefaultLockTimeout = time.Second

var lockingDisabled int32

// SetConstructionLocking turns the per registration construction lock on or
// off for the whole process. With locking off, concurrent first resolutions
// of a PerContext binding may each build an instance; the first one pooled
// wins and is returned to everybody after that.
func SetConstructionLocking(enabled bool) {
	v := int32(0)
	if !enabled {
		v = 1
	}
	atomic.StoreInt32(&lockingDisabled, v)
}

// ConstructionLocking reports the process wide switch.
func ConstructionLocking() bool {
	return atomic.LoadInt32(&lockingDisabled) == 0
}

// constructionLock guards the first construction of one registration's cached
// instance. It is not reentrant: same-chain cycles must be caught through the
// Path before acquire is called.
type constructionLock struct {
	ch chan struct{}
}

func newConstructionLock() *constructionLock {
	return &constructionLock{ch: make(chan struct{}, 1)}
}

// acquire returns false if the lock could not be taken within timeout.
func (l *constructionLock) acquire(timeout time.Duration) bool {
	select {
	case l.ch <- struct{}{}:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case l.ch <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

func (l *constructionLock) release() {
	<-l.ch
}
