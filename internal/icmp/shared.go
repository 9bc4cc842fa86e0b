package icmp

import (
	"sync"
)

type startStopper interface {
	Start() error
	Stop()
}

// sharedResource starts the resource when the first user acquires it, and stops it when the last user releases it.
type sharedResource[T startStopper] struct {
	sync.Mutex

	count    int
	resource T
}

func newSharedResource[T startStopper](resource T) *sharedResource[T] {
	return &sharedResource[T]{
		resource: resource,
	}
}

// Acquire starts the resource if nobody uses it yet, and increments the reference count.
func (sr *sharedResource[T]) Acquire() (resource T, err error) {
	sr.Lock()
	defer sr.Unlock()

	if sr.count == 0 {
		if err = sr.resource.Start(); err != nil {
			return
		}
	}

	sr.count++

	return sr.resource, nil
}

// Release decrements the reference count, and stops the resource if it was the last user.
// Extra releases are ignored.
func (sr *sharedResource[T]) Release() {
	sr.Lock()
	defer sr.Unlock()

	if sr.count > 0 {
		sr.count--

		if sr.count == 0 {
			sr.resource.Stop()
		}
	}
}

// Users returns the current reference count.
func (sr *sharedResource[T]) Users() int {
	sr.Lock()
	defer sr.Unlock()

	return sr.count
}
