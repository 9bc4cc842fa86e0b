package icmp

import (
	"errors"
	"sync"
	"testing"
)

type countingResource struct {
	startCount int
	stopCount  int
	err        error
}

func (r *countingResource) Start() error {
	if r.err != nil {
		return r.err
	}
	r.startCount++
	return nil
}

func (r *countingResource) Stop() {
	r.stopCount++
}

func TestSharedResource(t *testing.T) {
	r := &countingResource{}
	sr := newSharedResource(r)

	assertCount := func(t *testing.T, start, stop int) {
		t.Helper()

		sr.Lock()
		defer sr.Unlock()

		if r.startCount != start || r.stopCount != stop {
			t.Errorf("unexpected count: start:%d stop:%d != start:%d stop:%d", r.startCount, r.stopCount, start, stop)
		}
	}

	sr.Acquire()
	sr.Acquire()
	assertCount(t, 1, 0)

	sr.Release()
	assertCount(t, 1, 0)

	sr.Release()
	assertCount(t, 1, 1)

	sr.Acquire()
	assertCount(t, 2, 1)

	sr.Release()
	assertCount(t, 2, 2)

	sr.Release()
	assertCount(t, 2, 2)

	if n := sr.Users(); n != 0 {
		t.Errorf("unexpected users: %d", n)
	}
}

func TestSharedResource_failedToStart(t *testing.T) {
	want := errors.New("test error")
	r := &countingResource{err: want}
	sr := newSharedResource(r)

	if _, err := sr.Acquire(); err != want {
		t.Errorf("expected %s but got %v", want, err)
	}
	if n := sr.Users(); n != 0 {
		t.Errorf("failed acquire should not count: %d", n)
	}

	r.err = nil
	if _, err := sr.Acquire(); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	if n := sr.Users(); n != 1 {
		t.Errorf("unexpected users: %d", n)
	}
}

func TestSharedResource_flooding(t *testing.T) {
	r := &countingResource{}
	sr := newSharedResource(r)

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sr.Acquire()
		}()
	}
	wg.Wait()

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sr.Release()
		}()
	}
	wg.Wait()

	sr.Lock()
	defer sr.Unlock()

	if r.startCount != 1 {
		t.Errorf("unexpected start count: %d", r.startCount)
	}
	if r.stopCount != 1 {
		t.Errorf("unexpected stop count: %d", r.stopCount)
	}
}

func TestPrivilegedSetting(t *testing.T) {
	tests := []struct {
		Env  string
		Want *bool
	}{
		{"", nil},
		{"maybe", nil},
		{"1", boolPtr(true)},
		{"Yes", boolPtr(true)},
		{"on", boolPtr(true)},
		{"0", boolPtr(false)},
		{"FALSE", boolPtr(false)},
		{"off", boolPtr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.Env, func(t *testing.T) {
			t.Setenv(PrivilegedEnv, tt.Env)

			got := privilegedSetting()
			switch {
			case tt.Want == nil && got != nil:
				t.Errorf("expected nil but got %v", *got)
			case tt.Want != nil && got == nil:
				t.Errorf("expected %v but got nil", *tt.Want)
			case tt.Want != nil && *got != *tt.Want:
				t.Errorf("expected %v but got %v", *tt.Want, *got)
			}
		})
	}
}

func boolPtr(b bool) *bool {
	return &b
}
