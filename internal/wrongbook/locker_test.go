package wrongbook

import (
	"sync"
	"testing"
	"time"
)

func TestLockerSerialisesSameUser(t *testing.T) {
	l := NewLocker()
	release := l.Lock(1)

	acquired := make(chan struct{})
	go func() {
		unlock := l.Lock(1)
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock(1) acquired while first was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock(1) never acquired after release")
	}
}

func TestLockerDifferentUsersDoNotBlock(t *testing.T) {
	l := NewLocker()
	release := l.Lock(1)
	defer release()

	done := make(chan struct{})
	go func() {
		l.Lock(2)()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Lock(2) blocked behind Lock(1)")
	}
}

func TestLockerDropsIdleEntries(t *testing.T) {
	l := NewLocker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			l.Lock(uid)()
		}(int64(i % 4))
	}
	wg.Wait()

	if n := l.size(); n != 0 {
		t.Errorf("size() = %d, want 0", n)
	}
}
