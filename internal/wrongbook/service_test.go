package wrongbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hamexam/backend/internal/apperr"
	"go.uber.org/zap"
)

// memStore keeps ledgers as JSON so every Load hands back a fresh copy, the
// way a real backend would.
type memStore struct {
	mu      sync.Mutex
	data    map[int64][]byte
	saves   int
	failErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[int64][]byte)}
}

func (m *memStore) Load(ctx context.Context, userID int64) (*Ledger, error) {
	m.mu.Lock()
	raw, ok := m.data[userID]
	m.mu.Unlock()

	l := NewLedger()
	if !ok {
		return l, nil
	}
	if err := json.Unmarshal(raw, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (m *memStore) Save(ctx context.Context, userID int64, l *Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return err
	}
	m.data[userID] = raw
	m.saves++
	return nil
}

func newTestService(store Store) *Service {
	return NewService(store, zap.NewNop().Sugar())
}

func TestUpdateSavesOnce(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	err := svc.Update(ctx, 1, func(l *Ledger) error {
		l.RecordMiss("q1", q("q1"), t0)
		l.RecordMiss("q2", q("q2"), t0)
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}

	l, _ := svc.View(ctx, 1)
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestUpdateSkipsSaveOnError(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := svc.Update(ctx, 1, func(l *Ledger) error {
		l.RecordMiss("q1", q("q1"), t0)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0", store.saves)
	}
}

func TestUpdateSaveFailureKeepsPriorLedger(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	svc.Update(ctx, 1, func(l *Ledger) error {
		l.RecordMiss("q1", q("q1"), t0)
		return nil
	})

	store.failErr = errors.New("disk full")
	err := svc.Update(ctx, 1, func(l *Ledger) error {
		l.Clear()
		return nil
	})
	if apperr.KindOf(err) != apperr.Internal {
		t.Errorf("save failure kind = %v, want Internal", apperr.KindOf(err))
	}

	store.failErr = nil
	l, _ := svc.View(ctx, 1)
	if l.Len() != 1 {
		t.Errorf("ledger after failed save has %d records, want 1", l.Len())
	}
}

func TestConcurrentUpdatesLoseNothing(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("q%d", i)
			err := svc.Update(ctx, 1, func(l *Ledger) error {
				l.RecordMiss(id, q(id), t0)
				l.RecordMiss("shared", q("shared"), t0)
				return nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}(i)
	}
	wg.Wait()

	l, _ := svc.View(ctx, 1)
	if l.Len() != workers+1 {
		t.Errorf("Len() = %d, want %d", l.Len(), workers+1)
	}
	if r, _ := l.Get("shared"); r.WrongCount != workers {
		t.Errorf("shared WrongCount = %d, want %d", r.WrongCount, workers)
	}
	if n := svc.locks.size(); n != 0 {
		t.Errorf("locker still holds %d entries", n)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	svc.Update(ctx, 1, func(l *Ledger) error {
		l.RecordMiss("q1", q("q1"), t0)
		return nil
	})

	other, _ := svc.View(ctx, 2)
	if other.Len() != 0 {
		t.Errorf("user 2 sees %d records", other.Len())
	}
}

func TestPractice(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	svc.Update(ctx, 1, func(l *Ledger) error {
		l.RecordMiss("q1", q("q1"), t0)
		return nil
	})

	if _, err := svc.Practice(ctx, 1, "", true, t0); !apperr.Is(err, apperr.InvalidArgument) {
		t.Errorf("empty id error = %v, want InvalidArgument", err)
	}
	if _, err := svc.Practice(ctx, 1, "nope", true, t0); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("absent id error = %v, want NotFound", err)
	}

	svc.Practice(ctx, 1, "q1", true, t0)
	svc.Practice(ctx, 1, "q1", true, t0)
	removed, err := svc.Practice(ctx, 1, "q1", false, t0)
	if err != nil || removed {
		t.Fatalf("miss = (%v, %v), want (false, nil)", removed, err)
	}
	l, _ := svc.View(ctx, 1)
	r, _ := l.Get("q1")
	if r.WrongCount != 2 || r.CorrectCount != 0 {
		t.Errorf("after miss = wrong %d correct %d, want 2 and 0", r.WrongCount, r.CorrectCount)
	}

	for i := 1; i <= RetireThreshold; i++ {
		removed, err = svc.Practice(ctx, 1, "q1", true, t0)
		if err != nil {
			t.Fatalf("hit %d: %v", i, err)
		}
		if removed != (i == RetireThreshold) {
			t.Errorf("hit %d removed = %v", i, removed)
		}
	}
	l, _ = svc.View(ctx, 1)
	if l.Len() != 0 {
		t.Errorf("Len() = %d after retirement, want 0", l.Len())
	}
}

func TestClear(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	svc.Update(ctx, 1, func(l *Ledger) error {
		l.RecordMiss("q1", q("q1"), t0)
		return nil
	})
	if err := svc.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	l, _ := svc.View(ctx, 1)
	if l.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", l.Len())
	}
}
