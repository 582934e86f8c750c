package dispatch

import (
	"fmt"
	"sync"
)

// Store holds in-flight assignment records keyed by assignment id. Update is
// the single mutation entry point: the callback runs under the store lock,
// so a check-and-set inside it is atomic per record. Implementations must
// keep the critical section free of external I/O.
type Store interface {
	Create(rec *AssignmentRecord) error
	// Update runs fn against the live record under the store lock. fn
	// returning an error leaves any mutation it already made in place; fn
	// must check preconditions before mutating.
	Update(id string, fn func(*AssignmentRecord) error) error
	Get(id string) (AssignmentRecord, bool)
	List() []AssignmentRecord
	Delete(id string)
	Len() int
}

// MemoryStore is the process-local Store implementation. Assignments do not
// survive a restart; the sweeper is the only safety net within a process
// lifetime.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*AssignmentRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*AssignmentRecord)}
}

func (s *MemoryStore) Create(rec *AssignmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[rec.ID]; ok {
		return fmt.Errorf("dispatch: duplicate assignment id %s", rec.ID)
	}
	s.data[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Update(id string, fn func(*AssignmentRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	return fn(rec)
}

func (s *MemoryStore) Get(id string) (AssignmentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[id]
	if !ok {
		return AssignmentRecord{}, false
	}
	return rec.snapshot(), true
}

func (s *MemoryStore) List() []AssignmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AssignmentRecord, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec.snapshot())
	}
	return out
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.data[id]; ok {
		rec.cancelTimer()
		delete(s.data, id)
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
