package roadmaprepo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
)

// MemoryStore keeps roadmaps in process memory. Useful for tests and local dev.
// Entries are stored encoded so callers never share slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) SaveLatest(_ context.Context, roadmap domain.Roadmap) error {
	payload, err := json.Marshal(roadmap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[roadmap.UserID] = payload
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, userID string) (domain.Roadmap, bool, error) {
	s.mu.RLock()
	payload, ok := s.data[userID]
	s.mu.RUnlock()
	if !ok {
		return domain.Roadmap{}, false, nil
	}
	var roadmap domain.Roadmap
	if err := json.Unmarshal(payload, &roadmap); err != nil {
		return domain.Roadmap{}, false, err
	}
	return roadmap, true, nil
}

var _ domain.Store = (*MemoryStore)(nil)

// MemoryJobRepository is an in-memory job table.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]domain.Job
}

// NewMemoryJobRepository constructs the repository.
func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{data: make(map[uuid.UUID]domain.Job)}
}

func (r *MemoryJobRepository) Create(_ context.Context, job domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[job.ID] = job
	return nil
}

func (r *MemoryJobRepository) Get(_ context.Context, id uuid.UUID) (domain.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[id]
	return job, ok, nil
}

func (r *MemoryJobRepository) MarkProcessing(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(job *domain.Job) {
		job.Status = domain.JobStatusProcessing
		job.Attempts++
	})
}

func (r *MemoryJobRepository) Complete(_ context.Context, id uuid.UUID, result domain.Roadmap) error {
	return r.update(id, func(job *domain.Job) {
		now := time.Now().UTC()
		job.Status = domain.JobStatusCompleted
		job.Result = &result
		job.Error = nil
		job.CompletedAt = &now
	})
}

func (r *MemoryJobRepository) Fail(_ context.Context, id uuid.UUID, reason string) error {
	return r.update(id, func(job *domain.Job) {
		now := time.Now().UTC()
		job.Status = domain.JobStatusFailed
		job.Error = &reason
		job.CompletedAt = &now
	})
}

func (r *MemoryJobRepository) update(id uuid.UUID, mutate func(job *domain.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[id]
	if !ok {
		return nil
	}
	mutate(&job)
	job.UpdatedAt = time.Now().UTC()
	r.data[id] = job
	return nil
}

var _ domain.JobRepository = (*MemoryJobRepository)(nil)
