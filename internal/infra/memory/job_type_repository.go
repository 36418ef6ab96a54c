// Package memory holds an in-process JobTypeRepository.
package memory

import (
	"context"
	"sort"
	"sync"

	"bulletin-board/internal/domain"
)

type memoryJobTypeRepository struct {
	mu       sync.RWMutex
	jobTypes map[string]domain.JobType
}

// NewJobTypeRepository creates an empty in-memory repository.
func NewJobTypeRepository() domain.JobTypeRepository {
	return &memoryJobTypeRepository{
		jobTypes: make(map[string]domain.JobType),
	}
}

func (r *memoryJobTypeRepository) Create(_ context.Context, jobType *domain.JobType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobTypes[jobType.ID]; ok {
		return domain.ErrJobTypeAlreadyExists
	}
	jobType.Version = 1
	r.jobTypes[jobType.ID] = *jobType
	return nil
}

func (r *memoryJobTypeRepository) Get(_ context.Context, id string) (*domain.JobType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jt, ok := r.jobTypes[id]
	if !ok {
		return nil, domain.ErrJobTypeNotFound
	}
	return &jt, nil
}

func (r *memoryJobTypeRepository) List(_ context.Context) ([]*domain.JobType, error) {
	r.mu.RLock()
	jobTypes := make([]*domain.JobType, 0, len(r.jobTypes))
	for _, jt := range r.jobTypes {
		jt := jt
		jobTypes = append(jobTypes, &jt)
	}
	r.mu.RUnlock()

	sort.Slice(jobTypes, func(i, j int) bool {
		if jobTypes[i].Name != jobTypes[j].Name {
			return jobTypes[i].Name < jobTypes[j].Name
		}
		return jobTypes[i].ID < jobTypes[j].ID
	})
	return jobTypes, nil
}

func (r *memoryJobTypeRepository) Update(_ context.Context, jobType *domain.JobType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.jobTypes[jobType.ID]
	if !ok || stored.Version != jobType.Version {
		return domain.ErrConcurrencyConflict
	}
	jobType.Version = stored.Version + 1
	r.jobTypes[jobType.ID] = *jobType
	return nil
}

func (r *memoryJobTypeRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobTypes[id]; !ok {
		return domain.ErrJobTypeNotFound
	}
	delete(r.jobTypes, id)
	return nil
}

func (r *memoryJobTypeRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.jobTypes[id]
	return ok, nil
}
