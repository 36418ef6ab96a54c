package domain

import (
	"context"
	"errors"
)

var (
	// ErrJobTypeNotFound is returned when no job type has the requested id.
	ErrJobTypeNotFound = errors.New("job type not found")

	// ErrJobTypeAlreadyExists is returned when creating a job type whose id is taken.
	ErrJobTypeAlreadyExists = errors.New("job type already exists")

	// ErrConcurrencyConflict is returned by Update when the stored record was
	// modified or removed after it was read.
	ErrConcurrencyConflict = errors.New("job type was modified concurrently")
)

// JobTypeRepository persists job types.
type JobTypeRepository interface {
	Create(ctx context.Context, jobType *JobType) error
	Get(ctx context.Context, id string) (*JobType, error)
	// List returns all job types ordered by name, then id.
	List(ctx context.Context) ([]*JobType, error)
	// Update writes jobType if the stored version still equals jobType.Version,
	// and sets jobType.Version to the new token. A mismatch or a missing record
	// yields ErrConcurrencyConflict.
	Update(ctx context.Context, jobType *JobType) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
