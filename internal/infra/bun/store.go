// Package bunstore implements domain.JobTypeRepository on a relational
// database through the Bun ORM. PostgreSQL and SQLite dialects are supported.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bulletin-board/internal/domain"
)

var _ domain.JobTypeRepository = (*Store)(nil)

// Store is a Bun implementation of domain.JobTypeRepository.
// The caller owns the *bun.DB lifecycle; Store never closes it.
type Store struct {
	db     *bun.DB
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new Bun store.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.Default(),
		tracer: otel.Tracer("bulletin-board-bun-repo"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying *bun.DB.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Migrate creates the job_types table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*jobTypeModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("board/bun: create job_types table: %w", err)
	}
	s.logger.Info("job_types table ready", "dialect", s.db.Dialect().Name().String())
	return nil
}

// Create inserts a new job type at version 1.
func (s *Store) Create(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := s.tracer.Start(ctx, "repo.bun.CreateJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", jobType.ID))

	m := toJobTypeModel(jobType)
	m.Version = 1
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isDuplicateKey(err) {
			return domain.ErrJobTypeAlreadyExists
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert job type")
		return fmt.Errorf("board/bun: create job type: %w", err)
	}
	jobType.Version = m.Version
	return nil
}

// Get retrieves a job type by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "repo.bun.GetJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	m := new(jobTypeModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobTypeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to select job type")
		return nil, fmt.Errorf("board/bun: get job type: %w", err)
	}
	return fromJobTypeModel(m), nil
}

// List returns all job types ordered by name, then id.
func (s *Store) List(ctx context.Context) ([]*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "repo.bun.ListJobTypes")
	defer span.End()

	var models []jobTypeModel
	err := s.db.NewSelect().Model(&models).
		Order("name ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list job types")
		return nil, fmt.Errorf("board/bun: list job types: %w", err)
	}

	jobTypes := make([]*domain.JobType, 0, len(models))
	for i := range models {
		jobTypes = append(jobTypes, fromJobTypeModel(&models[i]))
	}
	return jobTypes, nil
}

// Update renames the job type if its version column still matches.
func (s *Store) Update(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := s.tracer.Start(ctx, "repo.bun.UpdateJobType")
	defer span.End()
	span.SetAttributes(
		attribute.String("job_type.id", jobType.ID),
		attribute.Int64("job_type.expected_version", jobType.Version),
	)

	res, err := s.db.NewUpdate().
		Model((*jobTypeModel)(nil)).
		Set("name = ?", jobType.Name).
		Set("version = version + 1").
		Where("id = ?", jobType.ID).
		Where("version = ?", jobType.Version).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update job type")
		return fmt.Errorf("board/bun: update job type: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("board/bun: update job type rows affected: %w", err)
	}
	if rows == 0 {
		span.AddEvent("version_mismatch")
		return domain.ErrConcurrencyConflict
	}

	jobType.Version++
	return nil
}

// Delete removes a job type by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "repo.bun.DeleteJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	res, err := s.db.NewDelete().
		Model((*jobTypeModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete job type")
		return fmt.Errorf("board/bun: delete job type: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("board/bun: delete job type rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrJobTypeNotFound
	}
	return nil
}

// Exists reports whether a row exists for id.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "repo.bun.JobTypeExists")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	exists, err := s.db.NewSelect().
		Model((*jobTypeModel)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check job type existence")
		return false, fmt.Errorf("board/bun: job type exists: %w", err)
	}
	return exists, nil
}

// isDuplicateKey matches unique violations from both PostgreSQL and SQLite.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE=23505") ||
		strings.Contains(msg, "duplicate key value")
}
