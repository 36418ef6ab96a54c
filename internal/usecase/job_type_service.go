package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bulletin-board/internal/domain"
	"bulletin-board/internal/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// JobTypeService implements the job type use cases on top of a repository.
type JobTypeService struct {
	repo   domain.JobTypeRepository
	logger *slog.Logger
	tracer trace.Tracer
}

// NewJobTypeService creates a new JobTypeService instance.
func NewJobTypeService(repo domain.JobTypeRepository, logger *slog.Logger) *JobTypeService {
	return &JobTypeService{
		repo:   repo,
		logger: logger.With("component", "job-type-service"),
		tracer: otel.Tracer("bulletin-board-usecase"),
	}
}

// List returns every job type.
func (s *JobTypeService) List(ctx context.Context) ([]*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListJobTypes")
	defer span.End()

	jobTypes, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list job types from repository")
	}
	return jobTypes, err
}

// Get returns one job type.
func (s *JobTypeService) Get(ctx context.Context, id string) (*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	if id == "" {
		return nil, domain.ErrJobTypeNotFound
	}

	jobType, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get job type from repository")
	}
	return jobType, err
}

// Create validates and stores a new job type, assigning an id when none is set.
func (s *JobTypeService) Create(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := s.tracer.Start(ctx, "service.CreateJobType")
	defer span.End()

	if err := jobType.Validate(); err != nil {
		span.RecordError(err)
		return err
	}
	if jobType.ID == "" {
		jobType.ID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("job_type.id", jobType.ID))

	if err := s.repo.Create(ctx, jobType); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create job type in repository")
		return err
	}

	s.logger.Info("job type created", "job_type_id", jobType.ID, "name", jobType.Name)
	return nil
}

// Edit renames the job type with the given id.
//
// A write conflict is resolved by re-checking existence: if the record was
// removed in the meantime the result is domain.ErrJobTypeNotFound, otherwise
// the conflict is returned wrapped. Edits are never retried or merged.
func (s *JobTypeService) Edit(ctx context.Context, id, name string) (err error) {
	ctx, span := s.tracer.Start(ctx, "service.EditJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	defer func() {
		metrics.JobTypeEditsTotal.WithLabelValues(editOutcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to edit job type")
		}
	}()

	if id == "" {
		return domain.ErrJobTypeNotFound
	}

	jobType, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	jobType.Name = name
	if err := jobType.Validate(); err != nil {
		return err
	}

	err = s.repo.Update(ctx, jobType)
	if err == nil {
		s.logger.Info("job type edited", "job_type_id", id, "name", jobType.Name)
		return nil
	}
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		return err
	}

	exists, existsErr := s.repo.Exists(ctx, id)
	if existsErr != nil {
		return fmt.Errorf("check job type %s after conflict: %w", id, existsErr)
	}
	if !exists {
		s.logger.Info("job type removed during edit", "job_type_id", id)
		return domain.ErrJobTypeNotFound
	}

	s.logger.Warn("job type edit conflicted with a concurrent change", "job_type_id", id)
	return fmt.Errorf("edit job type %s: %w", id, err)
}

// Delete permanently removes a job type.
func (s *JobTypeService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "service.DeleteJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	if id == "" {
		return domain.ErrJobTypeNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete job type from repository")
		return err
	}

	s.logger.Info("job type deleted", "job_type_id", id)
	return nil
}

func editOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.EditOutcomeOK
	case errors.Is(err, domain.ErrJobTypeNotFound):
		return metrics.EditOutcomeNotFound
	case errors.Is(err, domain.ErrInvalidJobType):
		return metrics.EditOutcomeInvalid
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return metrics.EditOutcomeConflict
	default:
		return metrics.EditOutcomeError
	}
}
