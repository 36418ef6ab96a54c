// Package redis implements domain.JobTypeRepository on Redis. Each job type
// is a Hash; a Set tracks the ids for enumeration. Updates are optimistic
// transactions guarded by WATCH on the record key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bulletin-board/internal/domain"
)

const keyPrefix = "board:"

// jobTypeKey returns the key for a job type hash: board:job_type:{id}
func jobTypeKey(id string) string { return keyPrefix + "job_type:" + id }

// jobTypeIDsKey is the Set tracking all job type ids.
const jobTypeIDsKey = keyPrefix + "job_type_ids"

var _ domain.JobTypeRepository = (*Store)(nil)

// Store is a Redis-backed job type repository. The caller owns the client
// lifecycle.
type Store struct {
	client goredis.UniversalClient
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a new Redis-backed store.
func New(client goredis.UniversalClient, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		logger: logger.With("component", "redis-job-type-repo"),
		tracer: otel.Tracer("bulletin-board-redis-repo"),
	}
}

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Create stores a new job type at version 1. The key is watched so a
// concurrent create of the same id aborts the EXEC.
func (s *Store) Create(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := s.tracer.Start(ctx, "repo.redis.CreateJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", jobType.ID))

	key := jobTypeKey(jobType.ID)
	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrJobTypeAlreadyExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, jobTypeToMap(jobType.ID, jobType.Name, 1))
			pipe.SAdd(ctx, jobTypeIDsKey, jobType.ID)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		jobType.Version = 1
		return nil
	case errors.Is(err, domain.ErrJobTypeAlreadyExists), errors.Is(err, goredis.TxFailedErr):
		return domain.ErrJobTypeAlreadyExists
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create job type in redis")
		return fmt.Errorf("board/redis: create job type: %w", err)
	}
}

// Get retrieves a job type by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "repo.redis.GetJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	vals, err := s.client.HGetAll(ctx, jobTypeKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get job type from redis")
		return nil, fmt.Errorf("board/redis: get job type: %w", err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrJobTypeNotFound
	}
	return mapToJobType(vals)
}

// List returns all job types ordered by name, then id.
func (s *Store) List(ctx context.Context) ([]*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "repo.redis.ListJobTypes")
	defer span.End()

	ids, err := s.client.SMembers(ctx, jobTypeIDsKey).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list job type ids from redis")
		return nil, fmt.Errorf("board/redis: list job type ids: %w", err)
	}

	pipe := s.client.Pipeline()
	cmds := make([]*goredis.MapStringStringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.HGetAll(ctx, jobTypeKey(id)))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load job types from redis")
			return nil, fmt.Errorf("board/redis: list job types: %w", err)
		}
	}

	jobTypes := make([]*domain.JobType, 0, len(cmds))
	for _, cmd := range cmds {
		vals := cmd.Val()
		if len(vals) == 0 {
			// Deleted between SMEMBERS and HGETALL.
			continue
		}
		jt, err := mapToJobType(vals)
		if err != nil {
			s.logger.Warn("skipping malformed job type hash", "error", err)
			continue
		}
		jobTypes = append(jobTypes, jt)
	}

	sort.Slice(jobTypes, func(i, j int) bool {
		if jobTypes[i].Name != jobTypes[j].Name {
			return jobTypes[i].Name < jobTypes[j].Name
		}
		return jobTypes[i].ID < jobTypes[j].ID
	})
	return jobTypes, nil
}

// Update writes the job type if the stored version still matches. The key
// is watched so a concurrent write or delete aborts the EXEC.
func (s *Store) Update(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := s.tracer.Start(ctx, "repo.redis.UpdateJobType")
	defer span.End()
	span.SetAttributes(
		attribute.String("job_type.id", jobType.ID),
		attribute.Int64("job_type.expected_version", jobType.Version),
	)

	key := jobTypeKey(jobType.ID)
	next := jobType.Version + 1
	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.HGet(ctx, key, "version").Int64()
		if errors.Is(err, goredis.Nil) {
			return domain.ErrConcurrencyConflict
		}
		if err != nil {
			return err
		}
		if current != jobType.Version {
			return domain.ErrConcurrencyConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, jobTypeToMap(jobType.ID, jobType.Name, next))
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		jobType.Version = next
		return nil
	case errors.Is(err, domain.ErrConcurrencyConflict), errors.Is(err, goredis.TxFailedErr):
		span.AddEvent("version_mismatch")
		return domain.ErrConcurrencyConflict
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update job type in redis")
		return fmt.Errorf("board/redis: update job type: %w", err)
	}
}

// Delete removes a job type by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "repo.redis.DeleteJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, jobTypeKey(id))
	pipe.SRem(ctx, jobTypeIDsKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete job type from redis")
		return fmt.Errorf("board/redis: delete job type: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrJobTypeNotFound
	}
	return nil
}

// Exists reports whether a hash exists for id.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "repo.redis.JobTypeExists")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	n, err := s.client.Exists(ctx, jobTypeKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check job type in redis")
		return false, fmt.Errorf("board/redis: job type exists: %w", err)
	}
	return n > 0, nil
}

func jobTypeToMap(id, name string, version int64) map[string]any {
	return map[string]any{
		"id":      id,
		"name":    name,
		"version": strconv.FormatInt(version, 10),
	}
}

func mapToJobType(vals map[string]string) (*domain.JobType, error) {
	version, err := strconv.ParseInt(vals["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("board/redis: parse version of %q: %w", vals["id"], err)
	}
	return &domain.JobType{
		ID:      vals["id"],
		Name:    vals["name"],
		Version: version,
	}, nil
}
