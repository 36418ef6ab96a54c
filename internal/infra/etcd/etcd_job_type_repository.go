// internal/infra/etcd/etcd_job_type_repository.go
package etcd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"bulletin-board/internal/domain"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	JobTypeDir = "/board/job-types/"
)

// storedJobType is the JSON value kept under each key. The version lives in
// the key's ModRevision, not in the value.
type storedJobType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type etcdJobTypeRepository struct {
	client *clientv3.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// NewEtcdJobTypeRepository creates a repository for job types backed by etcd.
// A job type's version is the ModRevision of its key.
func NewEtcdJobTypeRepository(client *clientv3.Client, logger *slog.Logger) domain.JobTypeRepository {
	return &etcdJobTypeRepository{
		client: client,
		logger: logger.With("component", "etcd-job-type-repo"),
		tracer: otel.Tracer("bulletin-board-etcd-repo"),
	}
}

func jobTypeKey(id string) string {
	return JobTypeDir + id
}

// Create stores a new job type only if its key has never been written.
func (r *etcdJobTypeRepository) Create(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.CreateJobType")
	defer span.End()

	value, err := json.Marshal(storedJobType{ID: jobType.ID, Name: jobType.Name})
	if err != nil {
		return fmt.Errorf("failed to marshal job type to JSON: %w", err)
	}

	key := jobTypeKey(jobType.ID)
	span.SetAttributes(
		attribute.String("job_type.id", jobType.ID),
		attribute.String("etcd.key", key),
	)

	resp, err := r.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, string(value))).
		Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create job type in etcd")
		return fmt.Errorf("failed to create job type %s in etcd: %w", jobType.ID, err)
	}
	if !resp.Succeeded {
		return domain.ErrJobTypeAlreadyExists
	}

	jobType.Version = resp.Header.Revision
	return nil
}

// Get retrieves a job type from etcd.
func (r *etcdJobTypeRepository) Get(ctx context.Context, id string) (*domain.JobType, error) {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.GetJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	resp, err := r.client.Get(ctx, jobTypeKey(id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get job type from etcd")
		return nil, fmt.Errorf("failed to get job type %s from etcd: %w", id, err)
	}

	if len(resp.Kvs) == 0 {
		return nil, domain.ErrJobTypeNotFound
	}

	jobType, err := decodeJobType(resp.Kvs[0].Value, resp.Kvs[0].ModRevision)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal job type %s from JSON: %w", id, err)
	}
	return jobType, nil
}

// List retrieves all job types from etcd.
func (r *etcdJobTypeRepository) List(ctx context.Context) ([]*domain.JobType, error) {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.ListJobTypes")
	defer span.End()

	resp, err := r.client.Get(ctx, JobTypeDir, clientv3.WithPrefix())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list job types from etcd")
		return nil, fmt.Errorf("failed to list job types from etcd: %w", err)
	}
	span.SetAttributes(attribute.Int("etcd.kv_count", len(resp.Kvs)))

	jobTypes := make([]*domain.JobType, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		jobType, err := decodeJobType(kv.Value, kv.ModRevision)
		if err != nil {
			r.logger.Warn("failed to unmarshal job type from etcd", "key", string(kv.Key), "error", err)
			continue
		}
		jobTypes = append(jobTypes, jobType)
	}

	sort.Slice(jobTypes, func(i, j int) bool {
		if jobTypes[i].Name != jobTypes[j].Name {
			return jobTypes[i].Name < jobTypes[j].Name
		}
		return jobTypes[i].ID < jobTypes[j].ID
	})
	return jobTypes, nil
}

// Update writes the job type only if the key's ModRevision still equals
// jobType.Version. A deleted key has ModRevision 0 and fails the compare too.
func (r *etcdJobTypeRepository) Update(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.UpdateJobType")
	defer span.End()

	value, err := json.Marshal(storedJobType{ID: jobType.ID, Name: jobType.Name})
	if err != nil {
		return fmt.Errorf("failed to marshal job type to JSON: %w", err)
	}

	key := jobTypeKey(jobType.ID)
	span.SetAttributes(
		attribute.String("job_type.id", jobType.ID),
		attribute.String("etcd.key", key),
		attribute.Int64("etcd.expected_mod_revision", jobType.Version),
	)

	resp, err := r.client.Txn(ctx).
		If(clientv3.Compare(clientv3.ModRevision(key), "=", jobType.Version)).
		Then(clientv3.OpPut(key, string(value))).
		Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update job type in etcd")
		return fmt.Errorf("failed to update job type %s in etcd: %w", jobType.ID, err)
	}
	if !resp.Succeeded {
		span.AddEvent("mod_revision_mismatch")
		return domain.ErrConcurrencyConflict
	}

	jobType.Version = resp.Header.Revision
	return nil
}

// Delete removes a job type from etcd.
func (r *etcdJobTypeRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.DeleteJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	resp, err := r.client.Delete(ctx, jobTypeKey(id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete job type from etcd")
		return fmt.Errorf("failed to delete job type %s from etcd: %w", id, err)
	}
	if resp.Deleted == 0 {
		return domain.ErrJobTypeNotFound
	}
	return nil
}

// Exists reports whether a key exists for id.
func (r *etcdJobTypeRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.JobTypeExists")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	resp, err := r.client.Get(ctx, jobTypeKey(id), clientv3.WithCountOnly())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to count job type in etcd")
		return false, fmt.Errorf("failed to check job type %s in etcd: %w", id, err)
	}
	return resp.Count > 0, nil
}

func decodeJobType(value []byte, modRevision int64) (*domain.JobType, error) {
	var stored storedJobType
	if err := json.Unmarshal(value, &stored); err != nil {
		return nil, err
	}
	return &domain.JobType{ID: stored.ID, Name: stored.Name, Version: modRevision}, nil
}
