// Package mongo implements domain.JobTypeRepository on MongoDB. The version
// field is part of the update filter, so a stale or deleted document matches
// nothing.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bulletin-board/internal/domain"
)

const colJobTypes = "job_types"

var _ domain.JobTypeRepository = (*Store)(nil)

type jobTypeDocument struct {
	ID      string `bson:"_id"`
	Name    string `bson:"name"`
	Version int64  `bson:"version"`
}

// Store is a MongoDB job type repository. The caller owns the client.
type Store struct {
	col    *mongod.Collection
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a store over the job_types collection of db.
func New(db *mongod.Database, logger *slog.Logger) *Store {
	return &Store{
		col:    db.Collection(colJobTypes),
		logger: logger.With("component", "mongo-job-type-repo"),
		tracer: otel.Tracer("bulletin-board-mongo-repo"),
	}
}

// Migrate creates the name index used by List.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongod.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("board/mongo: create name index: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := s.tracer.Start(ctx, "repo.mongo.CreateJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", jobType.ID))

	doc := jobTypeDocument{ID: jobType.ID, Name: jobType.Name, Version: 1}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return domain.ErrJobTypeAlreadyExists
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert job type")
		return fmt.Errorf("board/mongo: create job type: %w", err)
	}
	jobType.Version = doc.Version
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "repo.mongo.GetJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	var doc jobTypeDocument
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongod.ErrNoDocuments) {
			return nil, domain.ErrJobTypeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find job type")
		return nil, fmt.Errorf("board/mongo: get job type: %w", err)
	}
	return fromDocument(&doc), nil
}

func (s *Store) List(ctx context.Context) ([]*domain.JobType, error) {
	ctx, span := s.tracer.Start(ctx, "repo.mongo.ListJobTypes")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list job types")
		return nil, fmt.Errorf("board/mongo: list job types: %w", err)
	}

	var docs []jobTypeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("board/mongo: decode job types: %w", err)
	}

	jobTypes := make([]*domain.JobType, 0, len(docs))
	for i := range docs {
		jobTypes = append(jobTypes, fromDocument(&docs[i]))
	}
	return jobTypes, nil
}

func (s *Store) Update(ctx context.Context, jobType *domain.JobType) error {
	ctx, span := s.tracer.Start(ctx, "repo.mongo.UpdateJobType")
	defer span.End()
	span.SetAttributes(
		attribute.String("job_type.id", jobType.ID),
		attribute.Int64("job_type.expected_version", jobType.Version),
	)

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": jobType.ID, "version": jobType.Version},
		bson.M{
			"$set": bson.M{"name": jobType.Name},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update job type")
		return fmt.Errorf("board/mongo: update job type: %w", err)
	}
	if res.MatchedCount == 0 {
		span.AddEvent("version_mismatch")
		return domain.ErrConcurrencyConflict
	}

	jobType.Version++
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "repo.mongo.DeleteJobType")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete job type")
		return fmt.Errorf("board/mongo: delete job type: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrJobTypeNotFound
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "repo.mongo.JobTypeExists")
	defer span.End()
	span.SetAttributes(attribute.String("job_type.id", id))

	n, err := s.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to count job type")
		return false, fmt.Errorf("board/mongo: job type exists: %w", err)
	}
	return n > 0, nil
}

func fromDocument(doc *jobTypeDocument) *domain.JobType {
	return &domain.JobType{ID: doc.ID, Name: doc.Name, Version: doc.Version}
}
