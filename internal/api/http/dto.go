package http

import (
	"strings"

	"bulletin-board/internal/domain"
)

// CreateJobTypeRequest is the body of POST /job-types.
type CreateJobTypeRequest struct {
	Name string `json:"name" validate:"required,notblank,max=128"`
}

// ToDomainJobType converts the request into a new domain.JobType.
func (r *CreateJobTypeRequest) ToDomainJobType() *domain.JobType {
	return &domain.JobType{Name: r.Name}
}

func (r *CreateJobTypeRequest) normalize() { r.Name = strings.TrimSpace(r.Name) }

// EditJobTypeRequest is the body of PUT /job-types/{id}.
type EditJobTypeRequest struct {
	Name string `json:"name" validate:"required,notblank,max=128"`
}

func (r *EditJobTypeRequest) normalize() { r.Name = strings.TrimSpace(r.Name) }

// normalizer is implemented by request bodies that clean their fields before validation.
type normalizer interface {
	normalize()
}

// JobTypeResponse is the list view of a job type.
type JobTypeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JobTypeDetailsResponse is the single-record view of a job type.
type JobTypeDetailsResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

// NewJobTypeResponse maps a domain.JobType to its list view.
func NewJobTypeResponse(jt *domain.JobType) JobTypeResponse {
	return JobTypeResponse{ID: jt.ID, Name: jt.Name}
}

// NewJobTypeResponses maps a slice of job types, never returning nil.
func NewJobTypeResponses(jobTypes []*domain.JobType) []JobTypeResponse {
	out := make([]JobTypeResponse, 0, len(jobTypes))
	for _, jt := range jobTypes {
		out = append(out, NewJobTypeResponse(jt))
	}
	return out
}

// NewJobTypeDetailsResponse maps a domain.JobType to its details view.
func NewJobTypeDetailsResponse(jt *domain.JobType) JobTypeDetailsResponse {
	return JobTypeDetailsResponse{ID: jt.ID, Name: jt.Name, Version: jt.Version}
}

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is the body of a 400 caused by invalid input.
type ValidationErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}
