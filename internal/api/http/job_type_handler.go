// internal/api/http/job_type_handler.go
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bulletin-board/internal/domain"
	"bulletin-board/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// JobTypeHandler serves the /job-types resource.
type JobTypeHandler struct {
	service  *usecase.JobTypeService
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer
}

// NewJobTypeHandler creates a new JobTypeHandler and configures its validator.
func NewJobTypeHandler(service *usecase.JobTypeService, logger *slog.Logger) *JobTypeHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &JobTypeHandler{
		service:  service,
		logger:   logger.With("component", "job-type-handler"),
		validate: validate,
		tracer:   otel.Tracer("bulletin-board-api"),
	}
}

// RegisterRoutes mounts the job type routes on r.
func (h *JobTypeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/job-types", func(r chi.Router) {
		r.Use(Instrument(h.tracer))
		r.Get("/", h.handleListJobTypes)
		r.Post("/", h.handleCreateJobType)
		r.Get("/{id}", h.handleGetJobType)
		r.Put("/{id}", h.handleEditJobType)
		r.Delete("/{id}", h.handleDeleteJobType)
	})
}

func (h *JobTypeHandler) handleListJobTypes(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.ListJobTypes")
	defer span.End()

	jobTypes, err := h.service.List(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to list job types from service")
		span.RecordError(err)
		h.logger.Error("error listing job types", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, NewJobTypeResponses(jobTypes))
}

func (h *JobTypeHandler) handleGetJobType(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.GetJobType")
	defer span.End()
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("job_type.id", id))

	jobType, err := h.service.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to get job type from service")
		span.RecordError(err)
		h.writeServiceError(w, "error getting job type", id, err)
		return
	}

	writeJSON(w, http.StatusOK, NewJobTypeDetailsResponse(jobType))
}

func (h *JobTypeHandler) handleCreateJobType(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.CreateJobType")
	defer span.End()

	var req CreateJobTypeRequest
	if !h.decodeAndValidate(w, r, span, &req) {
		return
	}

	jobType := req.ToDomainJobType()
	if err := h.service.Create(ctx, jobType); err != nil {
		span.SetStatus(codes.Error, "Failed to create job type in service")
		span.RecordError(err)
		h.writeServiceError(w, "error creating job type", jobType.ID, err)
		return
	}
	span.SetAttributes(attribute.String("job_type.id", jobType.ID))

	w.Header().Set("Location", "/job-types/"+jobType.ID)
	writeJSON(w, http.StatusCreated, NewJobTypeDetailsResponse(jobType))
}

func (h *JobTypeHandler) handleEditJobType(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.EditJobType")
	defer span.End()
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("job_type.id", id))

	var req EditJobTypeRequest
	if !h.decodeAndValidate(w, r, span, &req) {
		return
	}

	if err := h.service.Edit(ctx, id, req.Name); err != nil {
		span.SetStatus(codes.Error, "Failed to edit job type in service")
		span.RecordError(err)
		h.writeServiceError(w, "error editing job type", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobTypeHandler) handleDeleteJobType(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handler.DeleteJobType")
	defer span.End()
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("job_type.id", id))

	if err := h.service.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, "Failed to delete job type in service")
		span.RecordError(err)
		h.writeServiceError(w, "error deleting job type", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeAndValidate writes a 400 response and returns false when the body is
// malformed or fails validation.
func (h *JobTypeHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, span trace.Span, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		span.SetStatus(codes.Error, "Failed to decode request body")
		span.RecordError(err)
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}

	if err := h.validate.Struct(req); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		span.RecordError(err)
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			writeError(w, http.StatusBadRequest, err.Error())
			return false
		}
		details := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			details = append(details, "Field '"+fe.Field()+"' failed on the '"+fe.Tag()+"' tag.")
		}
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Details: details})
		return false
	}
	return true
}

// writeServiceError maps domain errors to HTTP status codes.
func (h *JobTypeHandler) writeServiceError(w http.ResponseWriter, msg, id string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrJobTypeNotFound):
		h.logger.Warn(msg, "job_type_id", id, "error", err)
		writeError(w, http.StatusNotFound, domain.ErrJobTypeNotFound.Error())
	case errors.As(err, &verr):
		h.logger.Warn(msg, "job_type_id", id, "error", err)
		details := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, "Field '"+f.Field+"' "+f.Message+".")
		}
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Details: details})
	case errors.Is(err, domain.ErrJobTypeAlreadyExists):
		h.logger.Warn(msg, "job_type_id", id, "error", err)
		writeError(w, http.StatusConflict, domain.ErrJobTypeAlreadyExists.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		h.logger.Error(msg, "job_type_id", id, "error", err)
		writeError(w, http.StatusConflict, domain.ErrConcurrencyConflict.Error())
	default:
		h.logger.Error(msg, "job_type_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
