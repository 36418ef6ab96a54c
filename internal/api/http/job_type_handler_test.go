package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bulletin-board/internal/domain"
	"bulletin-board/internal/infra/memory"
	"bulletin-board/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conflictingRepository always reports a conflict on Update.
type conflictingRepository struct {
	domain.JobTypeRepository
}

func (r conflictingRepository) Update(context.Context, *domain.JobType) error {
	return domain.ErrConcurrencyConflict
}

func newTestRouter(t *testing.T, repo domain.JobTypeRepository) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewJobTypeHandler(usecase.NewJobTypeService(repo, logger), logger)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func seededRepository(t *testing.T) domain.JobTypeRepository {
	t.Helper()
	repo := memory.NewJobTypeRepository()
	require.NoError(t, repo.Create(context.Background(), &domain.JobType{ID: "A1", Name: "Plumber"}))
	return repo
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListJobTypes(t *testing.T) {
	h := newTestRouter(t, seededRepository(t))

	rec := do(t, h, http.MethodGet, "/job-types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []JobTypeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []JobTypeResponse{{ID: "A1", Name: "Plumber"}}, got)
}

func TestListJobTypesEmptyIsArray(t *testing.T) {
	h := newTestRouter(t, memory.NewJobTypeRepository())

	rec := do(t, h, http.MethodGet, "/job-types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetJobType(t *testing.T) {
	h := newTestRouter(t, seededRepository(t))

	rec := do(t, h, http.MethodGet, "/job-types/A1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got JobTypeDetailsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, JobTypeDetailsResponse{ID: "A1", Name: "Plumber", Version: 1}, got)

	rec = do(t, h, http.MethodGet, "/job-types/ZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJobType(t *testing.T) {
	repo := memory.NewJobTypeRepository()
	h := newTestRouter(t, repo)

	rec := do(t, h, http.MethodPost, "/job-types", `{"name":"Electrician"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got JobTypeDetailsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Electrician", got.Name)
	assert.Equal(t, "/job-types/"+got.ID, rec.Header().Get("Location"))

	stored, err := repo.Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Electrician", stored.Name)
}

func TestCreateJobTypeValidation(t *testing.T) {
	h := newTestRouter(t, memory.NewJobTypeRepository())

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{}`},
		{"blank name", `{"name":"   "}`},
		{"too long", `{"name":"` + strings.Repeat("x", 129) + `"}`},
		{"malformed", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/job-types", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateJobTypeTrimsBeforeLengthCheck(t *testing.T) {
	repo := memory.NewJobTypeRepository()
	h := newTestRouter(t, repo)
	name := strings.Repeat("x", domain.MaxJobTypeNameLength)

	rec := do(t, h, http.MethodPost, "/job-types", `{"name":"  `+name+`  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got JobTypeDetailsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, name, got.Name)
}

func TestEditJobTypeTrimsBeforeLengthCheck(t *testing.T) {
	repo := seededRepository(t)
	h := newTestRouter(t, repo)
	name := strings.Repeat("y", domain.MaxJobTypeNameLength)

	rec := do(t, h, http.MethodPut, "/job-types/A1", `{"name":" `+name+` "}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	stored, err := repo.Get(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, name, stored.Name)
}

func TestEditJobType(t *testing.T) {
	repo := seededRepository(t)
	h := newTestRouter(t, repo)

	rec := do(t, h, http.MethodPut, "/job-types/A1", `{"name":"Electrician"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	stored, err := repo.Get(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "Electrician", stored.Name)
}

func TestEditJobTypeNotFound(t *testing.T) {
	h := newTestRouter(t, seededRepository(t))

	rec := do(t, h, http.MethodPut, "/job-types/ZZ", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.ErrJobTypeNotFound.Error(), body.Error)
}

func TestEditJobTypeConflict(t *testing.T) {
	h := newTestRouter(t, conflictingRepository{seededRepository(t)})

	rec := do(t, h, http.MethodPut, "/job-types/A1", `{"name":"Electrician"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEditJobTypeValidation(t *testing.T) {
	h := newTestRouter(t, seededRepository(t))

	rec := do(t, h, http.MethodPut, "/job-types/A1", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Validation failed", body.Error)
	assert.NotEmpty(t, body.Details)
}

func TestDeleteJobType(t *testing.T) {
	repo := seededRepository(t)
	h := newTestRouter(t, repo)

	rec := do(t, h, http.MethodDelete, "/job-types/A1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	exists, err := repo.Exists(context.Background(), "A1")
	require.NoError(t, err)
	assert.False(t, exists)

	rec = do(t, h, http.MethodDelete, "/job-types/A1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMappers(t *testing.T) {
	jt := &domain.JobType{ID: "A1", Name: "Plumber", Version: 7}
	assert.Equal(t, JobTypeResponse{ID: "A1", Name: "Plumber"}, NewJobTypeResponse(jt))
	assert.Equal(t, JobTypeDetailsResponse{ID: "A1", Name: "Plumber", Version: 7}, NewJobTypeDetailsResponse(jt))
	assert.NotNil(t, NewJobTypeResponses(nil))
}
