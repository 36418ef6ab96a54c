package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxJobTypeNameLength bounds the length of a job type name, in characters.
const MaxJobTypeNameLength = 128

// ErrInvalidJobType is wrapped by every ValidationError.
var ErrInvalidJobType = errors.New("invalid job type")

// JobType is a category of job offer on the bulletin board.
type JobType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Version is the store's optimistic-concurrency token. It is assigned by
	// the repository on every read and successful write.
	Version int64 `json:"version"`
}

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a job type fails shape constraints.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidJobType, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidJobType }

// Validate normalizes the name and checks the job type.
func (j *JobType) Validate() error {
	j.Name = strings.TrimSpace(j.Name)

	var fields []FieldError
	switch n := utf8.RuneCountInString(j.Name); {
	case n == 0:
		fields = append(fields, FieldError{Field: "name", Message: "cannot be empty"})
	case n > MaxJobTypeNameLength:
		fields = append(fields, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("cannot be longer than %d characters", MaxJobTypeNameLength),
		})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
