package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("load subject 7: %w", NotFoundf(ErrSubjectNotFound, "subject %d does not exist", 7))

	assert.True(t, errors.Is(err, ErrSubjectNotFound))
	assert.False(t, errors.Is(err, ErrStudentNotFound))
	assert.Contains(t, err.Error(), "subject 7 does not exist")

	var custom *CustomError
	assert.True(t, errors.As(err, &custom))
}

func TestCustomErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "marks are locked after approval", NewCustomError(ErrMarksLocked, "").Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())

	withDetails := NewCustomError(ErrMarksLocked, "approved").WithDetails(map[string]interface{}{"locked": 2})
	assert.Equal(t, 2, withDetails.Details["locked"])
}

func TestShorthands(t *testing.T) {
	assert.ErrorIs(t, NewForbiddenError("not your subject"), ErrPermissionDenied)
	assert.ErrorIs(t, NewBadRequestError("cieNumber must be 1..5"), ErrBadRequest)
	assert.Equal(t, "not your subject", NewForbiddenError("not your subject").Error())
}
