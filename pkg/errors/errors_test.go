package errors

import (
	"database/sql"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := fmt.Errorf("load: %w", Clone(ErrNotFound, "appointment not found"))
	appErr := FromError(err)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "appointment not found", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.True(t, stdErrors.Is(appErr, sql.ErrConnDone))
}

func TestClonesMatchTemplateByCode(t *testing.T) {
	assert.True(t, stdErrors.Is(Clone(ErrForbidden, "not your appointment"), ErrForbidden))
	assert.False(t, stdErrors.Is(Clone(ErrForbidden, ""), ErrNotFound))
	assert.Nil(t, FromError(nil))
}

func TestHelpersKeepKinds(t *testing.T) {
	cause := stdErrors.New("boom")

	invalid := Invalid(cause, "invalid appointment payload")
	assert.Equal(t, ErrValidation.Code, invalid.Code)
	assert.Equal(t, http.StatusBadRequest, invalid.Status)
	assert.ErrorIs(t, invalid, cause)

	internal := Internal(cause, "failed to load business")
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "failed to load business: boom", internal.Error())

	hours := Clonef(ErrInvalidHours, "closing time must be after opening time for %s", "Tuesday")
	assert.Equal(t, ErrInvalidHours.Code, hours.Code)
	assert.Equal(t, "closing time must be after opening time for Tuesday", hours.Message)
}
