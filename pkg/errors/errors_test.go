package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	cause := stdErrors.New("connection reset")
	appErr := FromError(cause)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, cause)
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("create post: %w", ErrPinLimitExceeded)
	assert.Same(t, ErrPinLimitExceeded, FromError(wrapped))
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesOriginalByCode(t *testing.T) {
	clone := Clone(ErrUploadRejected, "file malware.exe has a disallowed extension")

	assert.Equal(t, "file malware.exe has a disallowed extension", clone.Message)
	assert.Equal(t, "upload rejected", ErrUploadRejected.Message)
	assert.ErrorIs(t, clone, ErrUploadRejected)
	assert.NotErrorIs(t, clone, ErrValidation)
}
