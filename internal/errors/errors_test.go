package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Unavailable("1984")

	assert.True(t, Is(err, ErrUnavailable))
	assert.False(t, Is(err, ErrAvailable))
	assert.Equal(t, `"1984" is currently unavailable.`, err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	wrapped := fmt.Errorf("borrow: %w", Available("Moby Dick"))

	assert.True(t, Is(wrapped, ErrAvailable))

	var domainErr *Error
	assert.True(t, As(wrapped, &domainErr))
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus())
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeUnavailable, http.StatusConflict},
		{CodeAvailable, http.StatusConflict},
		{CodeOutOfRange, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestOutOfRange_Details(t *testing.T) {
	err := OutOfRange(7, 4)

	assert.Equal(t, CodeOutOfRange, err.Code)
	assert.Equal(t, map[string]int{"index": 7, "size": 4}, err.Details)
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeInternal, "persist catalog")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "persist catalog: disk full", err.Error())
}
