package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/validation"
)

type addBookRequest struct {
	Title  string `json:"title" validate:"required,booktext,max=200"`
	Author string `json:"author" validate:"required,booktext,max=200"`
	Genre  string `json:"genre,omitempty" validate:"omitempty,booktext,max=100"`
}

type userRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Role     string `json:"role" validate:"required,oneof=admin student"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(addBookRequest{Title: "Emma", Author: "Jane Austen"}))
	assert.NoError(t, v.Validate(userRequest{Username: "jane.doe", Password: "password123", Role: "student"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
		wantMsg   string
	}{
		{"missing title", addBookRequest{Author: "A"}, "title", "is required"},
		{"blank author", addBookRequest{Title: "T", Author: "   "}, "author", "must not be blank"},
		{"control char in genre", addBookRequest{Title: "T", Author: "A", Genre: "Sci\x00Fi"}, "genre", "control characters"},
		{"bad username", userRequest{Username: "-x", Password: "password123", Role: "admin"}, "username", "letters, digits"},
		{"short password", userRequest{Username: "jane", Password: "short", Role: "admin"}, "password", "at least 8"},
		{"unknown role", userRequest{Username: "jane", Password: "password123", Role: "owner"}, "role", "one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details[tt.wantField], tt.wantMsg)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("username", "alice", "required,username"))

	err := v.Var("username", "a b", "required,username")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
