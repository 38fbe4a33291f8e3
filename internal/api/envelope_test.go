package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/http/response"
)

func TestEnvelopeTransformer_WrapsSuccess(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"title": "Emma"})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":true,"data":{"title":"Emma"}}`, string(raw))
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":true}`, string(raw))
}

func TestEnvelopeTransformer_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want response.Envelope
	}{
		{
			name: "api error",
			in:   &APIError{status: http.StatusForbidden, Code: "FORBIDDEN", Message: "Admin access required"},
			want: response.Fail("FORBIDDEN", "Admin access required", nil),
		},
		{
			name: "domain error",
			in:   domainerrors.Unavailable("1984"),
			want: response.Fail("UNAVAILABLE", `"1984" is currently unavailable.`, nil),
		},
		{
			name: "plain error",
			in:   errors.New("boom"),
			want: response.Fail("", "boom", nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnvelopeTransformer(nil, "409", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegisterErrorHandler_MapsDomainErrors(t *testing.T) {
	RegisterErrorHandler()

	t.Run("domain error keeps its status", func(t *testing.T) {
		se := huma.NewError(http.StatusInternalServerError, "wrapped", domainerrors.OutOfRange(9, 4))
		apiErr, ok := se.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, "OUT_OF_RANGE", apiErr.Code)
		assert.Equal(t, map[string]int{"index": 9, "size": 4}, apiErr.Details)
	})

	t.Run("validation failures list details", func(t *testing.T) {
		se := huma.NewError(http.StatusUnprocessableEntity, "validation failed", errors.New("expected required property author"))
		apiErr, ok := se.(*APIError)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION", apiErr.Code)
		assert.Equal(t, []string{"expected required property author"}, apiErr.Details)
	})

	t.Run("other statuses have no details", func(t *testing.T) {
		se := huma.NewError(http.StatusUnauthorized, "Authentication required")
		apiErr, ok := se.(*APIError)
		require.True(t, ok)
		assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
		assert.Nil(t, apiErr.Details)
	})
}
