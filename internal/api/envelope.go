package api

import (
	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in response.Envelope.
// Error bodies carry code, message and details.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if len(status) == 0 || status[0] < '4' {
		return response.OK(v), nil
	}

	switch e := v.(type) {
	case *APIError:
		return response.Fail(e.Code, e.Message, e.Details), nil
	case *domainerrors.Error:
		return response.Fail(string(e.Code), e.Message, e.Details), nil
	case error:
		return response.Fail("", e.Error(), nil), nil
	default:
		return response.Envelope{Version: response.Version, Data: v}, nil
	}
}
