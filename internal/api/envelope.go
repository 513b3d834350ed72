package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the current response envelope version. Clients use it
// to detect contract changes without parsing the rest of the body.
const EnvelopeVersion = 1

// APIEnvelope wraps every successful response body, and error responses
// that carry only a message.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Error message when success is false"`
}

// APIErrorEnvelope wraps error responses that carry a machine-readable code
// and structured details.
type APIErrorEnvelope struct { //nolint:revive
	Version int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Always false"`
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Structured error details"`
}

// EnvelopeTransformer wraps all response bodies in a versioned envelope.
// Registered on the huma config so handlers return bare payloads.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Details != nil {
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Success: false,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
		}, nil
	}

	if err, ok := v.(error); ok {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
