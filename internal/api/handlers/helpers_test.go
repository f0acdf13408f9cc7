package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/utils/response"
	"github.com/stretchr/testify/require"
)

// decodeResponse unmarshals the envelope and, when data is non-nil, the
// payload inside it.
func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder, data any) response.APIResponse {
	t.Helper()

	var raw struct {
		response.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))

	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}

	return raw.APIResponse
}
