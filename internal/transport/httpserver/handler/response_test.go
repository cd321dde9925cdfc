package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	portaldomain "partner-portal/internal/domain/portal"
	"partner-portal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	h := New(nil, "memory", logger.NewNop())

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&portaldomain.ValidationError{Fields: []portaldomain.FieldError{{Field: "id", Message: "is required"}}}, http.StatusBadRequest, "validation_error"},
		{portaldomain.ErrPartnerNotFound, http.StatusNotFound, "partner_not_found"},
		{portaldomain.ErrPartnerReferenceInvalid, http.StatusNotFound, "partner_not_found"},
		{portaldomain.ErrRequestNotFound, http.StatusNotFound, "request_not_found"},
		{portaldomain.ErrPartnerExists, http.StatusConflict, "partner_exists"},
		{portaldomain.ErrPartnerHasRequests, http.StatusConflict, "partner_has_requests"},
		{fmt.Errorf("list partners: %w", portaldomain.ErrStorageUnavailable), http.StatusInternalServerError, "storage_unavailable"},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.writeServiceError(rec, "test.op", tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body["code"])
		assert.NotContains(t, rec.Body.String(), "pq:")
		_, hasFields := body["errors"]
		assert.Equal(t, tc.code == "validation_error", hasFields)
	}
}

func TestHealthReportsStorage(t *testing.T) {
	h := New(nil, "sqlite", logger.NewNop())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"sqlite"}`, rec.Body.String())
}
