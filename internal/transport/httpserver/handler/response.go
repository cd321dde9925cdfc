package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	portaldomain "partner-portal/internal/domain/portal"
)

const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after json body")

type errorBody struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Errors  []fieldErrorBody `json:"errors,omitempty"`
}

type fieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, verr *portaldomain.ValidationError) {
	fields := make([]fieldErrorBody, 0, len(verr.Fields))
	for _, field := range verr.Fields {
		fields = append(fields, fieldErrorBody{Field: field.Field, Message: field.Message})
	}
	writeJSON(w, http.StatusBadRequest, errorBody{
		Code:    "validation_error",
		Message: "validation failed",
		Errors:  fields,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// writeServiceError maps a service error to its status code. Expected
// failures are logged as business errors, the rest as internal errors and
// reported without detail.
func (h *Handlers) writeServiceError(w http.ResponseWriter, op string, err error, args ...any) {
	var verr *portaldomain.ValidationError
	switch {
	case errors.As(err, &verr):
		h.log.BusinessError(op+": validation failed", err, args...)
		writeValidationError(w, verr)
	case errors.Is(err, portaldomain.ErrPartnerNotFound):
		h.log.BusinessError(op+": partner not found", err, args...)
		writeError(w, http.StatusNotFound, "partner_not_found", "partner not found")
	case errors.Is(err, portaldomain.ErrPartnerReferenceInvalid):
		h.log.BusinessError(op+": referenced partner not found", err, args...)
		writeError(w, http.StatusNotFound, "partner_not_found", "partner not found")
	case errors.Is(err, portaldomain.ErrRequestNotFound):
		h.log.BusinessError(op+": request not found", err, args...)
		writeError(w, http.StatusNotFound, "request_not_found", "request not found")
	case errors.Is(err, portaldomain.ErrPartnerExists):
		h.log.BusinessError(op+": partner exists", err, args...)
		writeError(w, http.StatusConflict, "partner_exists", "partner id already exists")
	case errors.Is(err, portaldomain.ErrPartnerHasRequests):
		h.log.BusinessError(op+": partner has requests", err, args...)
		writeError(w, http.StatusConflict, "partner_has_requests", "partner has requests and cannot be deleted")
	case errors.Is(err, portaldomain.ErrStorageUnavailable):
		h.log.InternalError(op+": storage unavailable", err, args...)
		writeError(w, http.StatusInternalServerError, "storage_unavailable", "storage unavailable")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeInvalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
}
