package handler

import (
	"encoding/json"
	"net/http"
	"time"

	portaldomain "partner-portal/internal/domain/portal"

	"github.com/go-chi/chi/v5"
)

// requestBody accepts the read-only fields a client may echo back (id,
// createdAt, partnerName) so edit forms round-trip; their values are ignored.
type requestBody struct {
	ID                json.RawMessage `json:"id"`
	CreatedAt         json.RawMessage `json:"createdAt"`
	PartnerName       json.RawMessage `json:"partnerName"`
	PartnerID         string          `json:"partnerId"`
	PreferredContact  string          `json:"preferredContact"`
	Urgency           string          `json:"urgency"`
	RequestType       string          `json:"requestType"`
	Description       string          `json:"description"`
	RecipientName     string          `json:"recipientName"`
	RecipientAddress  string          `json:"recipientAddress"`
	RecipientEmail    string          `json:"recipientEmail"`
	RecipientPhone    string          `json:"recipientPhone"`
	DescriptionOfNeed string          `json:"descriptionOfNeed"`

	ReferringCaseManager string `json:"referringCaseManager"`
	CaseManagerEmail     string `json:"caseManagerEmail"`
	CaseManagerPhone     string `json:"caseManagerPhone"`
}

type requestResponse struct {
	ID                string    `json:"id"`
	PartnerID         string    `json:"partnerId"`
	PartnerName       string    `json:"partnerName,omitempty"`
	PreferredContact  string    `json:"preferredContact"`
	Urgency           string    `json:"urgency"`
	RequestType       string    `json:"requestType"`
	Description       string    `json:"description"`
	RecipientName     string    `json:"recipientName"`
	RecipientAddress  string    `json:"recipientAddress"`
	RecipientEmail    string    `json:"recipientEmail"`
	RecipientPhone    string    `json:"recipientPhone"`
	DescriptionOfNeed string    `json:"descriptionOfNeed"`
	CreatedAt         time.Time `json:"createdAt"`

	ReferringCaseManager string `json:"referringCaseManager"`
	CaseManagerEmail     string `json:"caseManagerEmail"`
	CaseManagerPhone     string `json:"caseManagerPhone"`
}

func (req requestBody) toInput() portaldomain.RequestInput {
	return portaldomain.RequestInput{
		PartnerID:         req.PartnerID,
		PreferredContact:  req.PreferredContact,
		Urgency:           req.Urgency,
		RequestType:       req.RequestType,
		Description:       req.Description,
		RecipientName:     req.RecipientName,
		RecipientAddress:  req.RecipientAddress,
		RecipientEmail:    req.RecipientEmail,
		RecipientPhone:    req.RecipientPhone,
		DescriptionOfNeed: req.DescriptionOfNeed,

		ReferringCaseManager: req.ReferringCaseManager,
		CaseManagerEmail:     req.CaseManagerEmail,
		CaseManagerPhone:     req.CaseManagerPhone,
	}
}

func toRequestResponse(request *portaldomain.RequestWithPartner) requestResponse {
	return requestResponse{
		ID:                request.ID,
		PartnerID:         request.PartnerID,
		PartnerName:       request.PartnerName,
		PreferredContact:  request.PreferredContact,
		Urgency:           request.Urgency,
		RequestType:       request.RequestType,
		Description:       request.Description,
		RecipientName:     request.RecipientName,
		RecipientAddress:  request.RecipientAddress,
		RecipientEmail:    request.RecipientEmail,
		RecipientPhone:    request.RecipientPhone,
		DescriptionOfNeed: request.DescriptionOfNeed,
		CreatedAt:         request.CreatedAt,

		ReferringCaseManager: request.ReferringCaseManager,
		CaseManagerEmail:     request.CaseManagerEmail,
		CaseManagerPhone:     request.CaseManagerPhone,
	}
}

func (h *Handlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Portal.ListRequests(r.Context())
	if err != nil {
		h.writeServiceError(w, "requests.list", err)
		return
	}

	response := make([]requestResponse, 0, len(requests))
	for i := range requests {
		response = append(response, toRequestResponse(&requests[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	request, err := h.Portal.GetRequest(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "requests.get", err, "request_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(request))
}

func (h *Handlers) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req requestBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	request, err := h.Portal.CreateRequest(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, "requests.create", err, "partner_id", req.PartnerID)
		return
	}

	h.log.Info("requests.create: created", "request_id", request.ID, "partner_id", request.PartnerID, "urgency", request.Urgency)
	writeJSON(w, http.StatusCreated, toRequestResponse(request))
}

func (h *Handlers) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req requestBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	request, err := h.Portal.UpdateRequest(r.Context(), id, req.toInput())
	if err != nil {
		h.writeServiceError(w, "requests.update", err, "request_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(request))
}

func (h *Handlers) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Portal.DeleteRequest(r.Context(), id); err != nil {
		h.writeServiceError(w, "requests.delete", err, "request_id", id)
		return
	}

	h.log.Info("requests.delete: deleted", "request_id", id)
	w.WriteHeader(http.StatusNoContent)
}
