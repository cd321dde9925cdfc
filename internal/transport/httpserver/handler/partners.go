package handler

import (
	"net/http"

	portaldomain "partner-portal/internal/domain/portal"

	"github.com/go-chi/chi/v5"
)

type partnerRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type partnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (req partnerRequest) toInput() portaldomain.PartnerInput {
	return portaldomain.PartnerInput{
		ID:    req.ID,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
}

func toPartnerResponse(partner *portaldomain.Partner) partnerResponse {
	return partnerResponse{
		ID:    partner.ID,
		Name:  partner.Name,
		Email: partner.Email,
		Phone: partner.Phone,
	}
}

func (h *Handlers) GetPartner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	partner, err := h.Portal.GetPartner(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "partners.get", err, "partner_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toPartnerResponse(partner))
}

func (h *Handlers) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.Portal.ListPartners(r.Context())
	if err != nil {
		h.writeServiceError(w, "partners.list", err)
		return
	}

	response := make([]partnerResponse, 0, len(partners))
	for i := range partners {
		response = append(response, toPartnerResponse(&partners[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	partner, err := h.Portal.CreatePartner(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, "partners.create", err, "partner_id", req.ID)
		return
	}

	h.log.Info("partners.create: created", "partner_id", partner.ID)
	writeJSON(w, http.StatusCreated, toPartnerResponse(partner))
}

func (h *Handlers) UpdatePartner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req partnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	partner, err := h.Portal.UpdatePartner(r.Context(), id, req.toInput())
	if err != nil {
		h.writeServiceError(w, "partners.update", err, "partner_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toPartnerResponse(partner))
}

func (h *Handlers) DeletePartner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Portal.DeletePartner(r.Context(), id); err != nil {
		h.writeServiceError(w, "partners.delete", err, "partner_id", id)
		return
	}

	h.log.Info("partners.delete: deleted", "partner_id", id)
	w.WriteHeader(http.StatusNoContent)
}
