package portal

import (
	"fmt"
	"net/mail"
	"strings"
)

var (
	preferredContacts = []string{ContactEmail, ContactPhone, ContactBoth}
	urgencies         = []string{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent}
	requestTypes      = []string{RequestTypeSupport, RequestTypeBilling, RequestTypeFeature, RequestTypeBug, RequestTypeOther}
)

type FieldError struct {
	Field   string
	Message string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Field+": "+field.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type fieldErrors []FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

func (f *fieldErrors) required(field, value string) {
	if value == "" {
		f.add(field, "is required")
	}
}

func (f *fieldErrors) email(field, value string, required bool) {
	if value == "" {
		if required {
			f.add(field, "is required")
		}
		return
	}
	if !isEmail(value) {
		f.add(field, "must be a valid email address")
	}
}

func (f *fieldErrors) oneOf(field, value string, allowed []string, required bool) {
	if value == "" {
		if required {
			f.add(field, "is required")
		}
		return
	}
	for _, candidate := range allowed {
		if value == candidate {
			return
		}
	}
	f.add(field, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidatePartnerID accepts exactly four ASCII digits.
func ValidatePartnerID(id string) error {
	var errs fieldErrors
	checkPartnerID(&errs, "id", id)
	return errs.err()
}

func checkPartnerID(errs *fieldErrors, field, id string) {
	if id == "" {
		errs.add(field, "is required")
		return
	}
	if !isPartnerID(id) {
		errs.add(field, fmt.Sprintf("must be exactly %d digits", PartnerIDLength))
	}
}

func isPartnerID(id string) bool {
	if len(id) != PartnerIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == value && strings.Contains(value[strings.LastIndex(value, "@")+1:], ".")
}

func ValidatePartner(input PartnerInput) (Partner, error) {
	partner := Partner{
		ID:    strings.TrimSpace(input.ID),
		Name:  strings.TrimSpace(input.Name),
		Email: strings.TrimSpace(input.Email),
		Phone: strings.TrimSpace(input.Phone),
	}

	var errs fieldErrors
	checkPartnerID(&errs, "id", partner.ID)
	errs.required("name", partner.Name)
	errs.email("email", partner.Email, true)
	errs.required("phone", partner.Phone)
	if err := errs.err(); err != nil {
		return Partner{}, err
	}
	return partner, nil
}

// ValidateRequest returns a request without ID or CreatedAt; those are
// assigned by the service.
func ValidateRequest(input RequestInput) (Request, error) {
	request := Request{
		PartnerID:         strings.TrimSpace(input.PartnerID),
		PreferredContact:  strings.TrimSpace(input.PreferredContact),
		Urgency:           strings.TrimSpace(input.Urgency),
		RequestType:       strings.TrimSpace(input.RequestType),
		Description:       strings.TrimSpace(input.Description),
		RecipientName:     strings.TrimSpace(input.RecipientName),
		RecipientAddress:  strings.TrimSpace(input.RecipientAddress),
		RecipientEmail:    strings.TrimSpace(input.RecipientEmail),
		RecipientPhone:    strings.TrimSpace(input.RecipientPhone),
		DescriptionOfNeed: strings.TrimSpace(input.DescriptionOfNeed),

		ReferringCaseManager: strings.TrimSpace(input.ReferringCaseManager),
		CaseManagerEmail:     strings.TrimSpace(input.CaseManagerEmail),
		CaseManagerPhone:     strings.TrimSpace(input.CaseManagerPhone),
	}

	var errs fieldErrors
	checkPartnerID(&errs, "partnerId", request.PartnerID)
	errs.oneOf("preferredContact", request.PreferredContact, preferredContacts, true)
	errs.oneOf("urgency", request.Urgency, urgencies, true)
	errs.oneOf("requestType", request.RequestType, requestTypes, false)
	errs.required("description", request.Description)
	errs.email("recipientEmail", request.RecipientEmail, false)
	errs.email("caseManagerEmail", request.CaseManagerEmail, false)
	if err := errs.err(); err != nil {
		return Request{}, err
	}
	return request, nil
}
