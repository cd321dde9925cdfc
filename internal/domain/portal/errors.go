package portal

import "errors"

var (
	ErrValidation              = errors.New("validation failed")
	ErrPartnerNotFound         = errors.New("partner not found")
	ErrPartnerExists           = errors.New("partner already exists")
	ErrPartnerHasRequests      = errors.New("partner has requests")
	ErrPartnerReferenceInvalid = errors.New("referenced partner does not exist")
	ErrRequestNotFound         = errors.New("request not found")
	ErrStorageUnavailable      = errors.New("storage unavailable")
)
