package portal

import "time"

const PartnerIDLength = 4

const (
	ContactEmail = "email"
	ContactPhone = "phone"
	ContactBoth  = "both"
)

const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

const (
	RequestTypeSupport = "support"
	RequestTypeBilling = "billing"
	RequestTypeFeature = "feature"
	RequestTypeBug     = "bug"
	RequestTypeOther   = "other"
)

type Partner struct {
	ID    string `gorm:"type:varchar(4);primaryKey"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
	Phone string `gorm:"not null"`
}

type Request struct {
	ID                string    `gorm:"type:varchar(36);primaryKey"`
	PartnerID         string    `gorm:"type:varchar(4);not null;index"`
	PreferredContact  string    `gorm:"not null"`
	Urgency           string    `gorm:"not null"`
	RequestType       string    `gorm:"not null"`
	Description       string    `gorm:"not null"`
	// Who filed the request on the partner's behalf.
	ReferringCaseManager string `gorm:"not null"`
	CaseManagerEmail     string `gorm:"not null"`
	CaseManagerPhone     string `gorm:"not null"`
	RecipientName     string    `gorm:"not null"`
	RecipientAddress  string    `gorm:"not null"`
	RecipientEmail    string    `gorm:"not null"`
	RecipientPhone    string    `gorm:"not null"`
	DescriptionOfNeed string    `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null;index"`

	Partner *Partner `gorm:"foreignKey:PartnerID;references:ID;constraint:OnDelete:RESTRICT"`
}

// RequestWithPartner is a request plus the referenced partner's display name.
// The name is joined on read and never stored.
type RequestWithPartner struct {
	Request
	PartnerName string
}

type PartnerInput struct {
	ID    string
	Name  string
	Email string
	Phone string
}

type RequestInput struct {
	PartnerID         string
	PreferredContact  string
	Urgency           string
	RequestType       string
	Description       string
	RecipientName     string
	RecipientAddress  string
	RecipientEmail    string
	RecipientPhone    string
	DescriptionOfNeed string

	ReferringCaseManager string
	CaseManagerEmail     string
	CaseManagerPhone     string
}

type RequestCreatedEvent struct {
	Request Request
	Partner Partner
}
