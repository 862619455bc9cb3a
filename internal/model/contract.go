package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "DRAFT"
	ContractStatusSent      ContractStatus = "SENT"
	ContractStatusSigned    ContractStatus = "SIGNED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

func (s ContractStatus) Terminal() bool {
	return s == ContractStatusSigned || s == ContractStatusCancelled
}

// Party is the identity snapshot frozen into a contract at creation time.
// Later edits to company data never reach an existing contract.
type Party struct {
	CompanyName   string
	BusinessID    string
	StreetAddress string
	PostalCode    string
	City          string
	ContactPerson string
	Email         string
	Phone         string
}

type Contract struct {
	ID                uuid.UUID
	ApplicationID     uuid.UUID
	OfferID           uuid.UUID
	ContractNumber    string
	Status            ContractStatus
	Lessee            Party
	Lessor            Party
	MonthlyRent       float64
	LeasePeriodMonths int
	ResidualValue     float64
	AdvancePayment    float64
	ProcessingFee     float64
	ArrangementFee    float64
	DocumentRef       string
	SignedDocumentRef string
	SignerName        string
	SignaturePlace    string
	CreatedAt         time.Time
	SentAt            *time.Time
	SignedAt          *time.Time
}
