package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationType string

const (
	ApplicationTypeLeasing     ApplicationType = "LEASING"
	ApplicationTypeRefinancing ApplicationType = "REFINANCING"
)

type ApplicationStatus string

const (
	ApplicationStatusSubmitted            ApplicationStatus = "SUBMITTED"
	ApplicationStatusSubmittedToFinancier ApplicationStatus = "SUBMITTED_TO_FINANCIER"
	ApplicationStatusInfoRequested        ApplicationStatus = "INFO_REQUESTED"
	ApplicationStatusOfferSent            ApplicationStatus = "OFFER_SENT"
	ApplicationStatusOfferAccepted        ApplicationStatus = "OFFER_ACCEPTED"
	ApplicationStatusContractSent         ApplicationStatus = "CONTRACT_SENT"
	ApplicationStatusSigned               ApplicationStatus = "SIGNED"
	ApplicationStatusClosed               ApplicationStatus = "CLOSED"
)

// Terminal reports whether the application can never transition again.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusClosed
}

type Application struct {
	ID                   uuid.UUID
	ReferenceNumber      string
	ApplicationType      ApplicationType
	Status               ApplicationStatus
	CustomerID           uuid.UUID
	CompanyName          string
	BusinessID           string
	ContactPerson        string
	ContactEmail         string
	ContactPhone         string
	StreetAddress        string
	PostalCode           string
	City                 string
	EquipmentDescription string
	EquipmentSupplier    string
	EquipmentPrice       float64
	RequestedTermMonths  *int
	AdditionalInfo       string
	CreatedAt            time.Time
	SubmittedAt          *time.Time
}

// FinancedAmount is the equipment price less the upfront payment of an offer.
func (a *Application) FinancedAmount(upfrontPayment float64) float64 {
	return a.EquipmentPrice - upfrontPayment
}
