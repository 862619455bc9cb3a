package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferStatusDraft        OfferStatus = "DRAFT"
	OfferStatusPendingAdmin OfferStatus = "PENDING_ADMIN"
	OfferStatusSent         OfferStatus = "SENT"
	OfferStatusAccepted     OfferStatus = "ACCEPTED"
	OfferStatusRejected     OfferStatus = "REJECTED"
)

func (s OfferStatus) Terminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected
}

type Offer struct {
	ID               uuid.UUID
	ApplicationID    uuid.UUID
	Status           OfferStatus
	MonthlyPayment   float64
	TermMonths       int
	UpfrontPayment   float64
	ResidualValue    float64
	OpeningFee       float64
	InvoiceFee       float64
	IncludedServices string
	NotesToCustomer  string
	InternalNotes    string
	CreatedAt        time.Time
	SentAt           *time.Time
	RespondedAt      *time.Time
}

// ResidualPercentage presents the stored absolute residual value as a share of
// the equipment price, rounded to one decimal. Zero price yields zero.
func (o *Offer) ResidualPercentage(equipmentPrice float64) float64 {
	if equipmentPrice <= 0 {
		return 0
	}
	return math.Round(o.ResidualValue/equipmentPrice*1000) / 10
}
