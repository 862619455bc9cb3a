package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies the workflow event behind a notification.
type NotificationKind string

const (
	NotificationApplicationSubmitted NotificationKind = "APPLICATION_SUBMITTED"
	NotificationInfoRequested        NotificationKind = "INFO_REQUESTED"
	NotificationInfoProvided         NotificationKind = "INFO_PROVIDED"
	NotificationOfferPendingAdmin    NotificationKind = "OFFER_PENDING_ADMIN"
	NotificationOfferSent            NotificationKind = "OFFER_SENT"
	NotificationOfferAccepted        NotificationKind = "OFFER_ACCEPTED"
	NotificationOfferRejected        NotificationKind = "OFFER_REJECTED"
	NotificationContractSent         NotificationKind = "CONTRACT_SENT"
	NotificationContractSigned       NotificationKind = "CONTRACT_SIGNED"
	NotificationContractCancelled    NotificationKind = "CONTRACT_CANCELLED"
)

type Notification struct {
	ID            uuid.UUID
	RecipientRole Role
	// RecipientUserID pins customer-bound notifications to one user.
	// Staff notifications are role-wide and carry uuid.Nil.
	RecipientUserID uuid.UUID
	ApplicationID   uuid.UUID
	Kind          NotificationKind
	Message       string
	IsRead        bool
	CreatedAt     time.Time
	ReadAt        *time.Time
}
