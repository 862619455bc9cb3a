package model

import (
	"time"

	"github.com/google/uuid"
)

type InfoRequestStatus string

const (
	InfoRequestStatusPending   InfoRequestStatus = "PENDING"
	InfoRequestStatusResponded InfoRequestStatus = "RESPONDED"
	InfoRequestStatusClosed    InfoRequestStatus = "CLOSED"
)

type InfoRequest struct {
	ID             uuid.UUID
	ApplicationID  uuid.UUID
	Status         InfoRequestStatus
	Message        string
	RequestedItems []string
	CreatedAt      time.Time
	Responses      []InfoRequestResponse
}

// InfoRequestResponse entries are append-only and ordered by creation time.
type InfoRequestResponse struct {
	ID            uuid.UUID
	InfoRequestID uuid.UUID
	AuthorRole    Role
	AuthorName    string
	Message       string
	CreatedAt     time.Time
}
