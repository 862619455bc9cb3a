package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/konelease/leasing-workflow/internal/model"
)

// Store-level sentinels. Implementations return these from conditional writes
// so the orchestrator can translate them into the caller-facing taxonomy.
var (
	// ErrStaleStatus means a conditional update matched zero rows: the entity
	// moved on between the guard check and the write.
	ErrStaleStatus = errors.New("status changed concurrently")
	// ErrDuplicateActive means a second non-terminal offer or contract was
	// attempted for the same application.
	ErrDuplicateActive = errors.New("active entity already exists")
	// ErrDuplicateNumber means a generated reference or contract number
	// collided with an existing one. The orchestrator regenerates and retries.
	ErrDuplicateNumber = errors.New("number already in use")
)

// UpdateOfferStatusParams carries one offer transition and the application
// status change that must commit with it. Both From fields are predicates:
// the write applies only while they still hold.
type UpdateOfferStatusParams struct {
	OfferID     uuid.UUID
	From        model.OfferStatus
	To          model.OfferStatus
	SentAt      *time.Time
	RespondedAt *time.Time

	ApplicationID   uuid.UUID
	ApplicationFrom model.ApplicationStatus
	ApplicationTo   model.ApplicationStatus
}

type UpdateContractStatusParams struct {
	ContractID        uuid.UUID
	From              model.ContractStatus
	To                model.ContractStatus
	SentAt            *time.Time
	SignedAt          *time.Time
	SignerName        string
	SignaturePlace    string
	SignedDocumentRef string

	ApplicationID   uuid.UUID
	ApplicationFrom model.ApplicationStatus
	ApplicationTo   model.ApplicationStatus
}

type RespondInfoRequestParams struct {
	InfoRequestID uuid.UUID
	Response      model.InfoRequestResponse

	// ApplicationReturn is applied to the application when this response
	// settles the last pending request of the detour.
	ApplicationID     uuid.UUID
	ApplicationFrom   model.ApplicationStatus
	ApplicationReturn model.ApplicationStatus
}

// Store is the persistence boundary of the orchestrator. Cross-entity writes
// are composite methods so that the child entity and the parent application
// commit together or not at all.
type Store interface {
	CreateApplication(ctx context.Context, app model.Application) (*model.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ListApplications(ctx context.Context, customerID *uuid.UUID, status *model.ApplicationStatus) ([]model.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus) error
	UpdateApplicationDetails(ctx context.Context, app model.Application) (*model.Application, error)

	CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	ListOffers(ctx context.Context, applicationID uuid.UUID) ([]model.Offer, error)
	GetAcceptedOffer(ctx context.Context, applicationID uuid.UUID) (*model.Offer, error)
	HasOffers(ctx context.Context, applicationID uuid.UUID) (bool, error)
	UpdateOfferStatus(ctx context.Context, params UpdateOfferStatusParams) error

	CreateContract(ctx context.Context, contract model.Contract) (*model.Contract, error)
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ListContracts(ctx context.Context, applicationID uuid.UUID) ([]model.Contract, error)
	UpdateContractStatus(ctx context.Context, params UpdateContractStatusParams) error
	SetContractDocument(ctx context.Context, id uuid.UUID, documentRef string) error

	CreateInfoRequest(ctx context.Context, req model.InfoRequest, appFrom, appTo model.ApplicationStatus) (*model.InfoRequest, error)
	GetInfoRequest(ctx context.Context, id uuid.UUID) (*model.InfoRequest, error)
	ListInfoRequests(ctx context.Context, applicationID uuid.UUID) ([]model.InfoRequest, error)
	RespondInfoRequest(ctx context.Context, params RespondInfoRequestParams) (*model.InfoRequest, error)
	CloseInfoRequest(ctx context.Context, id uuid.UUID) error

	PipelineRows(ctx context.Context) ([]model.Application, error)
}

// Notifier is the fire-and-forget side-effect contract. Implementations must
// tolerate duplicate delivery and never block the calling command.
// recipientUserID is uuid.Nil for role-wide staff notifications.
type Notifier interface {
	Notify(recipient model.Role, recipientUserID, applicationID uuid.UUID, kind model.NotificationKind, message string)
}

// DocumentStore is the external document collaborator boundary.
type DocumentStore interface {
	Store(ctx context.Context, content []byte) (string, error)
	Verify(ctx context.Context, documentRef string) (bool, error)
}

// ContractRenderer produces the printable contract document.
type ContractRenderer interface {
	Render(contract model.Contract, app model.Application) ([]byte, error)
}

// ReportGenerator produces the admin pipeline export.
type ReportGenerator interface {
	Generate(report model.PipelineReport) ([]byte, error)
}
