package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/config"
	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/workflow"
)

// WorkflowService sequences guard checks across entities and applies the
// resulting writes through the store. Side effects are dispatched only after
// the store write committed.
type WorkflowService struct {
	store     Store
	notifier  Notifier
	documents DocumentStore
	renderer  ContractRenderer
	reports   ReportGenerator
	cfg       *config.Config
	log       zerolog.Logger
	now       func() time.Time
}

func NewWorkflowService(
	store Store,
	notifier Notifier,
	documents DocumentStore,
	renderer ContractRenderer,
	reports ReportGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *WorkflowService {
	return &WorkflowService{
		store:     store,
		notifier:  notifier,
		documents: documents,
		renderer:  renderer,
		reports:   reports,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

type SubmitApplicationInput struct {
	ApplicationType      model.ApplicationType
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
	Principal            model.Principal
}

// SubmitApplication records a new financing request. Routing to the financier
// is a system transition, not a caller one; it is resolved before the insert
// so the application is persisted already routed and a failure cannot strand
// a half-routed record.
func (s *WorkflowService) SubmitApplication(ctx context.Context, input SubmitApplicationInput) (*model.Application, error) {
	if !input.Principal.IsCustomer() {
		return nil, fmt.Errorf("%w: only customers submit applications", ErrInvalidTransition)
	}
	if err := validateApplicationInput(input); err != nil {
		return nil, err
	}

	decision, err := workflow.DecideApplication(model.ApplicationStatusSubmitted, workflow.ApplicationEventRoute, model.RoleSystem)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := s.now()
	app := model.Application{
		ID:                   uuid.New(),
		ReferenceNumber:      generateReferenceNumber(input.ApplicationType, now),
		ApplicationType:      input.ApplicationType,
		Status:               decision.Next,
		CustomerID:           input.Principal.UserID,
		CompanyName:          strings.TrimSpace(input.CompanyName),
		BusinessID:           strings.TrimSpace(input.BusinessID),
		ContactPerson:        strings.TrimSpace(input.ContactPerson),
		ContactEmail:         strings.TrimSpace(input.ContactEmail),
		ContactPhone:         strings.TrimSpace(input.ContactPhone),
		StreetAddress:        input.StreetAddress,
		PostalCode:           input.PostalCode,
		City:                 input.City,
		EquipmentDescription: strings.TrimSpace(input.EquipmentDescription),
		EquipmentSupplier:    input.EquipmentSupplier,
		EquipmentPrice:       input.EquipmentPrice,
		RequestedTermMonths:  input.RequestedTermMonths,
		AdditionalInfo:       input.AdditionalInfo,
		CreatedAt:            now,
		SubmittedAt:          &now,
	}

	var saved *model.Application
	for attempt := 0; ; attempt++ {
		saved, err = s.store.CreateApplication(ctx, app)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateNumber) && attempt < numberRetries {
			app.ReferenceNumber = generateReferenceNumber(input.ApplicationType, now)
			continue
		}
		return nil, s.mapStoreErr(err)
	}

	s.dispatch(saved, decision.Obligations)
	return saved, nil
}

type UpdateApplicationInput struct {
	ApplicationID        uuid.UUID
	EquipmentDescription *string
	EquipmentSupplier    *string
	EquipmentPrice       *float64
	ContactPerson        *string
	ContactEmail         *string
	ContactPhone         *string
	AdditionalInfo       *string
	Principal            model.Principal
}

// UpdateApplication lets the customer amend details while the financier has
// not yet moved the case forward. The equipment price freezes as soon as any
// offer references it.
func (s *WorkflowService) UpdateApplication(ctx context.Context, input UpdateApplicationInput) (*model.Application, error) {
	app, err := s.store.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if !input.Principal.IsCustomer() || app.CustomerID != input.Principal.UserID {
		return nil, fmt.Errorf("%w: application %s", ErrPermissionDenied, app.ReferenceNumber)
	}
	switch app.Status {
	case model.ApplicationStatusSubmitted,
		model.ApplicationStatusSubmittedToFinancier,
		model.ApplicationStatusInfoRequested:
	default:
		return nil, fmt.Errorf("%w: application in status %s is read-only", ErrInvalidTransition, app.Status)
	}

	if input.EquipmentPrice != nil && *input.EquipmentPrice != app.EquipmentPrice {
		hasOffers, err := s.store.HasOffers(ctx, app.ID)
		if err != nil {
			return nil, err
		}
		if hasOffers {
			return nil, fmt.Errorf("%w: equipment_price is frozen once an offer exists", ErrValidation)
		}
		if *input.EquipmentPrice <= 0 {
			return nil, fmt.Errorf("%w: equipment_price must be positive", ErrValidation)
		}
		app.EquipmentPrice = *input.EquipmentPrice
	}
	if input.EquipmentDescription != nil {
		if strings.TrimSpace(*input.EquipmentDescription) == "" {
			return nil, fmt.Errorf("%w: equipment_description is required", ErrValidation)
		}
		app.EquipmentDescription = *input.EquipmentDescription
	}
	if input.EquipmentSupplier != nil {
		app.EquipmentSupplier = *input.EquipmentSupplier
	}
	if input.ContactPerson != nil {
		app.ContactPerson = *input.ContactPerson
	}
	if input.ContactEmail != nil {
		app.ContactEmail = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		app.ContactPhone = *input.ContactPhone
	}
	if input.AdditionalInfo != nil {
		app.AdditionalInfo = *input.AdditionalInfo
	}

	updated, err := s.store.UpdateApplicationDetails(ctx, *app)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return updated, nil
}

// CloseApplication is the administrative terminal transition.
func (s *WorkflowService) CloseApplication(ctx context.Context, principal model.Principal, applicationID uuid.UUID) (*model.Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	decision, err := workflow.DecideApplication(app.Status, workflow.ApplicationEventClose, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if err := s.store.UpdateApplicationStatus(ctx, app.ID, app.Status, decision.Next); err != nil {
		return nil, s.mapStoreErr(err)
	}
	app.Status = decision.Next
	s.dispatch(app, decision.Obligations)
	return app, nil
}

func (s *WorkflowService) GetApplication(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if err := s.checkApplicationAccess(principal, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *WorkflowService) ListApplications(ctx context.Context, principal model.Principal, status *model.ApplicationStatus) ([]model.Application, error) {
	var customerID *uuid.UUID
	if principal.IsCustomer() {
		id := principal.UserID
		customerID = &id
	}
	return s.store.ListApplications(ctx, customerID, status)
}

func (s *WorkflowService) checkApplicationAccess(principal model.Principal, app *model.Application) error {
	if principal.IsCustomer() && app.CustomerID != principal.UserID {
		return fmt.Errorf("%w: application %s", ErrPermissionDenied, app.ReferenceNumber)
	}
	return nil
}

// dispatch hands the guard's obligations to the notifier. It runs after the
// commit, so a delivery failure can no longer affect the transition.
// Customer-bound obligations are addressed to the application's customer;
// financier and admin obligations stay role-wide.
func (s *WorkflowService) dispatch(app *model.Application, obligations []workflow.Obligation) {
	for _, o := range obligations {
		recipientUserID := uuid.Nil
		if o.Recipient == model.RoleCustomer {
			recipientUserID = app.CustomerID
		}
		s.notifier.Notify(o.Recipient, recipientUserID, app.ID, o.Kind, notificationMessage(o.Kind, app.ReferenceNumber))
	}
}

func (s *WorkflowService) mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, ErrStaleStatus):
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case errors.Is(err, ErrDuplicateActive):
		return fmt.Errorf("%w: %v", ErrConflictingEntity, err)
	default:
		return err
	}
}

func validateApplicationInput(input SubmitApplicationInput) error {
	switch input.ApplicationType {
	case model.ApplicationTypeLeasing, model.ApplicationTypeRefinancing:
	default:
		return fmt.Errorf("%w: unknown application_type %q", ErrValidation, input.ApplicationType)
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return fmt.Errorf("%w: company_name is required", ErrValidation)
	}
	if strings.TrimSpace(input.BusinessID) == "" {
		return fmt.Errorf("%w: business_id is required", ErrValidation)
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return fmt.Errorf("%w: contact_email is required", ErrValidation)
	}
	if strings.TrimSpace(input.EquipmentDescription) == "" {
		return fmt.Errorf("%w: equipment_description is required", ErrValidation)
	}
	if input.EquipmentPrice <= 0 {
		return fmt.Errorf("%w: equipment_price must be positive", ErrValidation)
	}
	if input.RequestedTermMonths != nil && *input.RequestedTermMonths <= 0 {
		return fmt.Errorf("%w: requested_term_months must be positive", ErrValidation)
	}
	return nil
}

func notificationMessage(kind model.NotificationKind, reference string) string {
	switch kind {
	case model.NotificationApplicationSubmitted:
		return fmt.Sprintf("Application %s has been submitted for review", reference)
	case model.NotificationInfoRequested:
		return fmt.Sprintf("Additional information is requested for application %s", reference)
	case model.NotificationInfoProvided:
		return fmt.Sprintf("The customer responded to an information request on application %s", reference)
	case model.NotificationOfferPendingAdmin:
		return fmt.Sprintf("An offer for application %s is waiting for approval", reference)
	case model.NotificationOfferSent:
		return fmt.Sprintf("You have received an offer for application %s", reference)
	case model.NotificationOfferAccepted:
		return fmt.Sprintf("The offer for application %s was accepted", reference)
	case model.NotificationOfferRejected:
		return fmt.Sprintf("The offer for application %s was rejected", reference)
	case model.NotificationContractSent:
		return fmt.Sprintf("The contract for application %s is ready for signing", reference)
	case model.NotificationContractSigned:
		return fmt.Sprintf("The contract for application %s has been signed", reference)
	case model.NotificationContractCancelled:
		return fmt.Sprintf("The contract for application %s was cancelled", reference)
	default:
		return fmt.Sprintf("Application %s was updated", reference)
	}
}
