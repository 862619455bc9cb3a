package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/workflow"
)

type OfferTerms struct {
	MonthlyPayment   float64
	TermMonths       int
	UpfrontPayment   float64
	ResidualValue    float64
	OpeningFee       float64
	InvoiceFee       float64
	IncludedServices string
	NotesToCustomer  string
	InternalNotes    string
}

type CreateOfferInput struct {
	ApplicationID uuid.UUID
	Terms         OfferTerms
	Principal     model.Principal
}

func (s *WorkflowService) CreateOffer(ctx context.Context, input CreateOfferInput) (*model.Offer, error) {
	if !input.Principal.IsFinancier() {
		return nil, fmt.Errorf("%w: only the financier creates offers", ErrInvalidTransition)
	}

	app, err := s.store.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if !workflow.CanCreateOffer(app.Status) {
		return nil, fmt.Errorf("%w: application %s in status %s does not accept offers",
			ErrInvalidTransition, app.ReferenceNumber, app.Status)
	}
	if err := s.validateOfferTerms(input.Terms, app.EquipmentPrice); err != nil {
		return nil, err
	}

	offer := model.Offer{
		ID:               uuid.New(),
		ApplicationID:    app.ID,
		Status:           model.OfferStatusDraft,
		MonthlyPayment:   input.Terms.MonthlyPayment,
		TermMonths:       input.Terms.TermMonths,
		UpfrontPayment:   input.Terms.UpfrontPayment,
		ResidualValue:    input.Terms.ResidualValue,
		OpeningFee:       input.Terms.OpeningFee,
		InvoiceFee:       input.Terms.InvoiceFee,
		IncludedServices: input.Terms.IncludedServices,
		NotesToCustomer:  input.Terms.NotesToCustomer,
		InternalNotes:    input.Terms.InternalNotes,
		CreatedAt:        s.now(),
	}

	saved, err := s.store.CreateOffer(ctx, offer)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return saved, nil
}

// SendOffer advances an offer towards the customer. The financier moves a
// draft into admin review; the admin releases a reviewed offer to the
// customer, which also moves the application to OFFER_SENT.
func (s *WorkflowService) SendOffer(ctx context.Context, principal model.Principal, offerID uuid.UUID) (*model.Offer, error) {
	event := workflow.OfferEventSubmitForApproval
	if principal.IsAdmin() {
		event = workflow.OfferEventApproveAndSend
	}
	return s.transitionOffer(ctx, principal, offerID, event)
}

func (s *WorkflowService) AcceptOffer(ctx context.Context, principal model.Principal, offerID uuid.UUID) (*model.Offer, error) {
	return s.transitionOffer(ctx, principal, offerID, workflow.OfferEventAccept)
}

func (s *WorkflowService) RejectOffer(ctx context.Context, principal model.Principal, offerID uuid.UUID) (*model.Offer, error) {
	return s.transitionOffer(ctx, principal, offerID, workflow.OfferEventReject)
}

func (s *WorkflowService) transitionOffer(ctx context.Context, principal model.Principal, offerID uuid.UUID, event workflow.OfferEvent) (*model.Offer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	app, err := s.store.GetApplication(ctx, offer.ApplicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if principal.IsCustomer() && app.CustomerID != principal.UserID {
		return nil, fmt.Errorf("%w: offer %s", ErrPermissionDenied, offer.ID)
	}

	decision, err := workflow.DecideOffer(offer.Status, event, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	params := UpdateOfferStatusParams{
		OfferID:       offer.ID,
		From:          offer.Status,
		To:            decision.Next,
		ApplicationID: app.ID,
	}
	now := s.now()
	switch event {
	case workflow.OfferEventApproveAndSend:
		params.SentAt = &now
	case workflow.OfferEventAccept, workflow.OfferEventReject:
		params.RespondedAt = &now
	}
	if decision.ApplicationNext != "" {
		params.ApplicationFrom = app.Status
		params.ApplicationTo = decision.ApplicationNext
	}

	if err := s.store.UpdateOfferStatus(ctx, params); err != nil {
		return nil, s.mapStoreErr(err)
	}

	offer.Status = decision.Next
	offer.SentAt = coalesceTime(offer.SentAt, params.SentAt)
	offer.RespondedAt = coalesceTime(offer.RespondedAt, params.RespondedAt)

	s.dispatch(app, decision.Obligations)
	return offer, nil
}

// ListOffers returns the offers of an application, filtered for the caller:
// customers never see drafts, offers pending admin review, or internal notes.
func (s *WorkflowService) ListOffers(ctx context.Context, principal model.Principal, applicationID uuid.UUID) ([]model.Offer, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if err := s.checkApplicationAccess(principal, app); err != nil {
		return nil, err
	}

	offers, err := s.store.ListOffers(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !principal.IsCustomer() {
		return offers, nil
	}

	visible := make([]model.Offer, 0, len(offers))
	for _, offer := range offers {
		if offer.Status == model.OfferStatusDraft || offer.Status == model.OfferStatusPendingAdmin {
			continue
		}
		offer.InternalNotes = ""
		visible = append(visible, offer)
	}
	return visible, nil
}

func (s *WorkflowService) GetOffer(ctx context.Context, principal model.Principal, offerID uuid.UUID) (*model.Offer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	app, err := s.store.GetApplication(ctx, offer.ApplicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if principal.IsCustomer() {
		if app.CustomerID != principal.UserID ||
			offer.Status == model.OfferStatusDraft ||
			offer.Status == model.OfferStatusPendingAdmin {
			return nil, fmt.Errorf("%w: offer %s", ErrPermissionDenied, offer.ID)
		}
		offer.InternalNotes = ""
	}
	return offer, nil
}

func (s *WorkflowService) validateOfferTerms(terms OfferTerms, equipmentPrice float64) error {
	if terms.MonthlyPayment <= 0 {
		return fmt.Errorf("%w: monthly_payment must be positive", ErrValidation)
	}
	if !s.cfg.Offers.TermAllowed(terms.TermMonths) {
		return fmt.Errorf("%w: term_months %d is not an allowed term", ErrValidation, terms.TermMonths)
	}
	if terms.UpfrontPayment < 0 {
		return fmt.Errorf("%w: upfront_payment cannot be negative", ErrValidation)
	}
	if terms.ResidualValue < 0 {
		return fmt.Errorf("%w: residual_value cannot be negative", ErrValidation)
	}
	if terms.ResidualValue > equipmentPrice {
		return fmt.Errorf("%w: residual_value exceeds equipment price", ErrValidation)
	}
	return nil
}

func coalesceTime(existing, updated *time.Time) *time.Time {
	if updated != nil {
		return updated
	}
	return existing
}
