package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/workflow"
)

type ContractTerms struct {
	MonthlyRent       float64
	LeasePeriodMonths int
	ResidualValue     float64
	AdvancePayment    float64
	ProcessingFee     float64
	ArrangementFee    float64
}

type CreateContractInput struct {
	ApplicationID uuid.UUID
	Terms         ContractTerms
	Principal     model.Principal
}

// CreateContract drafts the binding agreement from the accepted offer. The
// lessee identity is snapshotted from the application at this moment and
// never updated afterwards. Terms left at zero fall back to the accepted
// offer's figures.
func (s *WorkflowService) CreateContract(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if !input.Principal.IsFinancier() {
		return nil, fmt.Errorf("%w: only the financier creates contracts", ErrInvalidTransition)
	}

	app, err := s.store.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if !workflow.CanCreateContract(app.Status) {
		return nil, fmt.Errorf("%w: application %s in status %s has no accepted offer to contract",
			ErrInvalidTransition, app.ReferenceNumber, app.Status)
	}

	offer, err := s.store.GetAcceptedOffer(ctx, app.ID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}

	terms := input.Terms
	if terms.MonthlyRent == 0 {
		terms.MonthlyRent = offer.MonthlyPayment
	}
	if terms.LeasePeriodMonths == 0 {
		terms.LeasePeriodMonths = offer.TermMonths
	}
	if terms.ResidualValue == 0 {
		terms.ResidualValue = offer.ResidualValue
	}
	if terms.AdvancePayment == 0 {
		terms.AdvancePayment = offer.UpfrontPayment
	}
	if terms.MonthlyRent <= 0 {
		return nil, fmt.Errorf("%w: monthly_rent must be positive", ErrValidation)
	}
	if terms.LeasePeriodMonths <= 0 {
		return nil, fmt.Errorf("%w: lease_period_months must be positive", ErrValidation)
	}

	contract := model.Contract{
		ID:             uuid.New(),
		ApplicationID:  app.ID,
		OfferID:        offer.ID,
		ContractNumber: generateContractNumber(),
		Status:         model.ContractStatusDraft,
		Lessee: model.Party{
			CompanyName:   app.CompanyName,
			BusinessID:    app.BusinessID,
			StreetAddress: app.StreetAddress,
			PostalCode:    app.PostalCode,
			City:          app.City,
			ContactPerson: app.ContactPerson,
			Email:         app.ContactEmail,
			Phone:         app.ContactPhone,
		},
		Lessor: model.Party{
			CompanyName: s.cfg.Lessor.CompanyName,
			BusinessID:  s.cfg.Lessor.BusinessID,
		},
		MonthlyRent:       terms.MonthlyRent,
		LeasePeriodMonths: terms.LeasePeriodMonths,
		ResidualValue:     terms.ResidualValue,
		AdvancePayment:    terms.AdvancePayment,
		ProcessingFee:     terms.ProcessingFee,
		ArrangementFee:    terms.ArrangementFee,
		CreatedAt:         s.now(),
	}

	var saved *model.Contract
	for attempt := 0; ; attempt++ {
		saved, err = s.store.CreateContract(ctx, contract)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateNumber) && attempt < numberRetries {
			contract.ContractNumber = generateContractNumber()
			continue
		}
		return nil, s.mapStoreErr(err)
	}
	return saved, nil
}

// SendContract releases the draft to the customer. The printable document is
// rendered and stored after the transition committed; a storage failure only
// delays the document, never the transition.
func (s *WorkflowService) SendContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	contract, app, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	decision, err := workflow.DecideContract(contract.Status, workflow.ContractEventSend, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := s.now()
	params := UpdateContractStatusParams{
		ContractID:      contract.ID,
		From:            contract.Status,
		To:              decision.Next,
		SentAt:          &now,
		ApplicationID:   app.ID,
		ApplicationFrom: app.Status,
		ApplicationTo:   decision.ApplicationNext,
	}
	if err := s.store.UpdateContractStatus(ctx, params); err != nil {
		return nil, s.mapStoreErr(err)
	}
	contract.Status = decision.Next
	contract.SentAt = &now

	s.dispatch(app, decision.Obligations)
	s.storeContractDocument(ctx, contract, app)
	return contract, nil
}

type SignContractInput struct {
	ContractID     uuid.UUID
	SignaturePlace string
	Principal      model.Principal
}

// SignContract records an electronic signature. Exactly one signing path may
// succeed per contract; a second attempt fails with ErrAlreadySigned.
func (s *WorkflowService) SignContract(ctx context.Context, input SignContractInput) (*model.Contract, error) {
	contract, app, err := s.loadContract(ctx, input.ContractID)
	if err != nil {
		return nil, err
	}
	if err := s.signAccess(input.Principal, app); err != nil {
		return nil, err
	}
	if contract.Status == model.ContractStatusSigned {
		return nil, fmt.Errorf("%w: contract %s", ErrAlreadySigned, contract.ContractNumber)
	}
	decision, err := workflow.DecideContract(contract.Status, workflow.ContractEventSign, input.Principal.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := s.now()
	params := UpdateContractStatusParams{
		ContractID:      contract.ID,
		From:            contract.Status,
		To:              decision.Next,
		SignedAt:        &now,
		SignerName:      input.Principal.FullName,
		SignaturePlace:  input.SignaturePlace,
		ApplicationID:   app.ID,
		ApplicationFrom: app.Status,
		ApplicationTo:   decision.ApplicationNext,
	}
	if err := s.store.UpdateContractStatus(ctx, params); err != nil {
		return nil, s.mapStoreErr(err)
	}
	contract.Status = decision.Next
	contract.SignedAt = &now
	contract.SignerName = input.Principal.FullName
	contract.SignaturePlace = input.SignaturePlace

	s.dispatch(app, decision.Obligations)
	return contract, nil
}

type UploadSignedContractInput struct {
	ContractID uuid.UUID
	Document   []byte
	Principal  model.Principal
}

// UploadSignedContract is the alternative signing path: the customer uploads
// a signed document, which is stored with the external collaborator before
// the transition commits since its reference is the signature evidence.
func (s *WorkflowService) UploadSignedContract(ctx context.Context, input UploadSignedContractInput) (*model.Contract, error) {
	contract, app, err := s.loadContract(ctx, input.ContractID)
	if err != nil {
		return nil, err
	}
	if err := s.signAccess(input.Principal, app); err != nil {
		return nil, err
	}
	if contract.Status == model.ContractStatusSigned {
		return nil, fmt.Errorf("%w: contract %s", ErrAlreadySigned, contract.ContractNumber)
	}
	if len(input.Document) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrValidation)
	}
	decision, err := workflow.DecideContract(contract.Status, workflow.ContractEventSign, input.Principal.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Documents.Timeout)
	defer cancel()
	ref, err := s.documents.Store(storeCtx, input.Document)
	if err != nil {
		return nil, fmt.Errorf("store signed document: %w", err)
	}
	ok, err := s.documents.Verify(storeCtx, ref)
	if err != nil {
		return nil, fmt.Errorf("verify signed document: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: uploaded document failed verification", ErrValidation)
	}

	now := s.now()
	params := UpdateContractStatusParams{
		ContractID:        contract.ID,
		From:              contract.Status,
		To:                decision.Next,
		SignedAt:          &now,
		SignerName:        input.Principal.FullName,
		SignedDocumentRef: ref,
		ApplicationID:     app.ID,
		ApplicationFrom:   app.Status,
		ApplicationTo:     decision.ApplicationNext,
	}
	if err := s.store.UpdateContractStatus(ctx, params); err != nil {
		return nil, s.mapStoreErr(err)
	}
	contract.Status = decision.Next
	contract.SignedAt = &now
	contract.SignerName = input.Principal.FullName
	contract.SignedDocumentRef = ref

	s.dispatch(app, decision.Obligations)
	return contract, nil
}

// CancelContract is the administrative terminal for a contract that will not
// be signed. It frees the active-contract slot: the application returns to
// OFFER_ACCEPTED so the financier can draft a replacement.
func (s *WorkflowService) CancelContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	contract, app, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	decision, err := workflow.DecideContract(contract.Status, workflow.ContractEventCancel, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	params := UpdateContractStatusParams{
		ContractID:      contract.ID,
		From:            contract.Status,
		To:              decision.Next,
		ApplicationID:   app.ID,
		ApplicationFrom: app.Status,
		ApplicationTo:   decision.ApplicationNext,
	}
	if err := s.store.UpdateContractStatus(ctx, params); err != nil {
		return nil, s.mapStoreErr(err)
	}
	contract.Status = decision.Next

	s.dispatch(app, decision.Obligations)
	return contract, nil
}

// ContractDocument renders the printable contract for download.
func (s *WorkflowService) ContractDocument(ctx context.Context, principal model.Principal, contractID uuid.UUID) (string, []byte, error) {
	contract, app, err := s.loadContract(ctx, contractID)
	if err != nil {
		return "", nil, err
	}
	if principal.IsCustomer() {
		if app.CustomerID != principal.UserID || contract.Status == model.ContractStatusDraft {
			return "", nil, fmt.Errorf("%w: contract %s", ErrPermissionDenied, contract.ContractNumber)
		}
	}
	content, err := s.renderer.Render(*contract, *app)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("contract-%s.pdf", contract.ContractNumber), content, nil
}

func (s *WorkflowService) GetContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	contract, app, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if principal.IsCustomer() {
		if app.CustomerID != principal.UserID || contract.Status == model.ContractStatusDraft {
			return nil, fmt.Errorf("%w: contract %s", ErrPermissionDenied, contract.ContractNumber)
		}
	}
	return contract, nil
}

// ListContracts returns the contracts of an application. Customers only see
// contracts that were released to them.
func (s *WorkflowService) ListContracts(ctx context.Context, principal model.Principal, applicationID uuid.UUID) ([]model.Contract, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if err := s.checkApplicationAccess(principal, app); err != nil {
		return nil, err
	}

	contracts, err := s.store.ListContracts(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !principal.IsCustomer() {
		return contracts, nil
	}

	visible := make([]model.Contract, 0, len(contracts))
	for _, contract := range contracts {
		if contract.Status == model.ContractStatusDraft {
			continue
		}
		visible = append(visible, contract)
	}
	return visible, nil
}

func (s *WorkflowService) loadContract(ctx context.Context, contractID uuid.UUID) (*model.Contract, *model.Application, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, nil, s.mapStoreErr(err)
	}
	app, err := s.store.GetApplication(ctx, contract.ApplicationID)
	if err != nil {
		return nil, nil, s.mapStoreErr(err)
	}
	return contract, app, nil
}

func (s *WorkflowService) signAccess(principal model.Principal, app *model.Application) error {
	if principal.IsCustomer() && app.CustomerID != principal.UserID {
		return fmt.Errorf("%w: application %s", ErrPermissionDenied, app.ReferenceNumber)
	}
	return nil
}

// storeContractDocument is best effort: the SENT transition already
// committed, so a renderer or storage failure is logged and the document is
// produced again on the next download.
func (s *WorkflowService) storeContractDocument(ctx context.Context, contract *model.Contract, app *model.Application) {
	content, err := s.renderer.Render(*contract, *app)
	if err != nil {
		s.log.Error().Err(err).Str("contract", contract.ContractNumber).Msg("render contract document")
		return
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Documents.Timeout)
	defer cancel()
	ref, err := s.documents.Store(storeCtx, content)
	if err != nil {
		s.log.Error().Err(err).Str("contract", contract.ContractNumber).Msg("store contract document")
		return
	}
	if err := s.store.SetContractDocument(ctx, contract.ID, ref); err != nil {
		s.log.Error().Err(err).Str("contract", contract.ContractNumber).Msg("save contract document ref")
		return
	}
	contract.DocumentRef = ref
}
