package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/workflow"
)

type RequestInfoInput struct {
	ApplicationID  uuid.UUID
	Message        string
	RequestedItems []string
	Principal      model.Principal
}

// RequestInfo opens the information detour: the application moves to
// INFO_REQUESTED together with the new pending request.
func (s *WorkflowService) RequestInfo(ctx context.Context, input RequestInfoInput) (*model.InfoRequest, error) {
	if !input.Principal.IsFinancier() {
		return nil, fmt.Errorf("%w: only the financier requests information", ErrInvalidTransition)
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	app, err := s.store.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if !workflow.CanCreateInfoRequest(app.Status) {
		return nil, fmt.Errorf("%w: application %s in status %s does not accept info requests",
			ErrInvalidTransition, app.ReferenceNumber, app.Status)
	}

	req := model.InfoRequest{
		ID:             uuid.New(),
		ApplicationID:  app.ID,
		Status:         model.InfoRequestStatusPending,
		Message:        input.Message,
		RequestedItems: input.RequestedItems,
		CreatedAt:      s.now(),
	}

	saved, err := s.store.CreateInfoRequest(ctx, req, app.Status, model.ApplicationStatusInfoRequested)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.notifier.Notify(model.RoleCustomer, app.CustomerID, app.ID, model.NotificationInfoRequested,
		notificationMessage(model.NotificationInfoRequested, app.ReferenceNumber))
	return saved, nil
}

type RespondToInfoRequestInput struct {
	InfoRequestID uuid.UUID
	Message       string
	Principal     model.Principal
}

// RespondToInfoRequest appends the customer's answer. Settling the last
// pending request of an application ends the detour and returns the
// application to SUBMITTED_TO_FINANCIER; earlier responses leave it at
// INFO_REQUESTED. The return decision is re-checked inside the store
// transaction so concurrent responses cannot leave the detour open.
func (s *WorkflowService) RespondToInfoRequest(ctx context.Context, input RespondToInfoRequestInput) (*model.InfoRequest, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	req, err := s.store.GetInfoRequest(ctx, input.InfoRequestID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	app, err := s.store.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if input.Principal.IsCustomer() && app.CustomerID != input.Principal.UserID {
		return nil, fmt.Errorf("%w: info request %s", ErrPermissionDenied, req.ID)
	}
	if req.Status == model.InfoRequestStatusResponded {
		return nil, fmt.Errorf("%w: info request %s", ErrAlreadyResponded, req.ID)
	}

	decision, err := workflow.DecideInfoRequest(req.Status, workflow.InfoRequestEventRespond, input.Principal.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	response := model.InfoRequestResponse{
		ID:            uuid.New(),
		InfoRequestID: req.ID,
		AuthorRole:    input.Principal.Role,
		AuthorName:    input.Principal.FullName,
		Message:       input.Message,
		CreatedAt:     s.now(),
	}

	updated, err := s.store.RespondInfoRequest(ctx, RespondInfoRequestParams{
		InfoRequestID:     req.ID,
		Response:          response,
		ApplicationID:     app.ID,
		ApplicationFrom:   model.ApplicationStatusInfoRequested,
		ApplicationReturn: model.ApplicationStatusSubmittedToFinancier,
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.dispatch(app, decision.Obligations)
	return updated, nil
}

// CloseInfoRequest archives a responded thread. No side effects.
func (s *WorkflowService) CloseInfoRequest(ctx context.Context, principal model.Principal, infoRequestID uuid.UUID) (*model.InfoRequest, error) {
	req, err := s.store.GetInfoRequest(ctx, infoRequestID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if _, err := workflow.DecideInfoRequest(req.Status, workflow.InfoRequestEventClose, principal.Role); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if err := s.store.CloseInfoRequest(ctx, req.ID); err != nil {
		return nil, s.mapStoreErr(err)
	}
	req.Status = model.InfoRequestStatusClosed
	return req, nil
}

func (s *WorkflowService) ListInfoRequests(ctx context.Context, principal model.Principal, applicationID uuid.UUID) ([]model.InfoRequest, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if err := s.checkApplicationAccess(principal, app); err != nil {
		return nil, err
	}
	return s.store.ListInfoRequests(ctx, applicationID)
}
