package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/model"
)

// memStore is an in-memory Store with the same conditional-update semantics
// as the Postgres repository: status predicates are re-checked under the lock
// and a mismatch surfaces as ErrStaleStatus.
type memStore struct {
	mu           sync.Mutex
	applications map[uuid.UUID]model.Application
	offers       map[uuid.UUID]model.Offer
	contracts    map[uuid.UUID]model.Contract
	infoRequests map[uuid.UUID]model.InfoRequest

	// duplicateNumbers makes the next N inserts fail as if the generated
	// reference or contract number collided with an existing row.
	duplicateNumbers int
}

func newMemStore() *memStore {
	return &memStore{
		applications: make(map[uuid.UUID]model.Application),
		offers:       make(map[uuid.UUID]model.Offer),
		contracts:    make(map[uuid.UUID]model.Contract),
		infoRequests: make(map[uuid.UUID]model.InfoRequest),
	}
}

var _ Store = (*memStore)(nil)

func (s *memStore) CreateApplication(_ context.Context, app model.Application) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.duplicateNumbers > 0 {
		s.duplicateNumbers--
		return nil, ErrDuplicateNumber
	}
	s.applications[app.ID] = app
	out := app
	return &out, nil
}

func (s *memStore) GetApplication(_ context.Context, id uuid.UUID) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := app
	return &out, nil
}

func (s *memStore) ListApplications(_ context.Context, customerID *uuid.UUID, status *model.ApplicationStatus) ([]model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Application
	for _, app := range s.applications {
		if customerID != nil && app.CustomerID != *customerID {
			continue
		}
		if status != nil && app.Status != *status {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (s *memStore) UpdateApplicationStatus(_ context.Context, id uuid.UUID, from, to model.ApplicationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveApplication(id, from, to)
}

// moveApplication must be called with the lock held.
func (s *memStore) moveApplication(id uuid.UUID, from, to model.ApplicationStatus) error {
	app, ok := s.applications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if app.Status != from {
		return fmt.Errorf("%w: application is %s, expected %s", ErrStaleStatus, app.Status, from)
	}
	app.Status = to
	s.applications[id] = app
	return nil
}

func (s *memStore) UpdateApplicationDetails(_ context.Context, app model.Application) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.applications[app.ID] = app
	out := app
	return &out, nil
}

func (s *memStore) CreateOffer(_ context.Context, offer model.Offer) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.offers {
		if existing.ApplicationID == offer.ApplicationID && !existing.Status.Terminal() {
			return nil, ErrDuplicateActive
		}
	}
	s.offers[offer.ID] = offer
	out := offer
	return &out, nil
}

func (s *memStore) GetOffer(_ context.Context, id uuid.UUID) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offer, ok := s.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := offer
	return &out, nil
}

func (s *memStore) ListOffers(_ context.Context, applicationID uuid.UUID) ([]model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Offer
	for _, offer := range s.offers {
		if offer.ApplicationID == applicationID {
			out = append(out, offer)
		}
	}
	return out, nil
}

func (s *memStore) GetAcceptedOffer(_ context.Context, applicationID uuid.UUID) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *model.Offer
	for _, offer := range s.offers {
		if offer.ApplicationID != applicationID || offer.Status != model.OfferStatusAccepted {
			continue
		}
		candidate := offer
		if found == nil || (candidate.RespondedAt != nil && found.RespondedAt != nil && candidate.RespondedAt.After(*found.RespondedAt)) {
			found = &candidate
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (s *memStore) HasOffers(_ context.Context, applicationID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, offer := range s.offers {
		if offer.ApplicationID == applicationID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UpdateOfferStatus(_ context.Context, params UpdateOfferStatusParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[params.OfferID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if offer.Status != params.From {
		return fmt.Errorf("%w: offer is %s, expected %s", ErrStaleStatus, offer.Status, params.From)
	}
	if params.ApplicationTo != "" {
		app, ok := s.applications[params.ApplicationID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if app.Status != params.ApplicationFrom {
			return fmt.Errorf("%w: application is %s, expected %s", ErrStaleStatus, app.Status, params.ApplicationFrom)
		}
	}

	offer.Status = params.To
	if params.SentAt != nil {
		offer.SentAt = params.SentAt
	}
	if params.RespondedAt != nil {
		offer.RespondedAt = params.RespondedAt
	}
	s.offers[params.OfferID] = offer

	if params.ApplicationTo != "" {
		if err := s.moveApplication(params.ApplicationID, params.ApplicationFrom, params.ApplicationTo); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) CreateContract(_ context.Context, contract model.Contract) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[contract.ApplicationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if app.Status != model.ApplicationStatusOfferAccepted {
		return nil, fmt.Errorf("%w: application is %s", ErrStaleStatus, app.Status)
	}
	for _, existing := range s.contracts {
		if existing.ApplicationID == contract.ApplicationID && !existing.Status.Terminal() {
			return nil, ErrDuplicateActive
		}
	}
	if s.duplicateNumbers > 0 {
		s.duplicateNumbers--
		return nil, ErrDuplicateNumber
	}
	s.contracts[contract.ID] = contract
	out := contract
	return &out, nil
}

func (s *memStore) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, ok := s.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := contract
	return &out, nil
}

func (s *memStore) ListContracts(_ context.Context, applicationID uuid.UUID) ([]model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Contract
	for _, contract := range s.contracts {
		if contract.ApplicationID == applicationID {
			out = append(out, contract)
		}
	}
	return out, nil
}

func (s *memStore) UpdateContractStatus(_ context.Context, params UpdateContractStatusParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.contracts[params.ContractID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if contract.Status != params.From {
		return fmt.Errorf("%w: contract is %s, expected %s", ErrStaleStatus, contract.Status, params.From)
	}
	if params.ApplicationTo != "" {
		app, ok := s.applications[params.ApplicationID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if app.Status != params.ApplicationFrom {
			return fmt.Errorf("%w: application is %s, expected %s", ErrStaleStatus, app.Status, params.ApplicationFrom)
		}
	}

	contract.Status = params.To
	if params.SentAt != nil {
		contract.SentAt = params.SentAt
	}
	if params.SignedAt != nil {
		contract.SignedAt = params.SignedAt
	}
	if params.SignerName != "" {
		contract.SignerName = params.SignerName
	}
	if params.SignaturePlace != "" {
		contract.SignaturePlace = params.SignaturePlace
	}
	if params.SignedDocumentRef != "" {
		contract.SignedDocumentRef = params.SignedDocumentRef
	}
	s.contracts[params.ContractID] = contract

	if params.ApplicationTo != "" {
		if err := s.moveApplication(params.ApplicationID, params.ApplicationFrom, params.ApplicationTo); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) SetContractDocument(_ context.Context, id uuid.UUID, documentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, ok := s.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.DocumentRef = documentRef
	s.contracts[id] = contract
	return nil
}

func (s *memStore) CreateInfoRequest(_ context.Context, req model.InfoRequest, appFrom, appTo model.ApplicationStatus) (*model.InfoRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.moveApplication(req.ApplicationID, appFrom, appTo); err != nil {
		return nil, err
	}
	s.infoRequests[req.ID] = req
	out := req
	return &out, nil
}

func (s *memStore) GetInfoRequest(_ context.Context, id uuid.UUID) (*model.InfoRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.infoRequests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := req
	return &out, nil
}

func (s *memStore) ListInfoRequests(_ context.Context, applicationID uuid.UUID) ([]model.InfoRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.InfoRequest
	for _, req := range s.infoRequests {
		if req.ApplicationID == applicationID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *memStore) RespondInfoRequest(_ context.Context, params RespondInfoRequestParams) (*model.InfoRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.infoRequests[params.InfoRequestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if req.Status != model.InfoRequestStatusPending {
		return nil, fmt.Errorf("%w: info request is %s", ErrStaleStatus, req.Status)
	}

	req.Status = model.InfoRequestStatusResponded
	req.Responses = append(req.Responses, params.Response)
	s.infoRequests[params.InfoRequestID] = req

	pending := 0
	for _, other := range s.infoRequests {
		if other.ApplicationID == params.ApplicationID && other.Status == model.InfoRequestStatusPending {
			pending++
		}
	}
	if pending == 0 {
		if err := s.moveApplication(params.ApplicationID, params.ApplicationFrom, params.ApplicationReturn); err != nil {
			return nil, err
		}
	}

	out := req
	return &out, nil
}

func (s *memStore) CloseInfoRequest(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.infoRequests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if req.Status != model.InfoRequestStatusResponded {
		return fmt.Errorf("%w: info request is %s", ErrStaleStatus, req.Status)
	}
	req.Status = model.InfoRequestStatusClosed
	s.infoRequests[id] = req
	return nil
}

func (s *memStore) PipelineRows(_ context.Context) ([]model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Application, 0, len(s.applications))
	for _, app := range s.applications {
		out = append(out, app)
	}
	return out, nil
}

// recordingNotifier captures dispatched obligations for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	delivered []model.Notification
}

func (n *recordingNotifier) Notify(recipient model.Role, recipientUserID, applicationID uuid.UUID, kind model.NotificationKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, model.Notification{
		RecipientRole:   recipient,
		RecipientUserID: recipientUserID,
		ApplicationID:   applicationID,
		Kind:            kind,
		Message:         message,
	})
}

func (n *recordingNotifier) kinds() []model.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.NotificationKind, 0, len(n.delivered))
	for _, d := range n.delivered {
		out = append(out, d.Kind)
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = nil
}

// memDocuments stores uploaded documents in memory.
type memDocuments struct {
	mu    sync.Mutex
	docs  map[string][]byte
	next  int
	fail  bool
	unver bool
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: make(map[string][]byte)}
}

func (d *memDocuments) Store(_ context.Context, content []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return "", fmt.Errorf("document store unavailable")
	}
	d.next++
	ref := fmt.Sprintf("doc-%d.pdf", d.next)
	d.docs[ref] = content
	return ref, nil
}

func (d *memDocuments) Verify(_ context.Context, documentRef string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unver {
		return false, nil
	}
	content, ok := d.docs[documentRef]
	return ok && len(content) > 0, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(contract model.Contract, _ model.Application) ([]byte, error) {
	return []byte("%PDF " + contract.ContractNumber), nil
}

type capturingReports struct {
	mu   sync.Mutex
	last *model.PipelineReport
}

func (r *capturingReports) Generate(report model.PipelineReport) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &report
	return []byte("xlsx"), nil
}
