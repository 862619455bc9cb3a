// Package workflow holds the pure transition rules for the financing
// lifecycle. Every mutating command is checked here before any store write;
// the tables below are the single source of truth for which role may move
// which entity between which statuses, and which notifications that obliges.
package workflow

import (
	"errors"
	"fmt"

	"github.com/konelease/leasing-workflow/internal/model"
)

// ErrDenied is returned for any transition not present in the tables or
// attempted by a role the rule does not list.
var ErrDenied = errors.New("transition denied")

type ApplicationEvent string

const (
	ApplicationEventRoute ApplicationEvent = "ROUTE_TO_FINANCIER"
	ApplicationEventClose ApplicationEvent = "ADMINISTRATIVE_CLOSE"
)

type OfferEvent string

const (
	OfferEventSubmitForApproval OfferEvent = "SUBMIT_FOR_APPROVAL"
	OfferEventApproveAndSend    OfferEvent = "APPROVE_AND_SEND"
	OfferEventAccept            OfferEvent = "ACCEPT"
	OfferEventReject            OfferEvent = "REJECT"
)

type ContractEvent string

const (
	ContractEventSend   ContractEvent = "SEND"
	ContractEventSign   ContractEvent = "SIGN"
	ContractEventCancel ContractEvent = "CANCEL"
)

type InfoRequestEvent string

const (
	InfoRequestEventRespond InfoRequestEvent = "RESPOND"
	InfoRequestEventClose   InfoRequestEvent = "CLOSE"
)

// Obligation is a side effect the orchestrator must dispatch after commit.
type Obligation struct {
	Recipient model.Role
	Kind      model.NotificationKind
}

type ApplicationDecision struct {
	Next        model.ApplicationStatus
	Obligations []Obligation
}

type OfferDecision struct {
	Next model.OfferStatus
	// ApplicationNext is empty when the parent application keeps its status.
	ApplicationNext model.ApplicationStatus
	Obligations     []Obligation
}

type ContractDecision struct {
	Next            model.ContractStatus
	ApplicationNext model.ApplicationStatus
	Obligations     []Obligation
}

type InfoRequestDecision struct {
	Next        model.InfoRequestStatus
	Obligations []Obligation
}

type applicationKey struct {
	from  model.ApplicationStatus
	event ApplicationEvent
}

type offerKey struct {
	from  model.OfferStatus
	event OfferEvent
}

type contractKey struct {
	from  model.ContractStatus
	event ContractEvent
}

type infoRequestKey struct {
	from  model.InfoRequestStatus
	event InfoRequestEvent
}

type applicationRule struct {
	roles    []model.Role
	decision ApplicationDecision
}

type offerRule struct {
	roles    []model.Role
	decision OfferDecision
}

type contractRule struct {
	roles    []model.Role
	decision ContractDecision
}

type infoRequestRule struct {
	roles    []model.Role
	decision InfoRequestDecision
}

var applicationRules = map[applicationKey]applicationRule{
	{model.ApplicationStatusSubmitted, ApplicationEventRoute}: {
		roles: []model.Role{model.RoleSystem},
		decision: ApplicationDecision{
			Next: model.ApplicationStatusSubmittedToFinancier,
			Obligations: []Obligation{
				{Recipient: model.RoleFinancier, Kind: model.NotificationApplicationSubmitted},
			},
		},
	},
	{model.ApplicationStatusSigned, ApplicationEventClose}: {
		roles:    []model.Role{model.RoleAdmin},
		decision: ApplicationDecision{Next: model.ApplicationStatusClosed},
	},
}

var offerRules = map[offerKey]offerRule{
	{model.OfferStatusDraft, OfferEventSubmitForApproval}: {
		roles: []model.Role{model.RoleFinancier},
		decision: OfferDecision{
			Next: model.OfferStatusPendingAdmin,
			Obligations: []Obligation{
				{Recipient: model.RoleAdmin, Kind: model.NotificationOfferPendingAdmin},
			},
		},
	},
	{model.OfferStatusPendingAdmin, OfferEventApproveAndSend}: {
		roles: []model.Role{model.RoleAdmin},
		decision: OfferDecision{
			Next:            model.OfferStatusSent,
			ApplicationNext: model.ApplicationStatusOfferSent,
			Obligations: []Obligation{
				{Recipient: model.RoleCustomer, Kind: model.NotificationOfferSent},
			},
		},
	},
	{model.OfferStatusSent, OfferEventAccept}: {
		roles: []model.Role{model.RoleCustomer},
		decision: OfferDecision{
			Next:            model.OfferStatusAccepted,
			ApplicationNext: model.ApplicationStatusOfferAccepted,
			Obligations: []Obligation{
				{Recipient: model.RoleFinancier, Kind: model.NotificationOfferAccepted},
			},
		},
	},
	{model.OfferStatusSent, OfferEventReject}: {
		roles: []model.Role{model.RoleCustomer},
		decision: OfferDecision{
			// Rejection retires the offer and frees the slot for a new one.
			Next:            model.OfferStatusRejected,
			ApplicationNext: model.ApplicationStatusSubmittedToFinancier,
			Obligations: []Obligation{
				{Recipient: model.RoleFinancier, Kind: model.NotificationOfferRejected},
			},
		},
	},
}

var contractRules = map[contractKey]contractRule{
	{model.ContractStatusDraft, ContractEventSend}: {
		roles: []model.Role{model.RoleFinancier},
		decision: ContractDecision{
			Next:            model.ContractStatusSent,
			ApplicationNext: model.ApplicationStatusContractSent,
			Obligations: []Obligation{
				{Recipient: model.RoleCustomer, Kind: model.NotificationContractSent},
			},
		},
	},
	{model.ContractStatusSent, ContractEventSign}: {
		roles: []model.Role{model.RoleCustomer},
		decision: ContractDecision{
			Next:            model.ContractStatusSigned,
			ApplicationNext: model.ApplicationStatusSigned,
			Obligations: []Obligation{
				{Recipient: model.RoleFinancier, Kind: model.NotificationContractSigned},
			},
		},
	},
	{model.ContractStatusDraft, ContractEventCancel}: {
		roles: []model.Role{model.RoleAdmin},
		decision: ContractDecision{
			Next:            model.ContractStatusCancelled,
			ApplicationNext: model.ApplicationStatusOfferAccepted,
			Obligations: []Obligation{
				{Recipient: model.RoleFinancier, Kind: model.NotificationContractCancelled},
			},
		},
	},
	{model.ContractStatusSent, ContractEventCancel}: {
		roles: []model.Role{model.RoleAdmin},
		decision: ContractDecision{
			Next:            model.ContractStatusCancelled,
			ApplicationNext: model.ApplicationStatusOfferAccepted,
			Obligations: []Obligation{
				{Recipient: model.RoleCustomer, Kind: model.NotificationContractCancelled},
				{Recipient: model.RoleFinancier, Kind: model.NotificationContractCancelled},
			},
		},
	},
}

var infoRequestRules = map[infoRequestKey]infoRequestRule{
	{model.InfoRequestStatusPending, InfoRequestEventRespond}: {
		roles: []model.Role{model.RoleCustomer},
		decision: InfoRequestDecision{
			Next: model.InfoRequestStatusResponded,
			Obligations: []Obligation{
				{Recipient: model.RoleFinancier, Kind: model.NotificationInfoProvided},
			},
		},
	},
	{model.InfoRequestStatusResponded, InfoRequestEventClose}: {
		roles:    []model.Role{model.RoleFinancier, model.RoleAdmin},
		decision: InfoRequestDecision{Next: model.InfoRequestStatusClosed},
	},
}

func DecideApplication(from model.ApplicationStatus, event ApplicationEvent, role model.Role) (ApplicationDecision, error) {
	rule, ok := applicationRules[applicationKey{from, event}]
	if !ok {
		return ApplicationDecision{}, deny("application", string(from), string(event))
	}
	if !roleAllowed(rule.roles, role) {
		return ApplicationDecision{}, denyRole("application", string(event), role)
	}
	return rule.decision, nil
}

func DecideOffer(from model.OfferStatus, event OfferEvent, role model.Role) (OfferDecision, error) {
	rule, ok := offerRules[offerKey{from, event}]
	if !ok {
		return OfferDecision{}, deny("offer", string(from), string(event))
	}
	if !roleAllowed(rule.roles, role) {
		return OfferDecision{}, denyRole("offer", string(event), role)
	}
	return rule.decision, nil
}

func DecideContract(from model.ContractStatus, event ContractEvent, role model.Role) (ContractDecision, error) {
	rule, ok := contractRules[contractKey{from, event}]
	if !ok {
		return ContractDecision{}, deny("contract", string(from), string(event))
	}
	if !roleAllowed(rule.roles, role) {
		return ContractDecision{}, denyRole("contract", string(event), role)
	}
	return rule.decision, nil
}

func DecideInfoRequest(from model.InfoRequestStatus, event InfoRequestEvent, role model.Role) (InfoRequestDecision, error) {
	rule, ok := infoRequestRules[infoRequestKey{from, event}]
	if !ok {
		return InfoRequestDecision{}, deny("info request", string(from), string(event))
	}
	if !roleAllowed(rule.roles, role) {
		return InfoRequestDecision{}, denyRole("info request", string(event), role)
	}
	return rule.decision, nil
}

// CanCreateOffer reports whether a new offer draft may be opened for an
// application in the given status.
func CanCreateOffer(status model.ApplicationStatus) bool {
	return status == model.ApplicationStatusSubmittedToFinancier
}

// CanCreateContract requires an accepted offer to already drive the
// application status.
func CanCreateContract(status model.ApplicationStatus) bool {
	return status == model.ApplicationStatusOfferAccepted
}

// CanCreateInfoRequest limits new requests to the review detour: either the
// financier is looking at the application, or a detour is already open and
// another request joins it.
func CanCreateInfoRequest(status model.ApplicationStatus) bool {
	return status == model.ApplicationStatusSubmittedToFinancier ||
		status == model.ApplicationStatusInfoRequested
}

func roleAllowed(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func deny(entity, from, event string) error {
	return fmt.Errorf("%w: %s in status %s does not allow %s", ErrDenied, entity, from, event)
}

func denyRole(entity, event string, role model.Role) error {
	return fmt.Errorf("%w: role %s may not perform %s on %s", ErrDenied, role, event, entity)
}
