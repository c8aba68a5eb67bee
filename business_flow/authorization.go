package businessflow

import (
	"github.com/amirphl/cargo-certificates/models"
	"github.com/google/uuid"
)

// Identity is the authenticated caller every flow operation acts on behalf of
type Identity struct {
	ProfileID  uuid.UUID
	Role       models.Role
	BrokerCode *string
}

// NewIdentity derives the caller identity from its profile
func NewIdentity(p *models.Profile) *Identity {
	if p == nil {
		return nil
	}
	id := &Identity{ProfileID: p.ID, Role: p.Role}
	if p.BrokerCode != nil {
		code := *p.BrokerCode
		id.BrokerCode = &code
	}
	return id
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// Action is an operation subject to authorization
type Action string

const (
	ActionListContracts      Action = "contracts:list"
	ActionReadContract       Action = "contracts:read"
	ActionCreateContract     Action = "contracts:create"
	ActionUpdateContract     Action = "contracts:update"
	ActionDeleteContract     Action = "contracts:delete"
	ActionListCertificates   Action = "certificates:list"
	ActionCreateCertificate  Action = "certificates:create"
	ActionReadCertificate    Action = "certificates:read"
	ActionUpdateCertificate  Action = "certificates:update"
	ActionDeleteCertificate  Action = "certificates:delete"
	ActionExportCertificates Action = "certificates:export"
	ActionManageProfiles     Action = "profiles:manage"
)

// Scope narrows what an allowed list operation may return
type Scope int

const (
	ScopeNone  Scope = iota // allowed, but matches nothing
	ScopeOwned              // rows whose contract broker code equals the caller's
	ScopeAll
)

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  string
	Scope   Scope
	err     error
}

// Err returns the error to surface for a denied decision, nil when allowed
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.err == ErrNotAuthenticated {
		return NewBusinessError(CodeNotAuthenticated, "Not authenticated", ErrNotAuthenticated)
	}
	return NewBusinessError(CodeUnauthorized, "Unauthorized: "+d.Reason, ErrUnauthorized)
}

var adminOnlyActions = map[Action]struct{}{
	ActionCreateContract:     {},
	ActionUpdateContract:     {},
	ActionDeleteContract:     {},
	ActionExportCertificates: {},
	ActionManageProfiles:     {},
}

var listActions = map[Action]struct{}{
	ActionListContracts:    {},
	ActionListCertificates: {},
}

// Decide is the single authorization check for every entry point.
// Admins pass unconditionally. Brokers pass only for contracts carrying their own broker code.
// A broker without a code may list, with ScopeNone, and is denied everything else.
func Decide(identity *Identity, action Action, contract *models.Contract) Decision {
	if identity == nil {
		return Decision{Reason: "not authenticated", err: ErrNotAuthenticated}
	}
	if identity.IsAdmin() {
		return Decision{Allowed: true, Reason: "admin", Scope: ScopeAll}
	}
	if identity.Role != models.RoleBroker {
		return Decision{Reason: "unknown role", err: ErrUnauthorized}
	}

	if _, ok := adminOnlyActions[action]; ok {
		return Decision{Reason: "admin role required", err: ErrUnauthorized}
	}

	if _, ok := listActions[action]; ok {
		if identity.BrokerCode == nil {
			return Decision{Allowed: true, Reason: "broker without code", Scope: ScopeNone}
		}
		return Decision{Allowed: true, Reason: "broker", Scope: ScopeOwned}
	}

	if contract == nil {
		return Decision{Reason: "contract required", err: ErrUnauthorized}
	}
	if identity.BrokerCode == nil {
		return Decision{Reason: "broker has no broker code", err: ErrUnauthorized}
	}
	if contract.BrokerCode != *identity.BrokerCode {
		return Decision{Reason: "contract belongs to another broker", err: ErrUnauthorized}
	}
	return Decision{Allowed: true, Reason: "contract owner", Scope: ScopeOwned}
}
