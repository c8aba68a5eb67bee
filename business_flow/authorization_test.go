package businessflow

import (
	"testing"

	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	admin := &Identity{ProfileID: uuid.New(), Role: models.RoleAdmin}
	broker := &Identity{ProfileID: uuid.New(), Role: models.RoleBroker, BrokerCode: utils.ToPtr("BRK001")}
	codeless := &Identity{ProfileID: uuid.New(), Role: models.RoleBroker}
	own := &models.Contract{BrokerCode: "BRK001"}
	foreign := &models.Contract{BrokerCode: "BRK002"}

	tests := []struct {
		name      string
		identity  *Identity
		action    Action
		contract  *models.Contract
		allowed   bool
		scope     Scope
		unauthErr bool
	}{
		{name: "anonymous", identity: nil, action: ActionReadCertificate, contract: own},
		{name: "admin reads foreign", identity: admin, action: ActionReadCertificate, contract: foreign, allowed: true, scope: ScopeAll},
		{name: "admin creates contract", identity: admin, action: ActionCreateContract, allowed: true, scope: ScopeAll},
		{name: "admin exports", identity: admin, action: ActionExportCertificates, allowed: true, scope: ScopeAll},
		{name: "broker lists", identity: broker, action: ActionListCertificates, allowed: true, scope: ScopeOwned},
		{name: "codeless broker lists", identity: codeless, action: ActionListContracts, allowed: true, scope: ScopeNone},
		{name: "broker reads own", identity: broker, action: ActionReadCertificate, contract: own, allowed: true, scope: ScopeOwned},
		{name: "broker creates on own", identity: broker, action: ActionCreateCertificate, contract: own, allowed: true, scope: ScopeOwned},
		{name: "broker reads foreign", identity: broker, action: ActionReadCertificate, contract: foreign, unauthErr: true},
		{name: "broker deletes foreign", identity: broker, action: ActionDeleteCertificate, contract: foreign, unauthErr: true},
		{name: "broker without contract", identity: broker, action: ActionUpdateCertificate, unauthErr: true},
		{name: "codeless broker reads", identity: codeless, action: ActionReadCertificate, contract: own, unauthErr: true},
		{name: "broker creates contract", identity: broker, action: ActionCreateContract, unauthErr: true},
		{name: "broker deletes contract", identity: broker, action: ActionDeleteContract, contract: own, unauthErr: true},
		{name: "broker manages profiles", identity: broker, action: ActionManageProfiles, unauthErr: true},
		{name: "broker exports", identity: broker, action: ActionExportCertificates, unauthErr: true},
		{name: "unknown role", identity: &Identity{Role: "auditor"}, action: ActionListContracts, unauthErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.identity, tt.action, tt.contract)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.NotEmpty(t, d.Reason)
			if tt.allowed {
				assert.Equal(t, tt.scope, d.Scope)
				assert.NoError(t, d.Err())
				return
			}

			err := d.Err()
			if tt.unauthErr {
				assert.True(t, IsUnauthorized(err))
				be, ok := AsBusinessError(err)
				assert.True(t, ok)
				assert.Equal(t, CodeUnauthorized, be.Code)
				assert.Contains(t, be.Message, "Unauthorized")
			} else {
				assert.True(t, IsNotAuthenticated(err))
			}
		})
	}
}

func TestNewIdentity(t *testing.T) {
	assert.Nil(t, NewIdentity(nil))

	code := "BRK001"
	p := &models.Profile{ID: uuid.New(), Role: models.RoleBroker, BrokerCode: &code}
	id := NewIdentity(p)
	assert.Equal(t, p.ID, id.ProfileID)
	assert.Equal(t, "BRK001", *id.BrokerCode)

	// the identity holds its own copy
	code = "CHANGED"
	assert.Equal(t, "BRK001", *id.BrokerCode)
	assert.False(t, id.IsAdmin())
}
