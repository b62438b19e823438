package casetests

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/identity"
)

// Tenant roles used by the test case models.
const (
	RoleEmployee = "Employee"
	RoleSender   = "Sender"
	RoleReceiver = "Receiver"
)

// World is a freshly registered tenant with three users. The sender owns the tenant.
type World struct {
	Name     string
	Sender   *identity.User
	Receiver *identity.User
	Employee *identity.User
}

// NewWorld registers a tenant whose name starts with prefix, and logs in its users. The
// tenant name gets a random suffix, so that every run starts with a clean tenant.
func (t *T) NewWorld(prefix string) *World {
	w := &World{
		Name:     prefix + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Sender:   identity.NewUser("sending-user"),
		Receiver: identity.NewUser("receiving-user"),
		Employee: identity.NewUser("employee"),
	}
	tenant := cmmn.Tenant{
		Name: w.Name,
		Users: []cmmn.TenantUser{
			cmmn.NewTenantOwner(w.Sender.UserID(), RoleEmployee, RoleSender),
			cmmn.NewTenantUser(w.Receiver.UserID(), RoleEmployee, RoleReceiver),
			cmmn.NewTenantUser(w.Employee.UserID(), RoleEmployee),
		},
	}

	admin := t.env.PlatformAdmin
	if admin.BearerToken() == "" {
		t.Login(admin)
	}
	t.Debug("Creating tenant %s", w.Name)
	require.NoError(t, t.services.Platform.CreateTenant(t.ctx, admin, tenant))

	for _, u := range []*identity.User{w.Sender, w.Receiver, w.Employee} {
		t.Login(u)
	}
	return w
}

// Deploy makes sure the case definition from the repository folder is deployed in the tenant.
func (t *T) Deploy(w *World, definition string) {
	require.NoError(t, t.services.Repository.ValidateAndDeploy(t.ctx, w.Sender, definition, w.Name),
		"deploying %s", definition)
}
