package casetests

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/compare"
	"github.com/cafienne/engine-contract-tests/identity"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

func DoTenantRegistrationTests(t *T) {
	admin := t.env.PlatformAdmin
	if admin.BearerToken() == "" {
		t.Login(admin)
	}
	// the steps below build on each other, so they share this test's session
	platform, tenants := t.Services().Platform, t.Services().Tenants

	owner1 := identity.NewUser("tenant-owner1")
	owner2 := identity.NewUser("tenant-owner2")
	user4 := identity.NewUser("tenant-user-4")
	user4Roles := []string{"role-x", "role-y"}

	tenant := cmmn.Tenant{
		Name: "test_tenant_" + uuid.NewString(),
		Users: []cmmn.TenantUser{
			cmmn.NewTenantOwner(owner1.UserID()),
			cmmn.NewTenantOwner(owner2.UserID()),
			cmmn.NewTenantOwner("tenant-owner3"),
			cmmn.NewTenantUser("tenant-user-1"),
			cmmn.NewTenantUser("tenant-user-2"),
			cmmn.NewTenantUser("tenant-user-3"),
		},
	}
	ownerIDs := func() []string {
		var ret []string
		for _, o := range tenant.Owners() {
			ret = append(ret, o.UserID)
		}
		return ret
	}

	checkOwners := func(t *T, expected []string) {
		owners, err := tenants.GetTenantOwners(t.Context(), owner1, tenant.Name)
		require.NoError(t, err)
		if !compare.SameArray(owners, expected) {
			require.Fail(t, fmt.Sprintf("List of tenant owners does not match. Received %v, expected %v", owners, expected))
		}
	}
	checkUserCount := func(t *T, user *identity.User, expected int) {
		users, err := tenants.GetTenantUsers(t.Context(), user, tenant.Name)
		require.NoError(t, err)
		assert.Len(t, users, expected, "number of tenant users")
	}

	t.Run("create tenant", func(t *T) {
		require.NoError(t, owner1.RefreshToken(t.Context(), t.env.Tokens))
		require.NoError(t, platform.CreateTenant(t.Context(), owner1, tenant, client.ExpectStatus(401)),
			"tenant owners cannot create tenants")

		disabled := tenant
		disabled.Users = nil
		for _, u := range tenant.Users {
			u.Enabled = !u.IsOwner
			disabled.Users = append(disabled.Users, u)
		}
		require.NoError(t, platform.CreateTenant(t.Context(), admin, disabled, client.ExpectStatus(400)),
			"a tenant needs at least one active owner")

		require.NoError(t, platform.CreateTenant(t.Context(), admin, tenant))
		require.NoError(t, platform.CreateTenant(t.Context(), admin, tenant, client.ExpectStatus(400)),
			"tenant already exists")
		_, err := tenants.GetTenantOwners(t.Context(), admin, tenant.Name, client.ExpectStatus(401))
		require.NoError(t, err)

		t.Login(owner1)
		info, _ := owner1.Information()
		_, ok := info.Tenant(tenant.Name)
		assert.True(t, ok, "user %s is supposed to be member of tenant %s", owner1, tenant.Name)

		checkOwners(t, ownerIDs())
		checkUserCount(t, owner1, 6)
		_, err = tenants.GetTenantUsers(t.Context(), admin, tenant.Name, client.ExpectStatus(401))
		require.NoError(t, err)
	})

	t.Run("add tenant user", func(t *T) {
		_, err := tenants.GetTenantUser(t.Context(), owner1, tenant.Name, "not a tenant user at all", client.ExpectStatus(404))
		require.NoError(t, err)

		newUser := cmmn.NewTenantUser(user4.UserID(), user4Roles...)
		newUser.Name = "user-4"
		newUser.Email = "user4@users-and-owners.com"
		require.NoError(t, tenants.AddTenantUser(t.Context(), owner1, tenant.Name, newUser))
		checkUserCount(t, owner1, 7)

		// adding is an upsert, so doing it twice is fine
		require.NoError(t, tenants.AddTenantUser(t.Context(), owner1, tenant.Name, newUser))
		checkUserCount(t, owner1, 7)

		_, err = tenants.GetTenantUsers(t.Context(), user4, tenant.Name, client.ExpectStatus(401))
		require.NoError(t, err)
		t.Login(user4)
		checkUserCount(t, user4, 7)
	})

	t.Run("change ownership", func(t *T) {
		require.NoError(t, tenants.AddTenantOwner(t.Context(), owner1, tenant.Name, user4.UserID()))
		require.NoError(t, tenants.AddTenantOwner(t.Context(), owner1, tenant.Name, user4.UserID()))
		checkOwners(t, append(ownerIDs(), user4.UserID()))

		require.NoError(t, tenants.RemoveTenantOwner(t.Context(), owner1, tenant.Name, user4.UserID()))
		checkOwners(t, ownerIDs())
	})

	t.Run("disable and enable tenant", func(t *T) {
		require.NoError(t, platform.DisableTenant(t.Context(), owner1, tenant.Name, client.ExpectStatus(401)))
		require.NoError(t, platform.DisableTenant(t.Context(), admin, tenant.Name))
		require.NoError(t, platform.EnableTenant(t.Context(), admin, tenant.Name))

		require.NoError(t, platform.EnableTenant(t.Context(), admin, "not-created", client.ExpectStatus(400)))
		require.NoError(t, platform.DisableTenant(t.Context(), admin, "not-created", client.ExpectStatus(400)))
	})

	t.Run("disable and enable user account", func(t *T) {
		require.NoError(t, tenants.DisableTenantUser(t.Context(), owner1, tenant.Name, owner2.UserID()))
		owners, err := tenants.GetTenantOwners(t.Context(), owner1, tenant.Name)
		require.NoError(t, err)
		assert.NotContains(t, owners, owner2.UserID(), "disabled accounts are not listed as owners")
		checkUserCount(t, owner1, 6)

		disabled, err := tenants.GetDisabledUserAccounts(t.Context(), owner1, tenant.Name)
		require.NoError(t, err)
		assert.Len(t, disabled, 1)
		_, err = tenants.GetTenantUser(t.Context(), owner1, tenant.Name, owner2.UserID(), client.ExpectStatus(404))
		require.NoError(t, err)

		require.NoError(t, tenants.EnableTenantUser(t.Context(), owner1, tenant.Name, owner2.UserID()))
		checkUserCount(t, owner1, 7)
		_, err = tenants.GetTenantUser(t.Context(), owner1, tenant.Name, owner2.UserID())
		require.NoError(t, err)
		owners, err = tenants.GetTenantOwners(t.Context(), owner1, tenant.Name)
		require.NoError(t, err)
		assert.Contains(t, owners, owner2.UserID())
	})

	t.Run("change user roles", func(t *T) {
		checkRoles := func(t *T, expected []string) {
			u, err := tenants.GetTenantUser(t.Context(), owner1, tenant.Name, user4.UserID())
			require.NoError(t, err)
			if !compare.SameArray(u.Roles, expected) {
				require.Fail(t, fmt.Sprintf("Expected user 4 to have roles %v, but found %v", expected, u.Roles))
			}
		}
		checkRoles(t, user4Roles)

		require.NoError(t, tenants.RemoveTenantUserRole(t.Context(), owner1, tenant.Name, user4.UserID(), user4Roles[0]))
		checkRoles(t, user4Roles[1:])

		users, err := tenants.GetTenantUsers(t.Context(), owner1, tenant.Name)
		require.NoError(t, err)
		for _, u := range users {
			if u.UserID == user4.UserID() {
				assert.True(t, compare.SameArray(u.Roles, user4Roles[1:]), "roles in user list: %v", u.Roles)
			}
		}

		require.NoError(t, tenants.AddTenantUserRole(t.Context(), owner1, tenant.Name, user4.UserID(), user4Roles[0]))
		checkRoles(t, user4Roles)
	})

	t.Run("change user name and email", func(t *T) {
		const newName = "User4 is now called User-ABC"
		const newEmail = "not really an email address, but that should be allowed"
		require.NoError(t, tenants.UpdateTenantUser(t.Context(), owner1, tenant.Name,
			servicedef.UpsertTenantUser{UserID: user4.UserID(), Name: newName}))
		require.NoError(t, tenants.UpdateTenantUser(t.Context(), owner1, tenant.Name,
			servicedef.UpsertTenantUser{UserID: user4.UserID(), Email: newEmail}))

		u, err := tenants.GetTenantUser(t.Context(), owner1, tenant.Name, user4.UserID())
		require.NoError(t, err)
		assert.Equal(t, newName, u.Name)
		assert.Equal(t, newEmail, u.Email)
		assert.True(t, compare.SameArray(u.Roles, user4Roles), "an update must not touch the roles")
	})

	t.Run("replace tenant user", func(t *T) {
		require.NoError(t, tenants.ReplaceTenantUser(t.Context(), owner1, tenant.Name,
			servicedef.UpsertTenantUser{UserID: user4.UserID(), Roles: []string{"role-z"}}))
		u, err := tenants.GetTenantUser(t.Context(), owner1, tenant.Name, user4.UserID())
		require.NoError(t, err)
		assert.Equal(t, []string{"role-z"}, u.Roles)
		assert.Empty(t, u.Name, "replacing clears the fields that are not given")
	})
}
