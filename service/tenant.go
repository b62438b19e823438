package service

import (
	"context"
	"fmt"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

// TenantService manages the users of a tenant. Changes are accepted with status 204,
// and the caller must be a tenant owner.
type TenantService struct {
	Engine
}

func (s TenantService) GetTenantOwners(ctx context.Context, user client.Principal, tenant string, opts ...client.CallOption) ([]string, error) {
	var owners []string
	_, err := s.callJSON(ctx, fmt.Sprintf("GetTenantOwners of %s for user %s", tenant, userID(user)),
		client.Request{Path: "tenant/" + tenant + "/owners", User: user}, 200, opts, &owners)
	return owners, err
}

func (s TenantService) GetTenantUsers(ctx context.Context, user client.Principal, tenant string, opts ...client.CallOption) ([]cmmn.TenantUser, error) {
	var users []cmmn.TenantUser
	_, err := s.callJSON(ctx, fmt.Sprintf("GetTenantUsers of %s for user %s", tenant, userID(user)),
		client.Request{Path: "tenant/" + tenant + "/users", User: user}, 200, opts, &users)
	return users, err
}

func (s TenantService) GetDisabledUserAccounts(ctx context.Context, user client.Principal, tenant string, opts ...client.CallOption) ([]cmmn.TenantUser, error) {
	var users []cmmn.TenantUser
	_, err := s.callJSON(ctx, fmt.Sprintf("GetDisabledUserAccounts of %s", tenant),
		client.Request{Path: "tenant/" + tenant + "/disabled-accounts", User: user}, 200, opts, &users)
	return users, err
}

func (s TenantService) GetTenantUser(ctx context.Context, user client.Principal, tenant, tenantUserID string, opts ...client.CallOption) (cmmn.TenantUser, error) {
	var u cmmn.TenantUser
	_, err := s.callJSON(ctx, fmt.Sprintf("GetTenantUser %s of %s for user %s", tenantUserID, tenant, userID(user)),
		client.Request{Path: "tenant/" + tenant + "/users/" + tenantUserID, User: user}, 200, opts, &u)
	return u, err
}

func (s TenantService) AddTenantUser(ctx context.Context, user client.Principal, tenant string, newUser cmmn.TenantUser, opts ...client.CallOption) error {
	return s.UpdateTenantUser(ctx, user, tenant, servicedef.UpsertOf(newUser), opts...)
}

// UpdateTenantUser changes the fields that are set in the upsert.
func (s TenantService) UpdateTenantUser(ctx context.Context, user client.Principal, tenant string, upsert servicedef.UpsertTenantUser, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("UpdateTenantUser %s in %s for user %s", upsert.UserID, tenant, userID(user)),
		client.Request{Method: "PUT", Path: "tenant/" + tenant + "/users", User: user, Body: upsert}, 204, opts)
	return err
}

// ReplaceTenantUser overwrites the user; fields that are not set are cleared.
func (s TenantService) ReplaceTenantUser(ctx context.Context, user client.Principal, tenant string, replacement servicedef.UpsertTenantUser, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("ReplaceTenantUser %s in %s for user %s", replacement.UserID, tenant, userID(user)),
		client.Request{Method: "POST", Path: "tenant/" + tenant + "/users", User: user, Body: replacement}, 204, opts)
	return err
}

func (s TenantService) UpdateTenantUsers(ctx context.Context, user client.Principal, tenant string, users []cmmn.TenantUser, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("UpdateTenantUsers in %s for user %s", tenant, userID(user)),
		client.Request{Method: "PUT", Path: "tenant/" + tenant, User: user, Body: servicedef.TenantUsers{Users: users}}, 204, opts)
	return err
}

// ReplaceTenant replaces all users of the tenant.
func (s TenantService) ReplaceTenant(ctx context.Context, user client.Principal, tenant cmmn.Tenant, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("ReplaceTenant %s for user %s", tenant.Name, userID(user)),
		client.Request{Method: "POST", Path: "tenant/" + tenant.Name, User: user, Body: tenant}, 204, opts)
	return err
}

func (s TenantService) AddTenantOwner(ctx context.Context, user client.Principal, tenant, newOwner string, opts ...client.CallOption) error {
	return s.UpdateTenantUser(ctx, user, tenant, servicedef.UpsertTenantUser{UserID: newOwner, IsOwner: cmmn.Bool(true)}, opts...)
}

func (s TenantService) RemoveTenantOwner(ctx context.Context, user client.Principal, tenant, formerOwner string, opts ...client.CallOption) error {
	return s.UpdateTenantUser(ctx, user, tenant, servicedef.UpsertTenantUser{UserID: formerOwner, IsOwner: cmmn.Bool(false)}, opts...)
}

func (s TenantService) DisableTenantUser(ctx context.Context, user client.Principal, tenant, tenantUserID string, opts ...client.CallOption) error {
	return s.UpdateTenantUser(ctx, user, tenant, servicedef.UpsertTenantUser{UserID: tenantUserID, Enabled: cmmn.Bool(false)}, opts...)
}

func (s TenantService) EnableTenantUser(ctx context.Context, user client.Principal, tenant, tenantUserID string, opts ...client.CallOption) error {
	return s.UpdateTenantUser(ctx, user, tenant, servicedef.UpsertTenantUser{UserID: tenantUserID, Enabled: cmmn.Bool(true)}, opts...)
}

func (s TenantService) AddTenantUserRole(ctx context.Context, user client.Principal, tenant, tenantUserID, role string, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("AddTenantUserRole %s to %s in %s", role, tenantUserID, tenant),
		client.Request{Method: "PUT", Path: fmt.Sprintf("tenant/%s/users/%s/roles/%s", tenant, tenantUserID, role), User: user}, 204, opts)
	return err
}

func (s TenantService) RemoveTenantUserRole(ctx context.Context, user client.Principal, tenant, tenantUserID, role string, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("RemoveTenantUserRole %s of %s in %s", role, tenantUserID, tenant),
		client.Request{Method: "DELETE", Path: fmt.Sprintf("tenant/%s/users/%s/roles/%s", tenant, tenantUserID, role), User: user}, 204, opts)
	return err
}
