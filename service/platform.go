package service

import (
	"context"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
)

const tenantAlreadyExists = "Tenant already exists"

// PlatformService covers tenant registration and platform information.
type PlatformService struct {
	Engine
}

// CreateTenant registers a tenant; user must be a platform owner. If the tenant is
// already there and no other status is expected, that counts as success.
func (s PlatformService) CreateTenant(ctx context.Context, user client.Principal, tenant cmmn.Tenant, opts ...client.CallOption) error {
	s.debugf("Creating Tenant %s", tenant.Name)
	expected := client.ExpectedStatus(204, opts)
	operation := fmt.Sprintf("CreateTenant %s for user %s", tenant.Name, userID(user))
	resp, err := s.call(ctx, operation,
		client.Request{Method: "POST", Path: "platform", User: user, Body: tenant}, 204, opts)
	if err != nil && resp != nil && expected == 204 && resp.Status == 400 && resp.Text() == tenantAlreadyExists {
		s.debugf("Tenant %s already exists.", tenant.Name)
		return nil
	}
	return err
}

func (s PlatformService) DisableTenant(ctx context.Context, user client.Principal, tenant string, opts ...client.CallOption) error {
	_, err := s.call(ctx, "DisableTenant "+tenant,
		client.Request{Method: "PUT", Path: "platform/" + tenant + "/disable", User: user}, 204, opts)
	return err
}

func (s PlatformService) EnableTenant(ctx context.Context, user client.Principal, tenant string, opts ...client.CallOption) error {
	_, err := s.call(ctx, "EnableTenant "+tenant,
		client.Request{Method: "PUT", Path: "platform/" + tenant + "/enable", User: user}, 204, opts)
	return err
}

// GetUserInformation returns what the engine knows about the calling user.
func (s PlatformService) GetUserInformation(ctx context.Context, user client.Principal, opts ...client.CallOption) (cmmn.UserInformation, error) {
	var info cmmn.UserInformation
	_, err := s.callJSON(ctx, "GetUserInformation for user "+userID(user),
		client.Request{Path: "platform/user", User: user}, 200, opts, &info)
	return info, err
}

// Health does not need a user.
func (s PlatformService) Health(ctx context.Context, opts ...client.CallOption) (ldvalue.Value, error) {
	return s.anonymousJSON(ctx, "Health", "health", opts)
}

func (s PlatformService) Version(ctx context.Context, opts ...client.CallOption) (ldvalue.Value, error) {
	return s.anonymousJSON(ctx, "Version", "version", opts)
}

func (s PlatformService) anonymousJSON(ctx context.Context, operation, path string, opts []client.CallOption) (ldvalue.Value, error) {
	resp, err := s.call(ctx, operation, client.Request{Path: path}, 200, opts)
	if err != nil || !resp.OK() {
		return ldvalue.Null(), err
	}
	return resp.JSON()
}
