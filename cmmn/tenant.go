package cmmn

// Tenant is a tenant with its initial users, as sent when the tenant is created.
type Tenant struct {
	Name  string       `json:"name"`
	Users []TenantUser `json:"users"`
}

// Owners returns the users that own the tenant.
func (t Tenant) Owners() []TenantUser {
	var ret []TenantUser
	for _, u := range t.Users {
		if u.IsOwner {
			ret = append(ret, u)
		}
	}
	return ret
}

// TenantUser is a user account within a tenant. UserID must match the subject of the
// user's token.
type TenantUser struct {
	UserID  string   `json:"userId"`
	Roles   []string `json:"roles"`
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	IsOwner bool     `json:"isOwner"`
	Enabled bool     `json:"enabled"`
	Tenant  string   `json:"tenant,omitempty"`
}

// NewTenantUser makes an enabled user that does not own the tenant.
func NewTenantUser(userID string, roles ...string) TenantUser {
	return TenantUser{UserID: userID, Roles: nonNil(roles), Enabled: true}
}

// NewTenantOwner makes an enabled user that owns the tenant.
func NewTenantOwner(userID string, roles ...string) TenantUser {
	u := NewTenantUser(userID, roles...)
	u.IsOwner = true
	return u
}

// HasRole reports whether the user has the tenant role.
func (u TenantUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserInformation is what the engine knows about the user making a request.
type UserInformation struct {
	UserID  string       `json:"userId"`
	Tenants []TenantUser `json:"tenants"`
}

// Tenant returns the account of the user in the given tenant.
func (i UserInformation) Tenant(name string) (TenantUser, bool) {
	for _, t := range i.Tenants {
		if t.Tenant == name {
			return t, true
		}
	}
	return TenantUser{}, false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
