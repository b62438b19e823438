package cmmn

const (
	MemberTypeUser = "user"
	MemberTypeRole = "role"
)

// CaseTeam is the team of a single case.
type CaseTeam struct {
	Members         []CaseTeamMember `json:"members"`
	CaseRoles       []string         `json:"caseRoles,omitempty"`
	UnassignedRoles []string         `json:"unassignedRoles,omitempty"`
}

// Find returns the member with the given id.
func (t CaseTeam) Find(memberID string) (CaseTeamMember, bool) {
	for _, m := range t.Members {
		if m.MemberID == memberID {
			return m, true
		}
	}
	return CaseTeamMember{}, false
}

// CaseTeamMember is either a tenant user or a tenant role in a case team. IsOwner is nil
// when the ownership is not being changed.
type CaseTeamMember struct {
	MemberID    string   `json:"memberId"`
	CaseRoles   []string `json:"caseRoles"`
	MemberType  string   `json:"memberType,omitempty"`
	IsOwner     *bool    `json:"isOwner,omitempty"`
	RemoveRoles []string `json:"removeRoles,omitempty"`
}

// NewCaseTeamMember makes a user member that does not change case ownership.
func NewCaseTeamMember(userID string, caseRoles ...string) CaseTeamMember {
	return CaseTeamMember{MemberID: userID, CaseRoles: nonNil(caseRoles), MemberType: MemberTypeUser}
}

// NewCaseOwner makes a user member that owns the case.
func NewCaseOwner(userID string, caseRoles ...string) CaseTeamMember {
	m := NewCaseTeamMember(userID, caseRoles...)
	m.IsOwner = Bool(true)
	return m
}

// NewTenantRoleMember makes a member for everyone with the given tenant role.
func NewTenantRoleMember(tenantRole string, caseRoles ...string) CaseTeamMember {
	return CaseTeamMember{MemberID: tenantRole, CaseRoles: nonNil(caseRoles), MemberType: MemberTypeRole}
}

// Owner reports whether the member is explicitly a case owner.
func (m CaseTeamMember) Owner() bool {
	return m.IsOwner != nil && *m.IsOwner
}

// RoleBinding maps a case role to tenant roles.
type RoleBinding struct {
	CaseRole    string   `json:"caseRole"`
	TenantRoles []string `json:"tenantRoles"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

