package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
)

type CaseTeamService struct {
	Engine
}

func (s CaseTeamService) GetCaseTeam(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) (cmmn.CaseTeam, error) {
	var team cmmn.CaseTeam
	_, err := s.callJSON(ctx, fmt.Sprintf("GetCaseTeam of case %s for user %s", caseID, userID(user)),
		client.Request{Path: "cases/" + caseID + "/caseteam", User: user}, 200, opts, &team)
	return team, err
}

// SetCaseTeam replaces the whole team.
func (s CaseTeamService) SetCaseTeam(ctx context.Context, user client.Principal, caseID string, team cmmn.CaseTeam, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("SetCaseTeam in case %s for user %s", caseID, userID(user)),
		client.Request{Method: "POST", Path: "cases/" + caseID + "/caseteam", User: user, Body: team}, 200, opts)
	return err
}

// SetMember adds the member, or updates it if it is already in the team.
func (s CaseTeamService) SetMember(ctx context.Context, user client.Principal, caseID string, member cmmn.CaseTeamMember, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("SetTeamMember %s in case %s for user %s", member.MemberID, caseID, userID(user)),
		client.Request{Method: "PUT", Path: "cases/" + caseID + "/caseteam", User: user, Body: member}, 200, opts)
	return err
}

func (s CaseTeamService) RemoveMember(ctx context.Context, user client.Principal, caseID string, member cmmn.CaseTeamMember, opts ...client.CallOption) error {
	memberType := member.MemberType
	if memberType == "" {
		memberType = cmmn.MemberTypeUser
	}
	_, err := s.call(ctx, fmt.Sprintf("RemoveTeamMember %s of type %s in case %s", member.MemberID, memberType, caseID),
		client.Request{
			Method: "DELETE",
			Path:   "cases/" + caseID + "/caseteam/" + url.PathEscape(member.MemberID),
			Query:  url.Values{"type": []string{memberType}},
			User:   user,
		}, 200, opts)
	return err
}

// RemoveMemberRoles takes case roles away from a member without removing it.
func (s CaseTeamService) RemoveMemberRoles(ctx context.Context, user client.Principal, caseID string, member cmmn.CaseTeamMember, roles []string, opts ...client.CallOption) error {
	member.RemoveRoles = roles
	_, err := s.call(ctx, fmt.Sprintf("RemoveTeamMemberRoles %v of %s in case %s", roles, member.MemberID, caseID),
		client.Request{Method: "PUT", Path: "cases/" + caseID + "/caseteam", User: user, Body: member}, 200, opts)
	return err
}
