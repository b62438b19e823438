package casetests

import (
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/compare"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

const (
	caseTeamDefinition = "caseteam.xml"
	requestorRole      = "Requestor"
	approverRole       = "Approver"
	paRole             = "PersonalAssistant"
)

func DoCaseTeamTests(t *T) {
	w := t.NewWorld("caseteam_tenant_")
	t.Deploy(w, caseTeamDefinition)
	sender, receiver, employee := w.Sender, w.Receiver, w.Employee

	t.Run("start case with team", func(t *T) {
		team := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{cmmn.NewCaseOwner(receiver.UserID())}}
		caseID, err := t.Services().Cases.StartCase(t.Context(), sender, servicedef.StartCase{
			Definition: caseTeamDefinition, Tenant: w.Name, CaseTeam: &team, Debug: cmmn.Bool(true),
		})
		require.NoError(t, err)

		_, err = t.Services().Cases.GetCase(t.Context(), receiver, caseID)
		require.NoError(t, err)
		_, err = t.Services().Cases.GetCase(t.Context(), sender, caseID, client.ExpectStatus(404))
		require.NoError(t, err)
		t.AssertCaseTeam(receiver, caseID, team)

		local, err := t.Services().Repository.ReadDefinition(caseTeamDefinition)
		require.NoError(t, err)
		remote, err := t.Services().Cases.GetDefinition(t.Context(), receiver, caseID)
		require.NoError(t, err)
		if !compare.SameXMLIgnoringWhitespace(local, remote) {
			require.Fail(t, "Expecting to find exactly the same definition as we sent to the engine, but it differs")
		}
	})

	t.Run("team membership controls access", func(t *T) {
		cases, teams := t.Services().Cases, t.Services().CaseTeam
		team := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{
			cmmn.NewCaseOwner(sender.UserID(), requestorRole),
			cmmn.NewCaseOwner(receiver.UserID(), approverRole, paRole),
			cmmn.NewTenantRoleMember(requestorRole, "ADMIN", "Not-Existing-TenantRole-Still-Allowed-In-Team"),
		}}
		start := servicedef.StartCase{Definition: caseTeamDefinition, Tenant: w.Name, CaseTeam: &team, Debug: t.CaseDebug()}

		_, err := cases.StartCase(t.Context(), sender, start, client.ExpectStatus(400))
		require.NoError(t, err, "case roles that are not in the definition must be rejected")

		team.Members[2].CaseRoles = []string{}
		caseID, err := cases.StartCase(t.Context(), sender, start)
		require.NoError(t, err)

		unknownUsers := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{
			cmmn.NewCaseTeamMember("Piet", requestorRole),
			cmmn.NewCaseTeamMember("Joop"),
			cmmn.NewCaseTeamMember(receiver.UserID()),
		}}
		require.NoError(t, teams.SetCaseTeam(t.Context(), sender, caseID, unknownUsers, client.ExpectStatus(404)))
		require.NoError(t, teams.SetMember(t.Context(), sender, caseID, cmmn.NewCaseTeamMember("PietjePrecies"), client.ExpectStatus(404)))

		_, err = cases.GetCase(t.Context(), receiver, caseID)
		require.NoError(t, err)
		_, err = cases.GetCase(t.Context(), employee, caseID, client.ExpectStatus(404))
		require.NoError(t, err)

		require.NoError(t, teams.RemoveMember(t.Context(), sender, caseID, cmmn.NewCaseTeamMember(receiver.UserID())))
		t.AssertCaseTeamMember(sender, caseID, cmmn.NewCaseOwner(receiver.UserID(), approverRole, paRole), false)
		_, err = cases.GetCase(t.Context(), receiver, caseID, client.ExpectStatus(404))
		require.NoError(t, err)

		require.NoError(t, teams.RemoveMember(t.Context(), sender, caseID, cmmn.NewCaseTeamMember(employee.UserID()), client.ExpectStatus(400)),
			"removing someone who is not in the team")
		_, err = teams.GetCaseTeam(t.Context(), receiver, caseID, client.ExpectStatus(404))
		require.NoError(t, err)
		_, err = t.Services().CaseFile.GetCaseFile(t.Context(), receiver, caseID, client.ExpectStatus(404))
		require.NoError(t, err)

		require.NoError(t, teams.SetMember(t.Context(), sender, caseID, cmmn.NewCaseTeamMember(employee.UserID())))
		t.AssertCaseTeamMember(sender, caseID, cmmn.NewCaseTeamMember(employee.UserID()), true)
		_, err = cases.GetCase(t.Context(), employee, caseID)
		require.NoError(t, err)

		newTeam := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{
			cmmn.NewCaseTeamMember(receiver.UserID(), requestorRole),
			cmmn.NewCaseTeamMember(employee.UserID()),
		}}
		require.NoError(t, teams.SetCaseTeam(t.Context(), sender, caseID, newTeam, client.ExpectStatus(400)),
			"a team without owners must be rejected")
		newTeam.Members[0].IsOwner = cmmn.Bool(true)
		require.NoError(t, teams.SetCaseTeam(t.Context(), employee, caseID, newTeam, client.ExpectStatus(401)),
			"only owners can replace the team")
		require.NoError(t, teams.SetCaseTeam(t.Context(), sender, caseID, newTeam))

		t.AssertCaseTeamMember(receiver, caseID, cmmn.NewCaseOwner(receiver.UserID(), requestorRole), true)
		t.AssertCaseTeamMember(receiver, caseID, cmmn.NewCaseTeamMember(employee.UserID()), true)
		t.AssertCaseTeamMember(receiver, caseID, cmmn.NewCaseOwner(sender.UserID(), requestorRole), false)
		_, err = cases.GetCase(t.Context(), sender, caseID, client.ExpectStatus(404))
		require.NoError(t, err)
		t.AssertCaseTeam(employee, caseID, newTeam)

		require.NoError(t, teams.SetMember(t.Context(), receiver, caseID,
			cmmn.NewCaseOwner(receiver.UserID(), "ThisRoleIsNotInTheCaseDefinition"), client.ExpectStatus(400)))
		require.NoError(t, teams.SetMember(t.Context(), receiver, caseID,
			cmmn.NewCaseTeamMember(employee.UserID(), ""), client.ExpectStatus(400)))

		require.NoError(t, teams.SetMember(t.Context(), receiver, caseID, cmmn.NewCaseTeamMember(employee.UserID(), approverRole)))
		t.AssertCaseTeamMember(receiver, caseID, cmmn.NewCaseTeamMember(employee.UserID(), approverRole), true)

		require.NoError(t, teams.RemoveMemberRoles(t.Context(), receiver, caseID, cmmn.NewCaseTeamMember(employee.UserID()), []string{approverRole}))
		t.AssertCaseTeamMember(receiver, caseID, cmmn.NewCaseTeamMember(employee.UserID()), true)
	})

	t.Run("tenant role members", func(t *T) {
		cases, teams := t.Services().Cases, t.Services().CaseTeam
		team := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{
			cmmn.NewCaseOwner(sender.UserID()),
			cmmn.NewTenantRoleMember(RoleReceiver),
		}}
		caseID, err := cases.StartCase(t.Context(), sender, servicedef.StartCase{
			Definition: caseTeamDefinition, Tenant: w.Name, CaseTeam: &team, Debug: t.CaseDebug(),
		})
		require.NoError(t, err)
		t.AssertCaseTeamMember(sender, caseID, cmmn.NewTenantRoleMember(RoleReceiver), true)

		// the receiver gets access through the tenant role, the employee does not have it
		_, err = cases.GetCase(t.Context(), receiver, caseID)
		require.NoError(t, err)
		_, err = cases.GetCase(t.Context(), employee, caseID, client.ExpectStatus(404))
		require.NoError(t, err)

		require.NoError(t, teams.RemoveMember(t.Context(), sender, caseID, cmmn.NewTenantRoleMember(RoleReceiver)))
		_, err = cases.GetCase(t.Context(), receiver, caseID, client.ExpectStatus(404))
		require.NoError(t, err)
	})
}
