package casetests

import (
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

func DoDebugModeTests(t *T) {
	w := t.NewWorld("debug_tenant_")
	t.Deploy(w, helloWorld)
	user := w.Sender
	cases := t.Services().Cases

	caseID, err := cases.StartCase(t.Context(), user, servicedef.StartCase{
		Definition: helloWorld,
		Tenant:     w.Name,
		Inputs:     helloWorldInputs{Greeting: greeting{Message: "Can you debug?", From: user.UserID()}},
		Debug:      cmmn.Bool(true),
	})
	require.NoError(t, err)
	_, err = cases.GetCase(t.Context(), user, caseID)
	require.NoError(t, err)

	t.Run("switch debug mode", func(t *T) {
		require.NoError(t, t.Services().Cases.ChangeDebugMode(t.Context(), user, caseID, false))
		_, err := t.Services().Cases.GetCase(t.Context(), user, caseID)
		require.NoError(t, err)

		require.NoError(t, t.Services().Cases.ChangeDebugMode(t.Context(), user, caseID, true))
		_, err = t.Services().Cases.GetCase(t.Context(), user, caseID)
		require.NoError(t, err)
	})

	t.Run("debug events", func(t *T) {
		// the debug API is switched off on most engines, in which case it answers 401
		_, err := t.Services().Debug.GetEvents(t.Context(), user, caseID)
		if client.IsStatus(err, 401) {
			t.Debug("Debug API is not enabled on this engine")
			return
		}
		require.NoError(t, err)
	})
}
