package casetests

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/identity"
)

func DoEnvironmentTests(t *T) {
	t.Run("health", func(t *T) {
		health, err := t.Services().Platform.Health(t.Context())
		require.NoError(t, err)
		t.Debug("Platform health: %s", health.JSONString())
	})

	t.Run("version", func(t *T) {
		version, err := t.Services().Platform.Version(t.Context())
		require.NoError(t, err)
		t.Debug("Platform version: %s", version.JSONString())
	})

	t.Run("platform admin can log in", func(t *T) {
		t.Login(t.env.PlatformAdmin)
		_, ok := t.env.PlatformAdmin.Information()
		assert.True(t, ok)
	})

	t.RunIfSelected("token validation", DoTokenValidationTests)
}

// DoTokenValidationTests checks that the engine refuses tokens it should not trust.
func DoTokenValidationTests(t *T) {
	tokens, ok := t.env.Tokens.(*identity.TokenService)
	if !ok {
		t.context.SkipWithReason("token service does not support custom claims")
	}
	now := time.Now()
	const day = 24 * time.Hour

	rejected := func(t *T, user *identity.User) {
		_, err := t.Services().Platform.GetUserInformation(t.Context(), user, client.ExpectStatus(401))
		assert.NoError(t, err, "engine should not accept the token of %s", user)
	}

	t.Run("missing token", func(t *T) {
		user := identity.NewUser(t.env.PlatformAdmin.UserID())
		rejected(t, user)
	})

	for _, token := range []string{
		"SomeInvalidTokenFormat",
		"Token.With.Dots",
		"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..Dots",
		"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9...",
	} {
		t.Run("malformed token "+token, func(t *T) {
			user := identity.NewUser(t.env.PlatformAdmin.UserID())
			user.SetToken(token)
			rejected(t, user)
		})
	}

	t.Run("invalid issuer", func(t *T) {
		other := *tokens
		other.Issuer = "bla-die-bla" + tokens.Issuer + "xyz"
		user := identity.NewUser(t.env.PlatformAdmin.UserID())
		require.NoError(t, user.RefreshToken(t.Context(), &other))
		rejected(t, user)
	})

	t.Run("expired token", func(t *T) {
		user := identity.NewUser(t.env.PlatformAdmin.UserID())
		token, err := tokens.TokenFor(t.Context(), user, now.Add(-3*day), now.Add(-2*day))
		require.NoError(t, err)
		user.SetToken(token)
		rejected(t, user)
	})

	t.Run("empty subject", func(t *T) {
		user := identity.NewUser("")
		require.NoError(t, user.RefreshToken(t.Context(), tokens))
		rejected(t, user)
	})

	t.Run("empty issuer", func(t *T) {
		other := *tokens
		other.Issuer = ""
		user := identity.NewUser(t.env.PlatformAdmin.UserID())
		require.NoError(t, user.RefreshToken(t.Context(), &other))
		rejected(t, user)
	})
}
