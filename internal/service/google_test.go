package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateGoogleCreatesVerifiedUser(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.AuthenticateGoogle(GoogleIdentity{
		ID:        "g-1",
		Email:     "budi@example.com",
		Name:      "Budi",
		AvatarURL: "https://lh3.example.com/a.png",
	})
	require.NoError(t, err)

	assert.True(t, user.IsVerified())
	assert.False(t, user.HasPassword())
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "g-1", *user.GoogleID)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://lh3.example.com/a.png", *user.AvatarURL)
}

func TestAuthenticateGoogleIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	identity := GoogleIdentity{ID: "g-1", Email: "budi@example.com", Name: "Budi"}

	first, err := f.svc.AuthenticateGoogle(identity)
	require.NoError(t, err)

	second, err := f.svc.AuthenticateGoogle(identity)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	count, err := f.users.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAuthenticateGoogleLinksExistingLocalAccount(t *testing.T) {
	f := newAuthFixture(t)
	local := f.register(t, "budi@example.com", "1.2.3.4")
	assert.False(t, local.IsVerified())

	linked, err := f.svc.AuthenticateGoogle(GoogleIdentity{
		ID:    "g-1",
		Email: "budi@example.com",
		Name:  "Budi G",
	})
	require.NoError(t, err)

	// Same account, now linked and verified, password kept
	assert.Equal(t, local.ID, linked.ID)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "g-1", *linked.GoogleID)
	assert.True(t, linked.IsVerified())
	assert.True(t, linked.HasPassword())

	count, err := f.users.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
