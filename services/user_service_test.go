package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon-club-service/models"
)

func TestRegisterUniqueness(t *testing.T) {
	e := newTestEnv()

	require.NoError(t, e.users.Register("zesty", "squeeze-me"))
	u := e.state.Users["zesty"]
	require.NotNil(t, u)
	assert.NotEqual(t, "squeeze-me", u.Password, "password stored hashed")
	assert.False(t, u.Quests.Empty(), "registration seeds the quest log")

	err := e.users.Register("zesty", "other-password")
	require.Error(t, err)
	assert.Equal(t, models.KindStateConflict, models.KindOf(err))

	err = e.users.Register("", "pw")
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}

func TestLoginVerifiesCredentials(t *testing.T) {
	e := newTestEnv()
	require.NoError(t, e.users.Register("zesty", "squeeze-me"))

	_, err := e.users.Login("zesty", "wrong")
	require.Error(t, err)
	assert.Equal(t, models.KindStateConflict, models.KindOf(err))

	_, err = e.users.Login("nobody", "squeeze-me")
	require.Error(t, err)
	assert.Equal(t, models.KindStateConflict, models.KindOf(err), "unknown user fails the same way")

	res, err := e.users.Login("zesty", "squeeze-me")
	require.NoError(t, err)
	assert.True(t, res.PointsAwarded, "first login is outside the window")
}

func TestLoginDailyPointWindow(t *testing.T) {
	e := newTestEnv()
	require.NoError(t, e.users.Register("zesty", "squeeze-me"))
	u := e.state.Users["zesty"]
	u.NFTs = []*models.NFT{
		{MintAddress: "mint-1"},
		{MintAddress: "mint-2", Points: 5},
	}

	res, err := e.users.Login("zesty", "squeeze-me")
	require.NoError(t, err)
	assert.True(t, res.PointsAwarded)
	assert.Equal(t, int64(1), u.NFTs[0].Points, "one point per owned record")
	assert.Equal(t, int64(6), u.NFTs[1].Points)
	assert.Equal(t, e.nowMillis(), u.LastLogin)

	// Inside the 24-hour window the login succeeds but mutates nothing.
	e.clock.Advance(12 * time.Hour)
	res, err = e.users.Login("zesty", "squeeze-me")
	require.NoError(t, err)
	assert.False(t, res.PointsAwarded)
	assert.Equal(t, int64(1), u.NFTs[0].Points)
	require.Len(t, res.NFTs, 2)
	assert.Equal(t, "mint-1", res.NFTs[0].MintAddress)

	// Past the window the award repeats.
	e.clock.Advance(13 * time.Hour)
	res, err = e.users.Login("zesty", "squeeze-me")
	require.NoError(t, err)
	assert.True(t, res.PointsAwarded)
	assert.Equal(t, int64(2), u.NFTs[0].Points)
}
