package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon-club-service/models"
)

func TestBoardSeedsAndReports(t *testing.T) {
	e := newTestEnv()
	e.addUser("zesty")

	board, err := e.quests.Board("zesty")
	require.NoError(t, err)
	assert.Len(t, board.Daily, 3)
	assert.Len(t, board.Weekly, 3)
	assert.Len(t, board.Limited, 1)
	assert.Zero(t, board.Points)

	_, err = e.quests.Board("nobody")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestResetIfExpiredIsIdempotent(t *testing.T) {
	e := newTestEnv()
	u := e.addUser("zesty")
	u.Quests.Daily[0].Progress = 1
	u.Quests.Daily[0].Completed = true

	// Inside the window nothing resets, no matter how often it runs.
	now := e.nowMillis() + (23 * time.Hour).Milliseconds()
	assert.False(t, resetIfExpired(&u.Quests, e.catalog, models.QuestClassDaily, now))
	assert.True(t, u.Quests.Daily[0].Completed)

	// Past the window every instance reinitializes once.
	now = e.nowMillis() + (25 * time.Hour).Milliseconds()
	assert.True(t, resetIfExpired(&u.Quests, e.catalog, models.QuestClassDaily, now))
	assert.False(t, u.Quests.Daily[0].Completed)
	assert.Zero(t, u.Quests.Daily[0].Progress)
	assert.Equal(t, now, u.Quests.Daily[0].ResetTimestamp)

	// A second sweep with the same now must be a no-op.
	assert.False(t, resetIfExpired(&u.Quests, e.catalog, models.QuestClassDaily, now))
	assert.Equal(t, now, u.Quests.Daily[0].ResetTimestamp)
}

func TestLimitedQuestsNeverReset(t *testing.T) {
	e := newTestEnv()
	u := e.addUser("zesty")
	u.Quests.Limited[0].Progress = 1

	now := e.nowMillis() + (90 * 24 * time.Hour).Milliseconds()
	assert.False(t, resetIfExpired(&u.Quests, e.catalog, models.QuestClassLimited, now))
	assert.Equal(t, 1, u.Quests.Limited[0].Progress)
}

func TestAdvanceQuestClampsAndCompletes(t *testing.T) {
	e := newTestEnv()
	u := e.addUser("zesty")

	// lemon-bard has goal 5
	assert.True(t, advanceQuest(&u.Quests, models.QuestClassWeekly, "lemon-bard", 3))
	q := u.Quests.FindQuest("lemon-bard")
	assert.Equal(t, 3, q.Progress)
	assert.False(t, q.Completed)

	assert.True(t, advanceQuest(&u.Quests, models.QuestClassWeekly, "lemon-bard", 10))
	assert.Equal(t, 5, q.Progress, "progress clamps at the goal")
	assert.True(t, q.Completed)

	assert.False(t, advanceQuest(&u.Quests, models.QuestClassWeekly, "lemon-bard", 1), "completed quests are no-ops")
	assert.Equal(t, 5, q.Progress)

	assert.False(t, advanceQuest(&u.Quests, models.QuestClassWeekly, "no-such-quest", 1))
}

func TestSetProgressAbsolute(t *testing.T) {
	e := newTestEnv()
	e.addUser("zesty")

	// social-squeeze has goal 2
	require.NoError(t, e.quests.SetProgress("zesty", models.QuestClassDaily, "social-squeeze", 1))
	q := e.state.Users["zesty"].Quests.FindQuest("social-squeeze")
	assert.Equal(t, 1, q.Progress)

	require.NoError(t, e.quests.SetProgress("zesty", models.QuestClassDaily, "social-squeeze", 99))
	assert.Equal(t, 2, q.Progress, "absolute progress clamps at the goal")
	assert.True(t, q.Completed)

	err := e.quests.SetProgress("zesty", models.QuestClassDaily, "no-such-quest", 1)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	err = e.quests.SetProgress("zesty", models.QuestClass("hourly"), "social-squeeze", 1)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}

func TestClaimPaysExactlyOnce(t *testing.T) {
	e := newTestEnv()
	u := e.addUser("zesty")

	_, err := e.quests.Claim("zesty", "community-zest")
	require.Error(t, err)
	assert.Equal(t, models.KindStateConflict, models.KindOf(err), "incomplete quests cannot be claimed")

	advanceQuest(&u.Quests, models.QuestClassDaily, "community-zest", 1)

	reward, err := e.quests.Claim("zesty", "community-zest")
	require.NoError(t, err)
	assert.Equal(t, int64(25), reward)
	assert.Equal(t, int64(25), u.Points)

	_, err = e.quests.Claim("zesty", "community-zest")
	require.Error(t, err)
	assert.Equal(t, models.KindStateConflict, models.KindOf(err), "second claim conflicts")
	assert.Equal(t, int64(25), u.Points, "reward paid exactly once")

	_, err = e.quests.Claim("zesty", "no-such-quest")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestBoardResetsExpiredWindows(t *testing.T) {
	e := newTestEnv()
	u := e.addUser("zesty")
	advanceQuest(&u.Quests, models.QuestClassDaily, "community-zest", 1)

	e.clock.Advance(25 * time.Hour)
	board, err := e.quests.Board("zesty")
	require.NoError(t, err)
	assert.Zero(t, board.Daily[1].Progress, "daily window rolled over")
	assert.Len(t, board.Weekly, 3, "weekly window still open")
	for _, q := range board.Weekly {
		assert.NotEqual(t, e.nowMillis(), q.ResetTimestamp, "unexpired weekly quests untouched")
	}
}

func TestSweepResetsAllUsers(t *testing.T) {
	e := newTestEnv()
	u1 := e.addUser("zesty")
	u2 := e.addUser("pulpy")
	advanceQuest(&u1.Quests, models.QuestClassDaily, "community-zest", 1)
	advanceQuest(&u2.Quests, models.QuestClassDaily, "community-zest", 1)

	e.clock.Advance(8 * 24 * time.Hour)
	saves := e.store.saves
	e.quests.SweepResets()

	assert.Zero(t, u1.Quests.FindQuest("community-zest").Progress)
	assert.Zero(t, u2.Quests.FindQuest("community-zest").Progress)
	assert.Equal(t, saves+1, e.store.saves, "one snapshot save per sweep")

	e.quests.SweepResets()
	assert.Equal(t, saves+1, e.store.saves, "clean sweep saves nothing")
}
