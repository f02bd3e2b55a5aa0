package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon-club-service/models"
)

func TestFileStoreLoadMissingFiles(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	state, err := fs.Load()
	require.NoError(t, err)
	assert.NotNil(t, state.Users, "fresh install yields an empty user map")
	assert.Empty(t, state.Users)
	assert.Empty(t, state.Posts)
}

func TestFileStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)

	state := NewState()
	state.Users["zesty"] = &models.User{
		Password: "hash",
		Points:   120,
		NFTs: []*models.NFT{
			{MintAddress: "m1", Points: 31, Staked: true, StakeStart: 1_700_000_000_000, Rewards: 2, Stage: 1},
		},
		Quests: models.QuestLog{
			Daily: []*models.QuestInstance{
				{ID: "lemon-picker", Goal: 1, Reward: 50, Progress: 1, Completed: true, Claimed: true, ResetTimestamp: 1_700_000_000_000},
			},
		},
	}
	state.Posts = []*models.Post{
		{
			Wallet:  "m1",
			Content: "hello grove",
			Likes:   3,
			Comments: []*models.Comment{
				{Wallet: "m2", Content: "zesty take", Replies: []*models.Comment{
					{Wallet: "m1", Content: "thanks"},
				}},
			},
		},
	}
	require.NoError(t, fs.Save(state))

	loaded, err := fs.Load()
	require.NoError(t, err)

	u := loaded.Users["zesty"]
	require.NotNil(t, u)
	assert.Equal(t, int64(120), u.Points)
	require.Len(t, u.NFTs, 1)
	assert.Equal(t, "m1", u.NFTs[0].MintAddress)
	assert.True(t, u.NFTs[0].Staked)
	assert.Equal(t, 1, u.NFTs[0].Stage)
	require.Len(t, u.Quests.Daily, 1)
	assert.True(t, u.Quests.Daily[0].Claimed)

	require.Len(t, loaded.Posts, 1)
	assert.Equal(t, "hello grove", loaded.Posts[0].Content)
	require.Len(t, loaded.Posts[0].Comments, 1)
	require.Len(t, loaded.Posts[0].Comments[0].Replies, 1)
	assert.Equal(t, "thanks", loaded.Posts[0].Comments[0].Replies[0].Content)
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)

	state := NewState()
	state.Users["zesty"] = &models.User{Password: "hash"}
	require.NoError(t, fs.Save(state))
	require.NoError(t, fs.Save(state))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.ElementsMatch(t, []string{"users.json", "posts.json"}, names, "commits are rename-only")

	_, err = os.Stat(filepath.Join(dir, "users.json"))
	assert.NoError(t, err)
}

func TestFileStoreCorruptSnapshotFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644))

	_, err := NewFileStore(dir).Load()
	assert.Error(t, err)
}
