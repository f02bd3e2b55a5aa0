package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon-club-service/models"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	cat := DefaultCatalog()
	require.NoError(t, validateCatalog(cat))

	assert.Len(t, cat.Stages, 4)
	assert.Equal(t, int64(0), cat.Stages[0].MinPoints)
	assert.Equal(t, int64(90), cat.Stages[3].MinPoints)
	assert.Len(t, cat.Templates(models.QuestClassDaily), 3)
	assert.Len(t, cat.Templates(models.QuestClassLimited), 1)
	assert.NotEmpty(t, cat.StagePool(0))
	assert.NotEmpty(t, cat.Layers.Backgrounds)
}

func TestStagePoolFallsBackToSeed(t *testing.T) {
	cat := DefaultCatalog()
	assert.Equal(t, cat.Layers.Seed, cat.StagePool(-1))
	assert.Equal(t, cat.Layers.Seed, cat.StagePool(99))
	assert.Equal(t, cat.Layers.Tree, cat.StagePool(3))
}

func TestLoadCatalogFromTOML(t *testing.T) {
	doc := `
[[daily]]
id = "test-quest"
name = "Test Quest"
desc = "Do the thing"
goal = 2
reward = 10

[[stages]]
name = "Lemon Seed"
symbol = "LSEED"
uri = "http://example.com/seed.json"
min_points = 0

[[stages]]
name = "Lemon Tree"
symbol = "LTREE"
uri = "http://example.com/tree.json"
min_points = 50

[layers]
backgrounds = ["bg.png"]
seed = ["seed.png"]

[[rarity]]
match = "diamond"
weight = 0.2
`
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, cat.Daily, 1)
	assert.Equal(t, "test-quest", cat.Daily[0].ID)
	assert.Equal(t, int64(10), cat.Daily[0].Reward)
	require.Len(t, cat.Stages, 2)
	assert.Equal(t, int64(50), cat.Stages[1].MinPoints)
	require.Len(t, cat.Rarity, 1)
	assert.Equal(t, 0.2, cat.Rarity[0].Weight)
}

func TestLoadCatalogRejectsInvalidData(t *testing.T) {
	doc := `
[[daily]]
id = "broken"
goal = 0
reward = 10

[[stages]]
name = "Only Stage"
symbol = "ONLY"
min_points = 0

[[stages]]
name = "Second Stage"
symbol = "SECOND"
min_points = 10
`
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadCatalog(path)
	assert.Error(t, err, "zero-goal quest templates are rejected")

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	cat, err := LoadCatalog("")
	require.NoError(t, err)
	assert.NotNil(t, cat, "empty path means the built-in catalog")
}
