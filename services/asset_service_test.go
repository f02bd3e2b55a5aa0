package services

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon-club-service/config"
	"lemon-club-service/utils"
)

func TestPickVariantWeightedFamilies(t *testing.T) {
	pool := []string{"a/diamondtree.png", "a/redtree.png", "a/purpletree.png", "a/goldtree.png"}
	rules := []config.RarityRule{
		{Match: "diamond", Weight: 0.2},
		{Match: "red", Weight: 0.4},
		{Match: "purple", Weight: 0.5},
	}
	first := func(n int) int { return 0 }

	// Total weight 1.1: rolls land in cumulative bands 0.2 / 0.6 / 1.1.
	v, err := PickVariant(pool, rules, 0.0, first)
	require.NoError(t, err)
	assert.Equal(t, "a/diamondtree.png", v)

	v, err = PickVariant(pool, rules, 0.3, first)
	require.NoError(t, err)
	assert.Equal(t, "a/redtree.png", v)

	v, err = PickVariant(pool, rules, 0.9, first)
	require.NoError(t, err)
	assert.Equal(t, "a/purpletree.png", v)
}

func TestPickVariantFallbacks(t *testing.T) {
	first := func(n int) int { return 0 }

	// A matched rule with no family member in the pool falls back to uniform.
	pool := []string{"a/goldtree.png", "a/emeraldtree.png"}
	rules := []config.RarityRule{{Match: "diamond", Weight: 1.0}}
	v, err := PickVariant(pool, rules, 0.5, first)
	require.NoError(t, err)
	assert.Equal(t, "a/goldtree.png", v)

	// No rules at all is a plain uniform pick.
	v, err = PickVariant(pool, nil, 0.5, first)
	require.NoError(t, err)
	assert.Equal(t, "a/goldtree.png", v)

	_, err = PickVariant(nil, rules, 0.5, first)
	assert.Error(t, err, "empty pool cannot be picked from")
}

func TestRarityLabel(t *testing.T) {
	assert.Equal(t, "Diamond", RarityLabel("x/diamondtree.png"))
	assert.Equal(t, "Ruby", RarityLabel("x/redrubysapling.png"))
	assert.Equal(t, "Amethyst", RarityLabel("x/purpleseed.png"))
	assert.Equal(t, "Common", RarityLabel("x/greenseed.png"))
}

func TestGenerateWritesMetadataDocument(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, utils.EnsureOutputDir())

	catalog := config.DefaultCatalog()
	svc := NewAssetService(catalog, "http://localhost:3000", "service-wallet", rand.New(rand.NewSource(7)))

	refs, err := svc.Generate(context.Background(), "abc123", 1)
	require.NoError(t, err)
	assert.Contains(t, refs.ImageURI, "sprout", "image comes from the stage's layer pool")
	assert.Equal(t, "http://localhost:3000/output/nft_abc123.json", refs.MetadataURI)
	assert.NotEmpty(t, refs.Rarity)

	data, err := os.ReadFile(utils.OutputPath("nft_abc123.json"))
	require.NoError(t, err)

	var meta struct {
		Name       string `json:"name"`
		Symbol     string `json:"symbol"`
		Image      string `json:"image"`
		Attributes []struct {
			TraitType string `json:"trait_type"`
			Value     string `json:"value"`
		} `json:"attributes"`
		SellerFee  int `json:"seller_fee_basis_points"`
		Properties struct {
			Creators []struct {
				Address string `json:"address"`
				Share   int    `json:"share"`
			} `json:"creators"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "Lemon Sprout #abc123", meta.Name)
	assert.Equal(t, "LSPRT", meta.Symbol)
	assert.Equal(t, refs.ImageURI, meta.Image)
	assert.Equal(t, 500, meta.SellerFee)
	require.Len(t, meta.Properties.Creators, 1)
	assert.Equal(t, "service-wallet", meta.Properties.Creators[0].Address)

	traits := make(map[string]string)
	for _, a := range meta.Attributes {
		traits[a.TraitType] = a.Value
	}
	assert.Equal(t, "Sprout", traits["Stage"])
	assert.NotEmpty(t, traits["Rarity"])
	assert.NotEmpty(t, traits["Background"])
}
