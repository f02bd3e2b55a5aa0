package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"lemon-club-service/models"
)

const layerBaseURL = "https://raw.githubusercontent.com/LemonClubCollective/NFT/main"

// RarityRule weights a variant family during the asset pick. Rules are
// scanned in order with a cumulative threshold, so order matters.
type RarityRule struct {
	Match  string  `toml:"match"` // substring matched against layer URLs
	Weight float64 `toml:"weight"`
}

// LayerSet is the pool of art layers per evolution stage.
type LayerSet struct {
	Backgrounds []string `toml:"backgrounds"`
	Seed        []string `toml:"seed"`
	Sprout      []string `toml:"sprout"`
	Sapling     []string `toml:"sapling"`
	Tree        []string `toml:"tree"`
}

// Catalog is the process-wide, read-only game data: quest templates per
// recurrence class, the stage ladder, and asset layer tables. It is loaded
// once at startup and never mutated afterwards.
type Catalog struct {
	Daily   []models.QuestTemplate `toml:"daily"`
	Weekly  []models.QuestTemplate `toml:"weekly"`
	Limited []models.QuestTemplate `toml:"limited"`
	Stages  []models.Stage         `toml:"stages"`
	Layers  LayerSet               `toml:"layers"`
	Rarity  []RarityRule           `toml:"rarity"`
}

// Templates returns the templates for a recurrence class.
func (c *Catalog) Templates(class models.QuestClass) []models.QuestTemplate {
	switch class {
	case models.QuestClassDaily:
		return c.Daily
	case models.QuestClassWeekly:
		return c.Weekly
	case models.QuestClassLimited:
		return c.Limited
	}
	return nil
}

// StagePool returns the layer pool for a stage index (seed pool as fallback
// mirrors the historical behavior for unknown stage names).
func (c *Catalog) StagePool(stageIndex int) []string {
	pools := [][]string{c.Layers.Seed, c.Layers.Sprout, c.Layers.Sapling, c.Layers.Tree}
	if stageIndex < 0 || stageIndex >= len(pools) {
		return c.Layers.Seed
	}
	return pools[stageIndex]
}

// LoadCatalog returns the built-in catalog, or the decoded TOML file when
// path is set. The file replaces the catalog wholesale; partial overrides are
// not merged.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer file.Close()

	var cat Catalog
	if err := toml.NewDecoder(file).Decode(&cat); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := validateCatalog(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func validateCatalog(c *Catalog) error {
	if len(c.Stages) < 2 {
		return fmt.Errorf("catalog needs at least two stages, got %d", len(c.Stages))
	}
	for _, class := range models.QuestClasses {
		for _, t := range c.Templates(class) {
			if t.ID == "" || t.Goal <= 0 || t.Reward <= 0 {
				return fmt.Errorf("invalid %s quest template %q", class, t.ID)
			}
		}
	}
	return nil
}

func layers(names ...string) []string {
	urls := make([]string, len(names))
	for i, n := range names {
		urls[i] = layerBaseURL + "/" + n
	}
	return urls
}

// DefaultCatalog is the compiled-in game data the service shipped with.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Daily: []models.QuestTemplate{
			{ID: "lemon-picker", Name: "Lemon Picker", Desc: "Mint 1 NFT", Goal: 1, Reward: 50},
			{ID: "community-zest", Name: "Community Zest", Desc: "Submit 1 forum post", Goal: 1, Reward: 25},
			{ID: "social-squeeze", Name: "Social Squeeze", Desc: "Visit 2 social media links", Goal: 2, Reward: 20},
		},
		Weekly: []models.QuestTemplate{
			{ID: "grove-keeper", Name: "Grove Keeper", Desc: "Stake 3 NFTs", Goal: 3, Reward: 200},
			{ID: "lemon-bard", Name: "Lemon Bard", Desc: "Post 5 comments or posts", Goal: 5, Reward: 150},
			{ID: "visit-sections", Name: "Citrus Explorer", Desc: "Visit all 7 sections", Goal: 7, Reward: 100},
		},
		Limited: []models.QuestTemplate{
			{ID: "million-lemon-bash", Name: "Million Lemon Bash", Desc: "Evolve 2 NFTs", Goal: 2, Reward: 500},
		},
		Stages: []models.Stage{
			{Name: "Lemon Seed", Symbol: "LSEED", URI: layerBaseURL + "/refs/heads/main/seed.json", MinPoints: 0},
			{Name: "Lemon Sprout", Symbol: "LSPRT", URI: layerBaseURL + "/refs/heads/main/sprout.json", MinPoints: 30},
			{Name: "Lemon Sapling", Symbol: "LSAPL", URI: layerBaseURL + "/refs/heads/main/sapling.json", MinPoints: 60},
			{Name: "Lemon Tree", Symbol: "LTREE", URI: layerBaseURL + "/refs/heads/main/tree.json", MinPoints: 90},
		},
		Layers: LayerSet{
			Backgrounds: layers(
				"BGsunset.png", "BGsunsetforest1.png", "BGstars.png", "BGstars1.png",
				"BGnightforest.png", "BGnightforest1.png", "BGgreengrass.png",
				"BGgrassfield.png", "BGgrassfieldswirl.png", "BGforestsunset.png",
				"BGanimesunset.png", "BGcloudsevening.png", "BGforestgrass.png",
			),
			Seed: layers(
				"brownseed.png", "magicseed.png", "magicseed1.png", "magicseed2.png",
				"purpleseed.png", "purpleseed1.png", "purpleseed3.png", "greenseed.png",
			),
			Sprout: layers(
				"sprout.png", "magicsprout.png", "magicsprout1.png", "greensprout.png",
				"greensprout2.png", "purplesprout.png", "purplesprout1.png", "purplesprout2.png",
			),
			Sapling: layers(
				"sapling.png", "greensapling.png", "purplesapling.png", "purplesapling1.png",
				"purplesapling2.png", "redrubysapling.png", "redrubysapling2.png",
				"redrubysapling3.png", "goldensapling.png", "goldensapling1.png", "goldensapling2.png",
			),
			Tree: layers(
				"goldentree.png", "emeraldtree.png", "purpletree.png", "purpletree1.png",
				"redtree.png", "redtree1.png", "redtree2.png", "goldtree1.png",
				"goldtree2.png", "goldentree3.png", "diamondtree.png",
			),
		},
		Rarity: []RarityRule{
			{Match: "diamond", Weight: 0.2},
			{Match: "red", Weight: 0.4},
			{Match: "purple", Weight: 0.5},
		},
	}
}
