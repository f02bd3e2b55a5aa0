package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/gosimple/slug"

	"lemon-club-service/config"
	"lemon-club-service/models"
	"lemon-club-service/utils"
)

// AssetService is the asset-generation collaborator: it picks art variants,
// writes the metadata document under ./output and uploads it to R2 when
// configured. The core only ever sees the returned references.
type AssetService struct {
	catalog       *config.Catalog
	publicBaseURL string
	serviceWallet string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAssetService seeds its own source; tests pass a fixed-seed rand.Rand.
func NewAssetService(catalog *config.Catalog, publicBaseURL, serviceWallet string, rng *rand.Rand) *AssetService {
	return &AssetService{
		catalog:       catalog,
		publicBaseURL: publicBaseURL,
		serviceWallet: serviceWallet,
		rng:           rng,
	}
}

// PickVariant selects one item from pool using a cumulative-weight threshold
// scan over the rarity rules: roll (in [0,1)) is scaled to the total weight,
// the first rule whose cumulative weight covers it wins, and the pool is
// filtered to that rule's family. An empty family — or no rules at all —
// falls back to a uniform pick. Pure: all randomness comes in through roll
// and pickIndex.
func PickVariant(pool []string, rules []config.RarityRule, roll float64, pickIndex func(n int) int) (string, error) {
	if len(pool) == 0 {
		return "", fmt.Errorf("no variants available for selection")
	}
	if len(rules) > 0 {
		var total float64
		for _, r := range rules {
			total += r.Weight
		}
		target := roll * total
		var sum float64
		for _, r := range rules {
			sum += r.Weight
			if target <= sum {
				var family []string
				for _, item := range pool {
					if strings.Contains(item, r.Match) {
						family = append(family, item)
					}
				}
				if len(family) > 0 {
					return family[pickIndex(len(family))], nil
				}
				return pool[pickIndex(len(pool))], nil
			}
		}
	}
	return pool[pickIndex(len(pool))], nil
}

// RarityLabel names the rarity family a variant URL belongs to.
func RarityLabel(variant string) string {
	switch {
	case strings.Contains(variant, "diamond"):
		return "Diamond"
	case strings.Contains(variant, "red"):
		return "Ruby"
	case strings.Contains(variant, "purple"):
		return "Amethyst"
	default:
		return "Common"
	}
}

// AssetRefs are the opaque references the core stores on a record.
type AssetRefs struct {
	ImageURI    string
	MetadataURI string
	Rarity      string
}

type assetAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type assetMetadata struct {
	Name                 string           `json:"name"`
	Symbol               string           `json:"symbol"`
	Description          string           `json:"description"`
	Image                string           `json:"image"`
	Attributes           []assetAttribute `json:"attributes"`
	SellerFeeBasisPoints int              `json:"seller_fee_basis_points"`
	Collection           struct {
		Name   string `json:"name"`
		Family string `json:"family"`
	} `json:"collection"`
	Properties struct {
		Files []struct {
			URI  string `json:"uri"`
			Type string `json:"type"`
		} `json:"files"`
		Category string `json:"category"`
		Creators []struct {
			Address string `json:"address"`
			Share   int    `json:"share"`
		} `json:"creators"`
	} `json:"properties"`
}

// Generate produces the image and metadata references for a token at a given
// stage. The image reference is the selected art layer; the metadata document
// is written locally and mirrored to R2 when uploads are enabled.
func (s *AssetService) Generate(ctx context.Context, tokenID string, stageIndex int) (*AssetRefs, error) {
	stage := models.StageAt(s.catalog.Stages, stageIndex)

	s.mu.Lock()
	roll := s.rng.Float64()
	background, err := PickVariant(s.catalog.Layers.Backgrounds, nil, 0, s.rng.Intn)
	if err != nil {
		s.mu.Unlock()
		return nil, models.External("generate", "no background variants configured", err)
	}
	base, err := PickVariant(s.catalog.StagePool(stageIndex), s.catalog.Rarity, roll, s.rng.Intn)
	s.mu.Unlock()
	if err != nil {
		return nil, models.External("generate", "no base variants configured", err)
	}

	rarity := RarityLabel(base)
	meta := assetMetadata{
		Name:                 fmt.Sprintf("%s #%s", stage.Name, tokenID),
		Symbol:               stage.Symbol,
		Description:          fmt.Sprintf("A unique Lemon Club NFT at the %s stage with %s rarity!", stage.Name, rarity),
		Image:                base,
		SellerFeeBasisPoints: 500,
		Attributes: []assetAttribute{
			{TraitType: "Stage", Value: stageShortName(stage.Name)},
			{TraitType: "Rarity", Value: rarity},
			{TraitType: "Background", Value: layerBasename(background)},
			{TraitType: "Base", Value: layerBasename(base)},
		},
	}
	meta.Collection.Name = "Lemon Club Collective"
	meta.Collection.Family = "LCC"
	meta.Properties.Category = "image"
	meta.Properties.Files = []struct {
		URI  string `json:"uri"`
		Type string `json:"type"`
	}{{URI: base, Type: "image/png"}}
	if s.serviceWallet != "" {
		meta.Properties.Creators = []struct {
			Address string `json:"address"`
			Share   int    `json:"share"`
		}{{Address: s.serviceWallet, Share: 100}}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, models.External("generate", "failed to encode metadata", err)
	}

	filename := fmt.Sprintf("nft_%s.json", tokenID)
	if err := os.WriteFile(utils.OutputPath(filename), data, 0o644); err != nil {
		return nil, models.External("generate", "failed to write metadata", err)
	}
	log.Printf("[Generate] Metadata saved: %s", utils.OutputPath(filename))

	metadataURI := fmt.Sprintf("%s/output/%s", s.publicBaseURL, filename)
	if utils.R2Enabled() {
		key := fmt.Sprintf("nft/%s/%s.json", slug.Make(stage.Name), tokenID)
		if url, upErr := utils.UploadBytesToR2(ctx, data, key, "application/json"); upErr != nil {
			log.Printf("[Generate] ⚠️ R2 upload failed, serving local metadata: %v", upErr)
		} else {
			metadataURI = url
		}
	}

	return &AssetRefs{ImageURI: base, MetadataURI: metadataURI, Rarity: rarity}, nil
}

// stageShortName drops the collection prefix ("Lemon Seed" → "Seed").
func stageShortName(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	return fields[len(fields)-1]
}

func layerBasename(url string) string {
	return strings.TrimSuffix(path.Base(url), path.Ext(url))
}
