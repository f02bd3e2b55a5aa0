package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"lemon-club-service/config"
	"lemon-club-service/models"
	"lemon-club-service/store"
)

// NFTService drives the collectible lifecycle: mint, evolve, stake, unstake
// and the hydrated listing. External calls (ledger, asset generation) happen
// outside the state lock; the lock is taken only to apply the resulting
// mutation, and preconditions are re-checked then.
type NFTService struct {
	state   *store.State
	store   store.Store
	catalog *config.Catalog
	clock   clockwork.Clock
	ledger  LedgerClient
	assets  *AssetService
	quests  *QuestService

	serviceWallet  string
	minMintBalance int64
}

func NewNFTService(state *store.State, st store.Store, catalog *config.Catalog, clock clockwork.Clock,
	ledger LedgerClient, assets *AssetService, quests *QuestService, serviceWallet string, minMintBalance int64) *NFTService {
	return &NFTService{
		state:          state,
		store:          st,
		catalog:        catalog,
		clock:          clock,
		ledger:         ledger,
		assets:         assets,
		quests:         quests,
		serviceWallet:  serviceWallet,
		minMintBalance: minMintBalance,
	}
}

func (s *NFTService) now() int64 { return s.clock.Now().UnixMilli() }

// newTokenID returns a short unique id for generated asset filenames.
func newTokenID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (s *NFTService) userExists(username string) bool {
	s.state.RLock()
	defer s.state.RUnlock()
	_, ok := s.state.Users[username]
	return ok
}

type MintReceipt struct {
	MintAddress   string `json:"mintAddress"`
	TxSignature   string `json:"transactionSignature"`
	ImageURI      string `json:"imageUri"`
	MetadataURI   string `json:"metadataUri"`
	MintTimestamp int64  `json:"mintTimestamp"`
}

// Mint creates a new seed-stage collectible: balance preflight, asset
// generation, ledger mint, and only then the local record. A ledger failure
// leaves local state untouched.
func (s *NFTService) Mint(ctx context.Context, username, ownerWallet string) (*MintReceipt, error) {
	if ownerWallet == "" {
		return nil, models.Validationf("mint", "wallet address required")
	}
	if !s.userExists(username) {
		return nil, models.NotFoundf("mint", "user %s not found — please login", username)
	}

	if s.serviceWallet != "" {
		balance, err := s.ledger.GetBalance(ctx, s.serviceWallet)
		if err != nil {
			return nil, externalErr("mint", "balance preflight failed", err)
		}
		if balance < s.minMintBalance {
			return nil, models.Insufficientf("mint",
				"service wallet balance %d below mint threshold %d lamports", balance, s.minMintBalance)
		}
	}

	tokenID := newTokenID()
	seed := s.catalog.Stages[0]
	refs, err := s.assets.Generate(ctx, tokenID, 0)
	if err != nil {
		return nil, err
	}

	name := seed.Name + " #" + tokenID
	minted, err := s.ledger.Mint(ctx, ownerWallet, name, seed.Symbol, refs.MetadataURI)
	if err != nil {
		return nil, externalErr("mint", "ledger mint failed", err)
	}

	s.state.Lock()
	defer s.state.Unlock()

	u, ok := s.state.Users[username]
	if !ok {
		// Users are never deleted, so the earlier existence check holds.
		return nil, models.NotFoundf("mint", "user %s not found", username)
	}

	now := s.now()
	u.NFTs = append(u.NFTs, &models.NFT{
		MintAddress:   minted.MintAddress,
		MintTimestamp: now,
		ImageURI:      refs.ImageURI,
		MetadataURI:   refs.MetadataURI,
	})
	s.quests.ensureLog(u)
	advanceQuest(&u.Quests, models.QuestClassDaily, "lemon-picker", 1)
	persistState(s.store, s.state, "Mint")

	log.Printf("[Mint] Success: minted %s for %s, address %s", name, username, minted.MintAddress)
	return &MintReceipt{
		MintAddress:   minted.MintAddress,
		TxSignature:   minted.Signature,
		ImageURI:      refs.ImageURI,
		MetadataURI:   refs.MetadataURI,
		MintTimestamp: now,
	}, nil
}

type EvolveReceipt struct {
	StageName   string `json:"name"`
	StageSymbol string `json:"symbol"`
	TxSignature string `json:"transactionSignature"`
	UsedRewards bool   `json:"usedRewards"`
	ImageURI    string `json:"imageUri"`
}

// Evolve advances a record to its next stage. The eligibility check runs
// first so ineligible records never trigger external calls; the actual spend
// happens after the ledger update succeeds, re-validated under the lock, so a
// collaborator failure cannot burn points or reward units.
func (s *NFTService) Evolve(ctx context.Context, username, mintAddress string) (*EvolveReceipt, error) {
	s.state.RLock()
	u, ok := s.state.Users[username]
	if !ok {
		s.state.RUnlock()
		return nil, models.NotFoundf("evolve", "user %s not found — please login", username)
	}
	n := u.FindNFT(mintAddress)
	if n == nil {
		s.state.RUnlock()
		return nil, models.NotFoundf("evolve", "NFT not found")
	}
	nextStage, nextIndex, ok := models.NextStage(s.catalog.Stages, n.Stage)
	if !ok {
		s.state.RUnlock()
		return nil, models.Conflictf("evolve", "no next stage available")
	}
	if !CanEvolve(n, nextStage) {
		s.state.RUnlock()
		return nil, models.Insufficientf("evolve",
			"not enough points or rewards (need %d+ points or %d+ rewards)",
			nextStage.MinPoints, RewardUnitsPerEvolution)
	}
	s.state.RUnlock()

	tokenID := newTokenID()
	refs, err := s.assets.Generate(ctx, tokenID, nextIndex)
	if err != nil {
		return nil, err
	}
	name := nextStage.Name + " #" + tokenID
	tx, err := s.ledger.UpdateMetadata(ctx, mintAddress, name, nextStage.Symbol, refs.MetadataURI)
	if err != nil {
		return nil, externalErr("evolve", "ledger metadata update failed", err)
	}

	s.state.Lock()
	defer s.state.Unlock()

	u, ok = s.state.Users[username]
	if !ok {
		return nil, models.NotFoundf("evolve", "user %s not found", username)
	}
	n = u.FindNFT(mintAddress)
	if n == nil {
		return nil, models.NotFoundf("evolve", "NFT not found")
	}
	reached, usedRewards, err := ApplyEvolution(n, s.catalog.Stages)
	if err != nil {
		// The record changed between the precheck and the ledger update;
		// the ledger now leads local state by one stage until the next evolve.
		log.Printf("[Evolve] ⚠️ spend re-validation failed for %s/%s: %v", username, mintAddress, err)
		return nil, err
	}
	n.ImageURI = refs.ImageURI
	n.MetadataURI = refs.MetadataURI
	s.quests.ensureLog(u)
	advanceQuest(&u.Quests, models.QuestClassLimited, "million-lemon-bash", 1)
	persistState(s.store, s.state, "Evolve")

	log.Printf("[Evolve] %s/%s reached %s (usedRewards=%t)", username, mintAddress, reached.Name, usedRewards)
	return &EvolveReceipt{
		StageName:   reached.Name,
		StageSymbol: reached.Symbol,
		TxSignature: tx.Signature,
		UsedRewards: usedRewards,
		ImageURI:    refs.ImageURI,
	}, nil
}

// Stake opens a stake interval on a record and advances the weekly
// grove-keeper quest.
func (s *NFTService) Stake(username, mintAddress string) error {
	s.state.Lock()
	defer s.state.Unlock()

	u, ok := s.state.Users[username]
	if !ok {
		return models.NotFoundf("stake", "user %s not found — please login", username)
	}
	n := u.FindNFT(mintAddress)
	if n == nil {
		return models.NotFoundf("stake", "NFT not found")
	}
	if err := StakeNFT(n, s.now()); err != nil {
		return err
	}
	s.quests.ensureLog(u)
	advanceQuest(&u.Quests, models.QuestClassWeekly, "grove-keeper", 1)
	persistState(s.store, s.state, "Stake")
	return nil
}

// Unstake closes the stake interval, banking one reward unit per full staked
// minute. Returns the record's total reward balance after banking.
func (s *NFTService) Unstake(username, mintAddress string) (int64, error) {
	s.state.Lock()
	defer s.state.Unlock()

	u, ok := s.state.Users[username]
	if !ok {
		return 0, models.NotFoundf("unstake", "user %s not found — please login", username)
	}
	n := u.FindNFT(mintAddress)
	if n == nil {
		return 0, models.NotFoundf("unstake", "NFT not found")
	}
	earned, err := UnstakeNFT(n, s.now())
	if err != nil {
		return 0, err
	}
	persistState(s.store, s.state, "Unstake")
	log.Printf("[Unstake] %s/%s earned %d reward units", username, mintAddress, earned)
	return n.Rewards, nil
}

// NFTView is one hydrated listing entry.
type NFTView struct {
	NFT struct {
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		MintAddress string `json:"mintAddress"`
	} `json:"nft"`
	Points        int64  `json:"points"`
	NextMinPoints *int64 `json:"nextMinPoints"`
	Staked        bool   `json:"staked"`
	Rewards       int64  `json:"rewards"`
	MintTimestamp int64  `json:"mintTimestamp"`
	ImageURI      string `json:"imageUri"`
}

// List returns the user's records hydrated with on-ledger name/symbol.
// Ledger lookups run concurrently and fall back to the configured stage
// ladder when the ledger is unreachable, so the listing stays available.
// Reward balances are the read-only staking projection.
func (s *NFTService) List(ctx context.Context, username string) ([]NFTView, error) {
	s.state.RLock()
	u, ok := s.state.Users[username]
	if !ok {
		s.state.RUnlock()
		return []NFTView{}, nil
	}
	records := make([]models.NFT, len(u.NFTs))
	for i, n := range u.NFTs {
		records[i] = *n
	}
	s.state.RUnlock()

	now := s.now()
	views := make([]NFTView, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range records {
		g.Go(func() error {
			n := records[i]
			v := &views[i]

			stage := models.StageAt(s.catalog.Stages, n.Stage)
			v.NFT.Name = stage.Name
			v.NFT.Symbol = stage.Symbol
			v.NFT.MintAddress = n.MintAddress
			if info, err := s.ledger.FindByReference(gctx, n.MintAddress); err != nil {
				log.Printf("[NFT] ledger lookup failed for %s, using local stage: %v", n.MintAddress, err)
			} else {
				v.NFT.Name = info.Name
				v.NFT.Symbol = info.Symbol
			}

			if next, _, ok := models.NextStage(s.catalog.Stages, n.Stage); ok {
				min := next.MinPoints
				v.NextMinPoints = &min
			}
			v.Points = n.Points
			v.Staked = n.Staked
			v.Rewards = PreviewRewards(&n, now)
			v.MintTimestamp = n.MintTimestamp
			v.ImageURI = n.ImageURI
			return nil
		})
	}
	_ = g.Wait()
	return views, nil
}
