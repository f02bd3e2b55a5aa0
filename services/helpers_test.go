package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"lemon-club-service/config"
	"lemon-club-service/models"
	"lemon-club-service/store"
)

// memStore is an in-memory Store stub counting saves.
type memStore struct {
	saves int
}

func (m *memStore) Load() (*store.State, error) { return store.NewState(), nil }

func (m *memStore) Save(state *store.State) error {
	m.saves++
	return nil
}

// fakeLedger is a scriptable LedgerClient for service tests.
type fakeLedger struct {
	balance    int64
	mintErr    error
	updateErr  error
	balanceErr error

	minted  int
	updated int
}

func (f *fakeLedger) Mint(ctx context.Context, owner, name, symbol, metadataURI string) (*MintResult, error) {
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	f.minted++
	return &MintResult{MintAddress: "mint-addr-1", Signature: "sig-1"}, nil
}

func (f *fakeLedger) UpdateMetadata(ctx context.Context, mintAddress, name, symbol, metadataURI string) (*TxResult, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated++
	return &TxResult{Signature: "sig-update"}, nil
}

func (f *fakeLedger) GetBalance(ctx context.Context, address string) (int64, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeLedger) FindByReference(ctx context.Context, mintAddress string) (*TokenInfo, error) {
	return &TokenInfo{Name: "Lemon Seed", Symbol: "LSEED"}, nil
}

type testEnv struct {
	state   *store.State
	store   *memStore
	catalog *config.Catalog
	clock   *clockwork.FakeClock
	ledger  *fakeLedger

	quests *QuestService
	users  *UserService
	nfts   *NFTService
	posts  *PostService
}

func newTestEnv() *testEnv {
	e := &testEnv{
		state:   store.NewState(),
		store:   &memStore{},
		catalog: config.DefaultCatalog(),
		clock:   clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		ledger:  &fakeLedger{balance: 50_000_000},
	}
	assets := NewAssetService(e.catalog, "http://localhost:3000", "service-wallet", rand.New(rand.NewSource(1)))
	e.quests = NewQuestService(e.state, e.store, e.catalog, e.clock)
	e.users = NewUserService(e.state, e.store, e.catalog, e.clock, e.quests)
	e.nfts = NewNFTService(e.state, e.store, e.catalog, e.clock, e.ledger, assets, e.quests, "service-wallet", 30_000_000)
	e.posts = NewPostService(e.state, e.store, e.clock, e.quests)
	return e
}

func (e *testEnv) nowMillis() int64 { return e.clock.Now().UnixMilli() }

// addUser inserts a user directly, bypassing registration.
func (e *testEnv) addUser(username string, nfts ...*models.NFT) *models.User {
	u := &models.User{
		NFTs:   nfts,
		Quests: seedQuestLog(e.catalog, e.nowMillis()),
	}
	e.state.Users[username] = u
	return u
}
