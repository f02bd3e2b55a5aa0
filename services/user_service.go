package services

import (
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"lemon-club-service/config"
	"lemon-club-service/models"
	"lemon-club-service/store"
)

// UserService handles registration and the login-gated daily point
// distribution.
type UserService struct {
	state   *store.State
	store   store.Store
	catalog *config.Catalog
	clock   clockwork.Clock
	quests  *QuestService
}

func NewUserService(state *store.State, st store.Store, catalog *config.Catalog, clock clockwork.Clock, quests *QuestService) *UserService {
	return &UserService{state: state, store: st, catalog: catalog, clock: clock, quests: quests}
}

// Register creates a new user with a seeded quest log. Usernames are unique
// forever; users are never deleted.
func (s *UserService) Register(username, password string) error {
	if username == "" || password == "" {
		return models.Validationf("register", "username and password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.External("register", "failed to hash password", err)
	}

	s.state.Lock()
	defer s.state.Unlock()

	if _, exists := s.state.Users[username]; exists {
		return models.Conflictf("register", "username already taken")
	}

	s.state.Users[username] = &models.User{
		Password: string(hash),
		NFTs:     []*models.NFT{},
		Quests:   seedQuestLog(s.catalog, s.clock.Now().UnixMilli()),
	}
	persistState(s.store, s.state, "Register")
	log.Printf("[Register] New user: %s", username)
	return nil
}

// NFTSummary is the slim per-record view login returns.
type NFTSummary struct {
	MintAddress string `json:"mintAddress"`
	Points      int64  `json:"points"`
}

type LoginResult struct {
	NFTs          []NFTSummary `json:"nfts"`
	PointsAwarded bool         `json:"pointsAwarded"`
}

// Login verifies credentials and, once per 24-hour window, awards one point
// to every owned record and reset-checks the recurring quest classes.
// Repeated logins inside the window verify credentials but mutate nothing.
func (s *UserService) Login(username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, models.Validationf("login", "username and password required")
	}

	s.state.Lock()
	defer s.state.Unlock()

	u, ok := s.state.Users[username]
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, models.Conflictf("login", "invalid credentials")
	}

	now := s.clock.Now().UnixMilli()
	res := &LoginResult{}
	if now-u.LastLogin >= (24 * time.Hour).Milliseconds() {
		for _, n := range u.NFTs {
			n.Points++
		}
		u.LastLogin = now
		res.PointsAwarded = true

		s.quests.ensureLog(u)
		resetIfExpired(&u.Quests, s.catalog, models.QuestClassDaily, now)
		resetIfExpired(&u.Quests, s.catalog, models.QuestClassWeekly, now)

		persistState(s.store, s.state, "Login")
		log.Printf("[Login] Success for %s: awarded points for %d NFTs", username, len(u.NFTs))
	} else {
		log.Printf("[Login] Success for %s: no points, within 24-hour cooldown", username)
	}

	res.NFTs = make([]NFTSummary, 0, len(u.NFTs))
	for _, n := range u.NFTs {
		res.NFTs = append(res.NFTs, NFTSummary{MintAddress: n.MintAddress, Points: n.Points})
	}
	return res, nil
}
