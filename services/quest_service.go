package services

import (
	"log"

	"github.com/jonboulle/clockwork"

	"lemon-club-service/config"
	"lemon-club-service/models"
	"lemon-club-service/store"
)

// QuestService owns the quest tracker: window resets, progress advancement
// and reward claims. Catalog data is read-only; all mutation happens on user
// quest logs under the state write lock.
type QuestService struct {
	state   *store.State
	store   store.Store
	catalog *config.Catalog
	clock   clockwork.Clock
}

func NewQuestService(state *store.State, st store.Store, catalog *config.Catalog, clock clockwork.Clock) *QuestService {
	return &QuestService{state: state, store: st, catalog: catalog, clock: clock}
}

func (s *QuestService) now() int64 { return s.clock.Now().UnixMilli() }

// persistState snapshots the full state, logging failures instead of
// propagating them: local durability is best-effort, the in-memory mutation
// stands either way.
func persistState(st store.Store, state *store.State, op string) {
	if err := st.Save(state); err != nil {
		log.Printf("[%s] ⚠️ snapshot save failed: %v", op, err)
	}
}

// seedQuestLog builds a fresh quest log from the catalog. Limited quests get
// no reset timestamp because their window never expires.
func seedQuestLog(catalog *config.Catalog, now int64) models.QuestLog {
	var l models.QuestLog
	for _, class := range models.QuestClasses {
		ts := now
		if class == models.QuestClassLimited {
			ts = 0
		}
		templates := catalog.Templates(class)
		quests := make([]*models.QuestInstance, 0, len(templates))
		for _, t := range templates {
			quests = append(quests, models.NewQuestInstance(t, ts))
		}
		l.SetClass(class, quests)
	}
	return l
}

// resetIfExpired reinitializes every expired instance in the class from the
// catalog while leaving unexpired instances untouched, so calling it twice
// with the same now is a no-op after the first call. Reports whether anything
// changed. Caller holds the state write lock.
func resetIfExpired(l *models.QuestLog, catalog *config.Catalog, class models.QuestClass, now int64) bool {
	if class.Window() == 0 {
		return false
	}
	existing := l.Class(class)
	byID := make(map[string]*models.QuestInstance, len(existing))
	for _, q := range existing {
		byID[q.ID] = q
	}

	templates := catalog.Templates(class)
	changed := len(existing) != len(templates)
	next := make([]*models.QuestInstance, 0, len(templates))
	for _, t := range templates {
		if q, ok := byID[t.ID]; ok && !q.Expired(class, now) {
			next = append(next, q)
			continue
		}
		next = append(next, models.NewQuestInstance(t, now))
		changed = true
	}
	l.SetClass(class, next)
	return changed
}

// advanceQuest adds increment to a quest's progress. Completed quests are
// no-ops. Reports whether progress moved. Caller holds the state write lock.
func advanceQuest(l *models.QuestLog, class models.QuestClass, questID string, increment int) bool {
	for _, q := range l.Class(class) {
		if q.ID == questID {
			return q.Advance(increment)
		}
	}
	return false
}

// claimQuest converts a completed quest into points, exactly once. Caller
// holds the state write lock.
func claimQuest(u *models.User, questID string) (int64, error) {
	q := u.Quests.FindQuest(questID)
	if q == nil {
		return 0, models.NotFoundf("claim", "quest %s not found", questID)
	}
	if !q.Completed || q.Claimed {
		return 0, models.Conflictf("claim", "quest %s not completed or already claimed", questID)
	}
	q.Claimed = true
	u.Points += q.Reward
	return q.Reward, nil
}

// ensureLog seeds a quest log for users from snapshots that predate quests.
// Caller holds the state write lock.
func (s *QuestService) ensureLog(u *models.User) bool {
	if !u.Quests.Empty() {
		return false
	}
	u.Quests = seedQuestLog(s.catalog, s.now())
	return true
}

// QuestBoard is the per-user quest view returned to the transport layer.
type QuestBoard struct {
	Daily   []models.QuestInstance `json:"daily"`
	Weekly  []models.QuestInstance `json:"weekly"`
	Limited []models.QuestInstance `json:"limited"`
	Points  int64                  `json:"points"`
}

func copyQuests(quests []*models.QuestInstance) []models.QuestInstance {
	out := make([]models.QuestInstance, len(quests))
	for i, q := range quests {
		out[i] = *q
	}
	return out
}

// Board runs the reset check for the recurring classes, then reports the
// user's quests and points balance.
func (s *QuestService) Board(username string) (*QuestBoard, error) {
	s.state.Lock()
	defer s.state.Unlock()

	u, ok := s.state.Users[username]
	if !ok {
		return nil, models.NotFoundf("quests", "user %s not found", username)
	}

	changed := s.ensureLog(u)
	now := s.now()
	changed = resetIfExpired(&u.Quests, s.catalog, models.QuestClassDaily, now) || changed
	changed = resetIfExpired(&u.Quests, s.catalog, models.QuestClassWeekly, now) || changed
	if changed {
		persistState(s.store, s.state, "Quests")
	}

	return &QuestBoard{
		Daily:   copyQuests(u.Quests.Daily),
		Weekly:  copyQuests(u.Quests.Weekly),
		Limited: copyQuests(u.Quests.Limited),
		Points:  u.Points,
	}, nil
}

// SetProgress is the client-driven progress endpoint: it overwrites a quest's
// progress with an absolute value, clamped to the goal. Visit-style quests
// (social-squeeze, visit-sections) report totals this way.
func (s *QuestService) SetProgress(username string, class models.QuestClass, questID string, progress int) error {
	if !class.Valid() {
		return models.Validationf("quests", "unknown quest class %q", class)
	}

	s.state.Lock()
	defer s.state.Unlock()

	u, ok := s.state.Users[username]
	if !ok {
		return models.NotFoundf("quests", "user %s not found", username)
	}
	s.ensureLog(u)

	for _, q := range u.Quests.Class(class) {
		if q.ID == questID {
			if q.SetProgress(progress) {
				persistState(s.store, s.state, "Quests")
			}
			return nil
		}
	}
	return models.NotFoundf("quests", "quest %s not found in class %s", questID, class)
}

// Claim pays out a completed quest's reward, exactly once per instance.
func (s *QuestService) Claim(username, questID string) (int64, error) {
	s.state.Lock()
	defer s.state.Unlock()

	u, ok := s.state.Users[username]
	if !ok {
		return 0, models.NotFoundf("claim", "user %s not found", username)
	}
	s.ensureLog(u)

	reward, err := claimQuest(u, questID)
	if err != nil {
		return 0, err
	}
	persistState(s.store, s.state, "Claim")
	log.Printf("[Claim] %s claimed %s for %d points", username, questID, reward)
	return reward, nil
}

// SweepResets runs the reset check for every user. The scheduler calls this
// periodically so windows roll over even for users who never hit the quest
// endpoints.
func (s *QuestService) SweepResets() {
	s.state.Lock()
	defer s.state.Unlock()

	now := s.now()
	changed := 0
	for _, u := range s.state.Users {
		userChanged := s.ensureLog(u)
		userChanged = resetIfExpired(&u.Quests, s.catalog, models.QuestClassDaily, now) || userChanged
		userChanged = resetIfExpired(&u.Quests, s.catalog, models.QuestClassWeekly, now) || userChanged
		if userChanged {
			changed++
		}
	}
	if changed > 0 {
		persistState(s.store, s.state, "Scheduler")
		log.Printf("[Scheduler] Reset quest windows for %d users", changed)
	}
}
