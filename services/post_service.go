package services

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"lemon-club-service/models"
	"lemon-club-service/store"
)

// PostService owns the social feed: posts, the nested comment tree, and the
// quest attribution that rides along with authorship. Authors are identified
// by a mint address they own, which is how posts map back to users.
type PostService struct {
	state  *store.State
	store  store.Store
	clock  clockwork.Clock
	quests *QuestService
}

func NewPostService(state *store.State, st store.Store, clock clockwork.Clock, quests *QuestService) *PostService {
	return &PostService{state: state, store: st, clock: clock, quests: quests}
}

func validateContent(op, content string) error {
	if content == "" {
		return models.Validationf(op, "content required")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return models.Validationf(op, "content exceeds %d characters", models.MaxContentLength)
	}
	return nil
}

// attribute advances social quests for the author when the wallet resolves
// to a known user. Unresolvable wallets are fine — posting is open. Caller
// holds the state write lock.
func (s *PostService) attribute(wallet string, classes []models.QuestClass, questIDs []string) {
	_, u, ok := s.state.FindOwner(wallet)
	if !ok {
		return
	}
	s.quests.ensureLog(u)
	for i := range questIDs {
		advanceQuest(&u.Quests, classes[i], questIDs[i], 1)
	}
}

// List marshals the feed under the read lock so a concurrent mutation can't
// tear the snapshot mid-encoding.
func (s *PostService) List() (json.RawMessage, error) {
	s.state.RLock()
	defer s.state.RUnlock()
	if len(s.state.Posts) == 0 {
		return json.RawMessage("[]"), nil
	}
	return json.Marshal(s.state.Posts)
}

// Create prepends a post (most-recent-first feed) and credits the author's
// community-zest and lemon-bard quests.
func (s *PostService) Create(wallet, content string) (*models.Post, error) {
	if wallet == "" {
		return nil, models.Validationf("post", "wallet required")
	}
	if err := validateContent("post", content); err != nil {
		return nil, err
	}

	s.state.Lock()
	defer s.state.Unlock()

	post := &models.Post{
		Wallet:    wallet,
		Content:   content,
		Timestamp: s.clock.Now().UnixMilli(),
	}
	s.state.Posts = append([]*models.Post{post}, s.state.Posts...)
	s.attribute(wallet,
		[]models.QuestClass{models.QuestClassDaily, models.QuestClassWeekly},
		[]string{"community-zest", "lemon-bard"})
	persistState(s.store, s.state, "Posts")

	copied := *post
	return &copied, nil
}

func (s *PostService) postAt(index int) (*models.Post, error) {
	if index < 0 || index >= len(s.state.Posts) {
		return nil, models.NotFoundf("posts", "invalid post index %d", index)
	}
	return s.state.Posts[index], nil
}

// Like increments a post's like counter and returns the new count.
func (s *PostService) Like(postIndex int) (int64, error) {
	s.state.Lock()
	defer s.state.Unlock()

	post, err := s.postAt(postIndex)
	if err != nil {
		return 0, err
	}
	post.Likes++
	persistState(s.store, s.state, "Posts")
	return post.Likes, nil
}

// Comment appends a top-level comment and credits lemon-bard.
func (s *PostService) Comment(wallet string, postIndex int, content string) (*models.Comment, error) {
	if wallet == "" {
		return nil, models.Validationf("comment", "wallet required")
	}
	if err := validateContent("comment", content); err != nil {
		return nil, err
	}

	s.state.Lock()
	defer s.state.Unlock()

	post, err := s.postAt(postIndex)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{
		Wallet:    wallet,
		Content:   content,
		Timestamp: s.clock.Now().UnixMilli(),
	}
	post.Comments = append(post.Comments, comment)
	s.attribute(wallet, []models.QuestClass{models.QuestClassWeekly}, []string{"lemon-bard"})
	persistState(s.store, s.state, "Comments")

	copied := *comment
	return &copied, nil
}

// Reply appends a reply under the comment addressed by path. The whole path
// is validated before any mutation, so a bad path leaves the tree untouched.
func (s *PostService) Reply(wallet string, postIndex int, path []int, content string) (*models.Comment, error) {
	if wallet == "" {
		return nil, models.Validationf("reply", "wallet required")
	}
	if len(path) == 0 {
		return nil, models.Validationf("reply", "reply path required")
	}
	if err := validateContent("reply", content); err != nil {
		return nil, err
	}

	s.state.Lock()
	defer s.state.Unlock()

	post, err := s.postAt(postIndex)
	if err != nil {
		return nil, err
	}
	target, err := post.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	reply := &models.Comment{
		Wallet:    wallet,
		Content:   content,
		Timestamp: s.clock.Now().UnixMilli(),
	}
	target.Replies = append(target.Replies, reply)
	s.attribute(wallet, []models.QuestClass{models.QuestClassWeekly}, []string{"lemon-bard"})
	persistState(s.store, s.state, "Replies")

	copied := *reply
	return &copied, nil
}

// LikeAtPath increments the like counter on the node addressed by path.
func (s *PostService) LikeAtPath(postIndex int, path []int) (int64, error) {
	if len(path) == 0 {
		return 0, models.Validationf("like", "comment path required")
	}

	s.state.Lock()
	defer s.state.Unlock()

	post, err := s.postAt(postIndex)
	if err != nil {
		return 0, err
	}
	target, err := post.ResolvePath(path)
	if err != nil {
		return 0, err
	}
	target.Likes++
	persistState(s.store, s.state, "Comments")
	return target.Likes, nil
}
