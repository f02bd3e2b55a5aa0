package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lemon-club-service/models"
)

const (
	snapshotUsers = "users"
	snapshotPosts = "posts"
)

// Snapshot is one named JSON document. The whole state is two rows, written
// together inside a transaction so a crash can never leave users and posts
// from different generations.
type Snapshot struct {
	Name      string    `gorm:"primaryKey"`
	Document  []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// GormStore persists snapshots in Postgres. Used when DATABASE_URL is set.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot table: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (g *GormStore) Load() (*State, error) {
	state := NewState()

	var rows []Snapshot
	if err := g.DB.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	for _, row := range rows {
		switch row.Name {
		case snapshotUsers:
			if err := json.Unmarshal(row.Document, &state.Users); err != nil {
				return nil, fmt.Errorf("corrupt users snapshot: %w", err)
			}
		case snapshotPosts:
			if err := json.Unmarshal(row.Document, &state.Posts); err != nil {
				return nil, fmt.Errorf("corrupt posts snapshot: %w", err)
			}
		}
	}
	if state.Users == nil {
		state.Users = make(map[string]*models.User)
	}
	return state, nil
}

func (g *GormStore) Save(state *State) error {
	usersDoc, err := json.Marshal(state.Users)
	if err != nil {
		return err
	}
	postsDoc, err := json.Marshal(state.Posts)
	if err != nil {
		return err
	}

	return g.DB.Transaction(func(tx *gorm.DB) error {
		rows := []Snapshot{
			{Name: snapshotUsers, Document: usersDoc},
			{Name: snapshotPosts, Document: postsDoc},
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).Create(&rows).Error
	})
}
