package models

import "time"

// QuestClass is the recurrence class governing automatic reset cadence.
type QuestClass string

const (
	QuestClassDaily   QuestClass = "daily"
	QuestClassWeekly  QuestClass = "weekly"
	QuestClassLimited QuestClass = "limited"
)

var QuestClasses = []QuestClass{QuestClassDaily, QuestClassWeekly, QuestClassLimited}

func (c QuestClass) Valid() bool {
	switch c {
	case QuestClassDaily, QuestClassWeekly, QuestClassLimited:
		return true
	}
	return false
}

// Window returns the reset window length for the class. Limited quests never
// reset, signalled by a zero window.
func (c QuestClass) Window() time.Duration {
	switch c {
	case QuestClassDaily:
		return 24 * time.Hour
	case QuestClassWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// QuestTemplate is the immutable, process-wide definition of a quest. Loaded
// once at startup from the catalog.
type QuestTemplate struct {
	ID     string `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Desc   string `json:"desc" toml:"desc"`
	Goal   int    `json:"goal" toml:"goal"`
	Reward int64  `json:"reward" toml:"reward"`
}

// QuestInstance is the per-user progress copy of a template. The snapshot
// keeps the template fields denormalized so old saves survive catalog edits.
type QuestInstance struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Desc           string `json:"desc"`
	Goal           int    `json:"goal"`
	Reward         int64  `json:"reward"`
	Progress       int    `json:"progress"`
	Completed      bool   `json:"completed"`
	Claimed        bool   `json:"claimed"`
	ResetTimestamp int64  `json:"resetTimestamp,omitempty"` // unix millis, zero for limited
}

// NewQuestInstance creates a fresh instance from a template. now is unix
// millis; pass zero for limited quests.
func NewQuestInstance(t QuestTemplate, now int64) *QuestInstance {
	return &QuestInstance{
		ID:             t.ID,
		Name:           t.Name,
		Desc:           t.Desc,
		Goal:           t.Goal,
		Reward:         t.Reward,
		ResetTimestamp: now,
	}
}

// Advance adds increment to progress, clamped to [0, Goal]. Completed quests
// are left alone so progress can't be farmed past the goal. Reports whether
// anything changed.
func (q *QuestInstance) Advance(increment int) bool {
	if q.Completed || increment <= 0 {
		return false
	}
	q.Progress += increment
	if q.Progress >= q.Goal {
		q.Progress = q.Goal
		q.Completed = true
	}
	return true
}

// SetProgress overwrites progress with an absolute value, clamped to the goal.
// Used by the client-driven quest update endpoint (visit-style quests report
// totals, not deltas).
func (q *QuestInstance) SetProgress(progress int) bool {
	if q.Completed {
		return false
	}
	if progress < 0 {
		progress = 0
	}
	if progress > q.Goal {
		progress = q.Goal
	}
	if progress == q.Progress {
		return false
	}
	q.Progress = progress
	if q.Progress >= q.Goal {
		q.Completed = true
	}
	return true
}

// Expired reports whether the instance's window has elapsed at now (unix
// millis). Limited quests never expire.
func (q *QuestInstance) Expired(class QuestClass, now int64) bool {
	window := class.Window()
	if window == 0 {
		return false
	}
	return now-q.ResetTimestamp >= window.Milliseconds()
}
