package models

// User is the aggregate owning a set of NFTs and a quest log. Users are keyed
// by username in the store and are never deleted.
type User struct {
	Password  string   `json:"password"` // bcrypt hash
	NFTs      []*NFT   `json:"nfts"`
	LastLogin int64    `json:"lastLogin"` // unix millis, zero before first rewarded login
	Points    int64    `json:"points"`
	Quests    QuestLog `json:"quests"`
}

// QuestLog holds the user's quest instances, one list per recurrence class.
type QuestLog struct {
	Daily   []*QuestInstance `json:"daily"`
	Weekly  []*QuestInstance `json:"weekly"`
	Limited []*QuestInstance `json:"limited"`
}

func (l *QuestLog) Class(c QuestClass) []*QuestInstance {
	switch c {
	case QuestClassDaily:
		return l.Daily
	case QuestClassWeekly:
		return l.Weekly
	case QuestClassLimited:
		return l.Limited
	}
	return nil
}

func (l *QuestLog) SetClass(c QuestClass, quests []*QuestInstance) {
	switch c {
	case QuestClassDaily:
		l.Daily = quests
	case QuestClassWeekly:
		l.Weekly = quests
	case QuestClassLimited:
		l.Limited = quests
	}
}

// All returns every instance across the three classes, in class order.
func (l *QuestLog) All() []*QuestInstance {
	all := make([]*QuestInstance, 0, len(l.Daily)+len(l.Weekly)+len(l.Limited))
	all = append(all, l.Daily...)
	all = append(all, l.Weekly...)
	all = append(all, l.Limited...)
	return all
}

// Empty reports whether the log has never been seeded (pre-quest snapshots).
func (l *QuestLog) Empty() bool {
	return len(l.Daily) == 0 && len(l.Weekly) == 0 && len(l.Limited) == 0
}

// FindQuest looks an instance up by id across all classes.
func (l *QuestLog) FindQuest(id string) *QuestInstance {
	for _, q := range l.All() {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// FindNFT returns the owned record with the given mint address, or nil.
func (u *User) FindNFT(mintAddress string) *NFT {
	for _, n := range u.NFTs {
		if n.MintAddress == mintAddress {
			return n
		}
	}
	return nil
}
