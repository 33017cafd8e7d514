package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryEntry 는 이미 영상으로 만들어진 기사 한 건이다.
// File: history.json / Collection: history
type HistoryEntry struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Link    string             `bson:"link" json:"link"`
	Title   string             `bson:"title,omitempty" json:"title,omitempty"`
	Keyword string             `bson:"keyword,omitempty" json:"keyword,omitempty"`
	UsedAt  time.Time          `bson:"used_at" json:"used_at"`
}
