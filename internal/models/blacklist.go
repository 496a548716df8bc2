package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlacklistEntry marks a user as excluded from winning draws. Blacklisted
// users keep their tickets but are skipped (redrawn) during winner selection.
type BlacklistEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Reason    string             `bson:"reason" json:"reason"`
	AddedBy   string             `bson:"addedBy" json:"addedBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
