package models

import (
	"time"
)

// Follow is a directed edge in the social graph: follower -> followee.
// The composite unique index makes the edge set a true set; repeated
// follow requests cannot create parallel edges. Follower and followee are
// never equal, enforced above the storage layer.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the historical table name for the edge set.
func (Follow) TableName() string {
	return "follows"
}
