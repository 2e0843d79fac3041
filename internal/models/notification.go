package models

import (
	"time"
)

// TargetType tags the kind of entity a notification points at. The target is
// a tagged reference (type + id) resolved explicitly by the reader, never an
// ownership relation.
type TargetType string

const (
	// TargetPost marks a notification target as a post.
	TargetPost TargetType = "post"
	// TargetComment marks a notification target as a comment.
	TargetComment TargetType = "comment"
	// TargetUser marks a notification target as a user.
	TargetUser TargetType = "user"
)

// Notification is one record in the append-only "actor did verb to target
// for recipient" log. Records are never mutated after creation and are only
// removed by cascade when a referenced user vanishes.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RecipientID uint       `gorm:"not null;index" json:"recipient_id"`
	ActorID     uint       `gorm:"not null" json:"actor_id"`
	Verb        string     `gorm:"not null" json:"verb"`
	TargetType  TargetType `gorm:"type:varchar(16);not null" json:"target_type"`
	TargetID    uint       `gorm:"not null" json:"target_id"`
	CreatedAt   time.Time  `json:"created_at"`

	Recipient User `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	Actor     User `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"actor,omitempty"`
}
