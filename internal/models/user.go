// Package models contains the domain entities persisted by the application.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a user's always-present access role.
type Role string

const (
	// RoleMember is the default role for every account.
	RoleMember Role = "member"
	// RoleAdmin grants access to administrative endpoints.
	RoleAdmin Role = "admin"
)

// User represents a registered account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `json:"bio"`
	Role      Role           `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
}
