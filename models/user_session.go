package models

import (
	"time"
)

// UserSession is the authoritative server-side session record. Redis holds a
// fast-path copy keyed by the session token; this row is the source of truth.
type UserSession struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"not null"`
	SessionToken string `gorm:"unique;not null"`
	DeviceInfo   string
	IPAddress    string
	Location     string
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
	IsActive     bool `gorm:"default:true"`
	User         User `gorm:"foreignkey:UserID;constraint:OnDelete:CASCADE"`
}
