package models

import (
	"time"
)

// OfferLetter is a generated PDF tied to its recipient account. Letters are
// never mutated after creation; "latest" means newest CreatedAt.
type OfferLetter struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index"`
	User      User   `gorm:"foreignkey:UserID;constraint:OnDelete:CASCADE"`
	FileName  string `gorm:"not null"`
	Content   []byte `gorm:"not null"`
	CreatedAt time.Time
}
