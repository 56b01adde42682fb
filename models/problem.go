package models

import "time"

// Problem is a canonical diagnosed/reported condition.
type Problem struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PetID         uint   `gorm:"index;not null"`
	ConditionName string `gorm:"size:300;not null"`
	IsActive      bool   `gorm:"default:true;not null"`
	OnsetDate     *time.Time
	Notes         string `gorm:"size:2000"`
	DocumentID    *uint  `gorm:"index"`
	Document      *Document `gorm:"foreignKey:DocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
