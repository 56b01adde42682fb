package models

import "time"

// Vaccine is a canonical immunization record.
type Vaccine struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PetID       uint   `gorm:"index;not null"`
	Name        string `gorm:"size:200;not null"`
	DateGiven   *time.Time
	Clinic      string `gorm:"size:200"`
	LotNumber   string `gorm:"size:100"`
	NextDueDate *time.Time
	DocumentID  *uint     `gorm:"index"`
	Document    *Document `gorm:"foreignKey:DocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
