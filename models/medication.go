package models

import "time"

// Medication is a canonical prescribed/preventive drug record.
type Medication struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	PetID      uint   `gorm:"index;not null"`
	DrugName   string `gorm:"size:200;not null"`
	Strength   string `gorm:"size:100"`
	Directions string `gorm:"size:500"`
	Indication string `gorm:"size:500"`
	StartDate  *time.Time
	StopDate   *time.Time
	Prescriber string `gorm:"size:200"`
	Pharmacy   string `gorm:"size:200"`
	IsActive   bool   `gorm:"default:true;not null"`
	// DocumentID links back to the source document when created via review.
	// SET NULL on document deletion: canonical rows outlive their source.
	DocumentID *uint     `gorm:"index"`
	Document   *Document `gorm:"foreignKey:DocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
