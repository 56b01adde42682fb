package models

import "time"

// Vital tracks weight and exam vitals over time.
type Vital struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PetID           uint      `gorm:"index;not null"`
	RecordedDate    time.Time `gorm:"not null"`
	WeightKg        *float64
	WeightLbs       *float64
	TemperatureF    *float64
	HeartRateBPM    *int
	RespiratoryRate *int
	Notes           string `gorm:"size:500"`
	DocumentID      *uint  `gorm:"index"`
	Document        *Document `gorm:"foreignKey:DocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
