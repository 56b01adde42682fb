package models

import "time"

// Allergy types. Drug allergies participate in the medication cross-check.
const (
	AllergyTypeDrug          = "Drug"
	AllergyTypeFood          = "Food"
	AllergyTypeEnvironmental = "Environmental"
	AllergyTypeVaccine       = "Vaccine"
)

// Allergy is a canonical recorded sensitivity.
type Allergy struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PetID         uint   `gorm:"index;not null"`
	AllergyType   string `gorm:"size:20;not null"`
	SubstanceName string `gorm:"size:200;not null"`
	ReactionDesc  string `gorm:"size:1000"`
	Severity      string `gorm:"size:20"` // Mild / Moderate / Severe
	VetVerified   bool   `gorm:"default:false"`
	DocumentID    *uint  `gorm:"index"`
	Document      *Document `gorm:"foreignKey:DocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
