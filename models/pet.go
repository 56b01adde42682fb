package models

import "time"

// Pet belongs to exactly one owner. All clinical records hang off a pet.
type Pet struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	OwnerID      uint   `gorm:"index;not null"`
	Owner        User   `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name         string `gorm:"size:100;not null"`
	Species      string `gorm:"size:50;not null"`
	Breed        string `gorm:"size:100"`
	Sex          string `gorm:"size:10"`
	DOB          *time.Time
	MicrochipNum string `gorm:"size:50;index"`

	Documents   []Document   `gorm:"foreignKey:PetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Medications []Medication `gorm:"foreignKey:PetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Vaccines    []Vaccine    `gorm:"foreignKey:PetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Allergies   []Allergy    `gorm:"foreignKey:PetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Problems    []Problem    `gorm:"foreignKey:PetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Vitals      []Vital      `gorm:"foreignKey:PetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
