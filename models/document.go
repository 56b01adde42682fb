package models

import "time"

// ExtractionStatus is the document lifecycle state.
// pending -> processing -> completed | failed. Terminal states are only left
// via an explicit external re-trigger (reprocess endpoint / reextract tool).
type ExtractionStatus string

const (
	ExtractionPending    ExtractionStatus = "pending"
	ExtractionProcessing ExtractionStatus = "processing"
	ExtractionCompleted  ExtractionStatus = "completed"
	ExtractionFailed     ExtractionStatus = "failed"
)

// Document is one uploaded artifact (PDF/JPEG/PNG) tied to a pet.
// ExtractedData holds the proposed payload JSON when status is completed, or
// an {"error": "..."} object when status is failed. Only the extraction
// orchestrator writes Status/ExtractedData.
type Document struct {
	ID               uint `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PetID            uint             `gorm:"index;not null"`
	Filename         string           `gorm:"size:500;not null"`
	FilePath         string           `gorm:"size:1000;not null"` // source of truth for later reads
	ExtractionStatus ExtractionStatus `gorm:"size:16;not null;default:pending;index"`
	ExtractedData    []byte           `gorm:"type:jsonb"`
}
