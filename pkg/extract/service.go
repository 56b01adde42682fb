// Package extract drives the document extraction lifecycle:
// pending -> processing -> completed | failed. It owns every status and
// payload write; nothing else in the system touches those columns.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/shouniet/medpetrx/models"
	"github.com/shouniet/medpetrx/pkg/parse"
)

// Fallback is the external-extraction capability. Nil when not configured;
// then unrecognized documents go straight to failed.
type Fallback interface {
	ExtractDocument(ctx context.Context, data []byte, mediaType string) (parse.Payload, error)
}

// TextExtractor turns a stored file into plain page text for the heuristic
// parser.
type TextExtractor interface {
	Text(path string) (string, error)
}

type Service struct {
	db       *gorm.DB
	fallback Fallback
	text     TextExtractor
}

func NewService(db *gorm.DB, fallback Fallback) *Service {
	return &Service{db: db, fallback: fallback, text: fileText{}}
}

// WithTextExtractor overrides the file-to-text step.
func (s *Service) WithTextExtractor(t TextExtractor) *Service {
	s.text = t
	return s
}

// Process runs one document through the pipeline. It takes its own gorm
// session so a rollback in any request-scoped transaction cannot touch the
// writes made here. Every failure path ends in a terminal failed status with
// a readable reason; the returned error exists only for worker logging.
func (s *Service) Process(ctx context.Context, docID uint) error {
	sess := s.db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
	// Terminal writes run detached from the job context: when the job deadline
	// fires mid-extraction, the failed status must still land instead of
	// leaving the document in processing.
	term := s.db.Session(&gorm.Session{NewDB: true}).WithContext(context.WithoutCancel(ctx))

	var doc models.Document
	if err := sess.First(&doc, docID).Error; err != nil {
		return fmt.Errorf("load document %d: %w", docID, err)
	}

	// Guarded claim: pending -> processing happens exactly once, and a
	// terminal document is never silently pulled back into the pipeline.
	claim := sess.Model(&models.Document{}).
		Where("id = ? AND extraction_status = ?", docID, models.ExtractionPending).
		Update("extraction_status", models.ExtractionProcessing)
	if claim.Error != nil {
		return fmt.Errorf("claim document %d: %w", docID, claim.Error)
	}
	if claim.RowsAffected == 0 {
		log.Printf("extract: document %d not pending, skipping", docID)
		return nil
	}

	data, err := os.ReadFile(doc.FilePath)
	if err != nil {
		return s.fail(term, docID, "file unreadable: "+err.Error())
	}

	payload := parse.Payload{}
	text, terr := s.text.Text(doc.FilePath)
	if terr != nil {
		log.Printf("extract: document %d text extraction failed: %v", docID, terr)
	} else {
		payload = parse.Extract(text)
	}

	// Fallback runs once, only when the heuristic pass found nothing usable.
	if payload.Empty() && s.fallback != nil {
		payload, err = s.fallback.ExtractDocument(ctx, data, MediaTypeFor(doc.FilePath))
		if err != nil {
			return s.fail(term, docID, "external extraction failed: "+err.Error())
		}
	}

	if payload.Empty() {
		return s.fail(term, docID, "no structured data recognized in document")
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return s.fail(term, docID, "encode payload: "+err.Error())
	}
	res := term.Model(&models.Document{}).
		Where("id = ? AND extraction_status = ?", docID, models.ExtractionProcessing).
		Updates(map[string]any{
			"extraction_status": models.ExtractionCompleted,
			"extracted_data":    buf,
		})
	if res.Error != nil {
		return fmt.Errorf("complete document %d: %w", docID, res.Error)
	}
	log.Printf("extract: document %d completed (meds=%d vaccines=%d allergies=%d problems=%d vitals=%d)",
		docID, len(payload.Medications), len(payload.Vaccines), len(payload.Allergies),
		len(payload.Problems), len(payload.Vitals))
	return nil
}

// fail writes the terminal failed status with an error payload. The reason
// is the only thing ExtractedData may hold in this state.
func (s *Service) fail(sess *gorm.DB, docID uint, reason string) error {
	buf, _ := json.Marshal(map[string]string{"error": reason})
	res := sess.Model(&models.Document{}).
		Where("id = ? AND extraction_status = ?", docID, models.ExtractionProcessing).
		Updates(map[string]any{
			"extraction_status": models.ExtractionFailed,
			"extracted_data":    buf,
		})
	if res.Error != nil {
		log.Printf("extract: marking document %d failed errored: %v", docID, res.Error)
	}
	return errors.New(reason)
}
