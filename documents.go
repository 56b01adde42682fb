package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shouniet/medpetrx/models"
	"github.com/shouniet/medpetrx/pkg/extract"
	"github.com/shouniet/medpetrx/pkg/review"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUploadBytes = 10 * 1024 * 1024

var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type docResponse struct {
	ID               uint                    `json:"id"`
	PetID            uint                    `json:"pet_id"`
	Filename         string                  `json:"filename"`
	ExtractionStatus models.ExtractionStatus `json:"extraction_status"`
	ExtractedData    json.RawMessage         `json:"extracted_data,omitempty"`
	CreatedAt        string                  `json:"created_at"`
}

func toDocResponse(d models.Document) docResponse {
	return docResponse{
		ID:               d.ID,
		PetID:            d.PetID,
		Filename:         d.Filename,
		ExtractionStatus: d.ExtractionStatus,
		ExtractedData:    json.RawMessage(d.ExtractedData),
		CreatedAt:        d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// uploadDocumentHandler stores the file under the pet's upload directory,
// creates the pending document row and queues extraction.
func uploadDocumentHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	ct := file.Header.Get("Content-Type")
	if !allowedUploadTypes[ct] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type, expected PDF, JPEG or PNG"})
		return
	}

	dir := filepath.Join(uploadBaseDir(), strconv.FormatUint(uint64(pet.ID), 10))
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	// Random prefix keeps same-named uploads from clobbering each other.
	stored := uuid.New().String() + "_" + filepath.Base(file.Filename)
	fullPath := filepath.Join(dir, stored)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	doc := models.Document{
		PetID:            pet.ID,
		Filename:         file.Filename,
		FilePath:         fullPath,
		ExtractionStatus: models.ExtractionPending,
	}
	if err := db.Create(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	if err := extractQueue.Enqueue(doc.ID); err != nil {
		if errors.Is(err, extract.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction queue full, try again shortly"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
		return
	}
	c.JSON(http.StatusCreated, toDocResponse(doc))
}

func listDocumentsHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var docs []models.Document
	if err := db.Where("pet_id = ?", pet.ID).Order("id desc").Limit(200).Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]docResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocResponse(d))
	}
	c.JSON(http.StatusOK, out)
}

// getDocumentForPet loads :docId and verifies it belongs to the pet.
func getDocumentForPet(c *gin.Context, pet *models.Pet) (*models.Document, bool) {
	id, err := strconv.ParseUint(c.Param("docId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return nil, false
	}
	var doc models.Document
	if err := db.First(&doc, id).Error; err != nil || doc.PetID != pet.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return nil, false
	}
	return &doc, true
}

// getDocumentForUser loads :docId and verifies ownership through the pet it
// belongs to. Unowned documents read as not found.
func getDocumentForUser(c *gin.Context) (*models.Document, bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	id, err := strconv.ParseUint(c.Param("docId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return nil, false
	}
	var doc models.Document
	if err := db.First(&doc, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return nil, false
	}
	var pet models.Pet
	if err := db.First(&pet, doc.PetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return nil, false
	}
	role, _ := c.Get("role")
	if role != "administrator" && pet.OwnerID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return nil, false
	}
	return &doc, true
}

func getDocumentHandler(c *gin.Context) {
	doc, ok := getDocumentForUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toDocResponse(*doc))
}

// confirmDocumentHandler persists the reviewed extraction batch as canonical
// records in a single transaction.
func confirmDocumentHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	doc, ok := getDocumentForPet(c, pet)
	if !ok {
		return
	}
	var batch review.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var result review.Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var rerr error
		result, rerr = review.Reconcile(tx, pet.ID, doc.ID, batch)
		return rerr
	})
	if err != nil {
		if strings.Contains(err.Error(), "invalid date") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("confirm failed: %v", err)})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// reprocessDocumentHandler is the only way a terminal document re-enters the
// pipeline. Guarded update: a document that is pending or still processing
// is left alone and reported as a conflict.
func reprocessDocumentHandler(c *gin.Context) {
	doc, ok := getDocumentForUser(c)
	if !ok {
		return
	}
	res := db.Model(&models.Document{}).
		Where("id = ? AND extraction_status IN ?", doc.ID,
			[]models.ExtractionStatus{models.ExtractionCompleted, models.ExtractionFailed}).
		Updates(map[string]any{
			"extraction_status": models.ExtractionPending,
			"extracted_data":    nil,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "document is not in a terminal state"})
		return
	}
	if err := extractQueue.Enqueue(doc.ID); err != nil {
		// Row stays pending; the reextract tool will pick it up.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction queue full, document left pending"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": doc.ID, "extraction_status": models.ExtractionPending})
}
