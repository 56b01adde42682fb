package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shouniet/medpetrx/models"

	"github.com/gin-gonic/gin"
)

// getPetForOwner resolves :petId and enforces ownership. Admin can reach any
// pet; everyone else only their own. Writes the error response itself.
func getPetForOwner(c *gin.Context) (*models.Pet, bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	id, err := strconv.ParseUint(c.Param("petId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pet id"})
		return nil, false
	}
	var pet models.Pet
	if err := db.First(&pet, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return nil, false
	}
	role, _ := c.Get("role")
	if role != "administrator" && pet.OwnerID != user.ID {
		// Do not reveal existence of other owners' pets.
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return nil, false
	}
	return &pet, true
}

func createPetHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name         string `json:"name" binding:"required"`
		Species      string `json:"species" binding:"required"`
		Breed        string `json:"breed"`
		Sex          string `json:"sex"`
		DOB          string `json:"dob"` // YYYY-MM-DD
		MicrochipNum string `json:"microchip_num"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pet := models.Pet{
		OwnerID:      user.ID,
		Name:         req.Name,
		Species:      req.Species,
		Breed:        req.Breed,
		Sex:          req.Sex,
		MicrochipNum: req.MicrochipNum,
	}
	if req.DOB != "" {
		t, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dob, expected YYYY-MM-DD"})
			return
		}
		pet.DOB = &t
	}
	if err := db.Create(&pet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, pet)
}

func listPetsHandler(c *gin.Context) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var pets []models.Pet
	q := db.Model(&models.Pet{})
	if role != "administrator" {
		q = q.Where("owner_id = ?", user.ID)
	}
	if err := q.Order("id desc").Limit(200).Find(&pets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, pets)
}

func getPetHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, pet)
}

func deletePetHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	// Cascades take documents and records with it.
	if err := db.Delete(pet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pet deleted"})
}
