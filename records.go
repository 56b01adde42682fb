package main

import (
	"math"
	"net/http"
	"time"

	"github.com/shouniet/medpetrx/models"

	"github.com/gin-gonic/gin"
)

// parseRecordDate parses an optional YYYY-MM-DD field. ok is false only when
// the value is present and malformed.
func parseRecordDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

const lbsPerKg = 2.20462

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func listMedicationsHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var items []models.Medication
	if err := db.Where("pet_id = ?", pet.ID).Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func createMedicationHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var req struct {
		DrugName   string `json:"drug_name" binding:"required"`
		Strength   string `json:"strength"`
		Directions string `json:"directions"`
		Indication string `json:"indication"`
		StartDate  string `json:"start_date"`
		StopDate   string `json:"stop_date"`
		Prescriber string `json:"prescriber"`
		Pharmacy   string `json:"pharmacy"`
		IsActive   *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, ok1 := parseRecordDate(req.StartDate)
	stop, ok2 := parseRecordDate(req.StopDate)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	med := models.Medication{
		PetID:      pet.ID,
		DrugName:   req.DrugName,
		Strength:   req.Strength,
		Directions: req.Directions,
		Indication: req.Indication,
		StartDate:  start,
		StopDate:   stop,
		Prescriber: req.Prescriber,
		Pharmacy:   req.Pharmacy,
		IsActive:   active,
	}
	if err := db.Create(&med).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, med)
}

func deleteMedicationHandler(c *gin.Context) {
	deletePetRecord(c, &models.Medication{})
}

func listVaccinesHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var items []models.Vaccine
	if err := db.Where("pet_id = ?", pet.ID).Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func createVaccineHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		DateGiven   string `json:"date_given"`
		Clinic      string `json:"clinic"`
		LotNumber   string `json:"lot_number"`
		NextDueDate string `json:"next_due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	given, ok1 := parseRecordDate(req.DateGiven)
	due, ok2 := parseRecordDate(req.NextDueDate)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	vaccine := models.Vaccine{
		PetID:       pet.ID,
		Name:        req.Name,
		DateGiven:   given,
		Clinic:      req.Clinic,
		LotNumber:   req.LotNumber,
		NextDueDate: due,
	}
	if err := db.Create(&vaccine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, vaccine)
}

func deleteVaccineHandler(c *gin.Context) {
	deletePetRecord(c, &models.Vaccine{})
}

func listAllergiesHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var items []models.Allergy
	if err := db.Where("pet_id = ?", pet.ID).Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func createAllergyHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var req struct {
		SubstanceName string `json:"substance_name" binding:"required"`
		AllergyType   string `json:"allergy_type"`
		ReactionDesc  string `json:"reaction_desc"`
		Severity      string `json:"severity"`
		VetVerified   bool   `json:"vet_verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	at := req.AllergyType
	switch at {
	case models.AllergyTypeDrug, models.AllergyTypeFood,
		models.AllergyTypeEnvironmental, models.AllergyTypeVaccine:
	case "":
		at = models.AllergyTypeDrug
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid allergy_type"})
		return
	}
	allergy := models.Allergy{
		PetID:         pet.ID,
		AllergyType:   at,
		SubstanceName: req.SubstanceName,
		ReactionDesc:  req.ReactionDesc,
		Severity:      req.Severity,
		VetVerified:   req.VetVerified,
	}
	if err := db.Create(&allergy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, allergy)
}

func deleteAllergyHandler(c *gin.Context) {
	deletePetRecord(c, &models.Allergy{})
}

func listProblemsHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var items []models.Problem
	if err := db.Where("pet_id = ?", pet.ID).Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func createProblemHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var req struct {
		ConditionName string `json:"condition_name" binding:"required"`
		OnsetDate     string `json:"onset_date"`
		IsActive      *bool  `json:"is_active"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	onset, okDate := parseRecordDate(req.OnsetDate)
	if !okDate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	problem := models.Problem{
		PetID:         pet.ID,
		ConditionName: req.ConditionName,
		IsActive:      active,
		OnsetDate:     onset,
		Notes:         req.Notes,
	}
	if err := db.Create(&problem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, problem)
}

func deleteProblemHandler(c *gin.Context) {
	deletePetRecord(c, &models.Problem{})
}

type vitalRequest struct {
	RecordedDate    string   `json:"recorded_date" binding:"required"`
	WeightKg        *float64 `json:"weight_kg"`
	WeightLbs       *float64 `json:"weight_lbs"`
	TemperatureF    *float64 `json:"temperature_f"`
	HeartRateBPM    *int     `json:"heart_rate_bpm"`
	RespiratoryRate *int     `json:"respiratory_rate"`
	Notes           string   `json:"notes"`
}

// applyWeights derives whichever weight unit is missing. Derived values are
// rounded to two decimals; supplied values are stored as-is.
func applyWeights(v *models.Vital, kg, lbs *float64) {
	v.WeightKg = kg
	v.WeightLbs = lbs
	if kg != nil && lbs == nil {
		d := round2(*kg * lbsPerKg)
		v.WeightLbs = &d
	} else if lbs != nil && kg == nil {
		d := round2(*lbs / lbsPerKg)
		v.WeightKg = &d
	}
}

func listVitalsHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var items []models.Vital
	if err := db.Where("pet_id = ?", pet.ID).Order("recorded_date desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func createVitalHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var req vitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recorded, okDate := parseRecordDate(req.RecordedDate)
	if !okDate || recorded == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recorded_date, expected YYYY-MM-DD"})
		return
	}
	vital := models.Vital{
		PetID:           pet.ID,
		RecordedDate:    *recorded,
		TemperatureF:    req.TemperatureF,
		HeartRateBPM:    req.HeartRateBPM,
		RespiratoryRate: req.RespiratoryRate,
		Notes:           req.Notes,
	}
	applyWeights(&vital, req.WeightKg, req.WeightLbs)
	if err := db.Create(&vital).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, vital)
}

func updateVitalHandler(c *gin.Context) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	var vital models.Vital
	if err := db.First(&vital, c.Param("id")).Error; err != nil || vital.PetID != pet.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req vitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recorded, okDate := parseRecordDate(req.RecordedDate)
	if !okDate || recorded == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recorded_date, expected YYYY-MM-DD"})
		return
	}
	vital.RecordedDate = *recorded
	vital.TemperatureF = req.TemperatureF
	vital.HeartRateBPM = req.HeartRateBPM
	vital.RespiratoryRate = req.RespiratoryRate
	vital.Notes = req.Notes
	applyWeights(&vital, req.WeightKg, req.WeightLbs)
	if err := db.Save(&vital).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, vital)
}

func deleteVitalHandler(c *gin.Context) {
	deletePetRecord(c, &models.Vital{})
}

// deletePetRecord removes one record by :id after confirming pet ownership.
// dest must be a pointer to the record model.
func deletePetRecord(c *gin.Context, dest any) {
	pet, ok := getPetForOwner(c)
	if !ok {
		return
	}
	res := db.Where("pet_id = ?", pet.ID).Delete(dest, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
