package review

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/shouniet/medpetrx/models"
)

const lbsPerKg = 2.20462

// Reconcile persists every approved or edited decision in the batch as a
// canonical record for the pet, cross-checking each saved medication against
// recorded drug allergies. Rejected decisions are skipped entirely. The
// caller supplies the transaction; any error must roll the whole batch back.
//
// Submitting the same batch twice writes the rows twice. Deduplication is
// the reviewer's call, not ours.
func Reconcile(tx *gorm.DB, petID, docID uint, batch Batch) (Result, error) {
	res := Result{AllergyWarnings: []Warning{}}

	for _, item := range batch.Medications {
		if item.Decision == DecisionRejected {
			continue
		}
		start, err := toDateTime(item.StartDate)
		if err != nil {
			return res, fmt.Errorf("medication %q start_date: %w", item.DrugName, err)
		}
		stop, err := toDateTime(item.StopDate)
		if err != nil {
			return res, fmt.Errorf("medication %q stop_date: %w", item.DrugName, err)
		}
		med := models.Medication{
			PetID:      petID,
			DrugName:   item.DrugName,
			Strength:   item.Strength,
			Directions: item.Directions,
			Indication: item.Indication,
			StartDate:  start,
			StopDate:   stop,
			Prescriber: item.Prescriber,
			Pharmacy:   item.Pharmacy,
			IsActive:   true,
			DocumentID: &docID,
		}
		if err := tx.Create(&med).Error; err != nil {
			return res, fmt.Errorf("save medication %q: %w", item.DrugName, err)
		}
		res.MedicationsSaved++

		matches, err := CheckMedicationAgainstAllergies(tx, petID, item.DrugName)
		if err != nil {
			return res, fmt.Errorf("allergy check for %q: %w", item.DrugName, err)
		}
		for _, m := range matches {
			res.AllergyWarnings = append(res.AllergyWarnings, Warning{
				DrugName:         item.DrugName,
				AllergySubstance: m.SubstanceName,
				Severity:         m.Severity,
			})
		}
	}

	for _, item := range batch.Vaccines {
		if item.Decision == DecisionRejected {
			continue
		}
		given, err := toDateTime(item.DateGiven)
		if err != nil {
			return res, fmt.Errorf("vaccine %q date_given: %w", item.Name, err)
		}
		due, err := toDateTime(item.NextDueDate)
		if err != nil {
			return res, fmt.Errorf("vaccine %q next_due_date: %w", item.Name, err)
		}
		vaccine := models.Vaccine{
			PetID:       petID,
			Name:        item.Name,
			DateGiven:   given,
			Clinic:      item.Clinic,
			LotNumber:   item.LotNumber,
			NextDueDate: due,
			DocumentID:  &docID,
		}
		if err := tx.Create(&vaccine).Error; err != nil {
			return res, fmt.Errorf("save vaccine %q: %w", item.Name, err)
		}
		res.VaccinesSaved++
	}

	for _, item := range batch.Allergies {
		if item.Decision == DecisionRejected {
			continue
		}
		allergy := models.Allergy{
			PetID:         petID,
			AllergyType:   normalizeAllergyType(item.AllergyType),
			SubstanceName: item.SubstanceName,
			ReactionDesc:  item.ReactionDesc,
			Severity:      item.Severity,
			DocumentID:    &docID,
		}
		if err := tx.Create(&allergy).Error; err != nil {
			return res, fmt.Errorf("save allergy %q: %w", item.SubstanceName, err)
		}
		res.AllergiesSaved++
	}

	for _, item := range batch.Problems {
		if item.Decision == DecisionRejected {
			continue
		}
		onset, err := toDateTime(item.OnsetDate)
		if err != nil {
			return res, fmt.Errorf("problem %q onset_date: %w", item.ConditionName, err)
		}
		active := true
		if item.IsActive != nil {
			active = *item.IsActive
		}
		problem := models.Problem{
			PetID:         petID,
			ConditionName: item.ConditionName,
			IsActive:      active,
			OnsetDate:     onset,
			Notes:         item.Notes,
			DocumentID:    &docID,
		}
		if err := tx.Create(&problem).Error; err != nil {
			return res, fmt.Errorf("save problem %q: %w", item.ConditionName, err)
		}
		res.ProblemsSaved++
	}

	for _, item := range batch.Vitals {
		if item.Decision == DecisionRejected {
			continue
		}
		recorded := time.Now().UTC().Truncate(24 * time.Hour)
		if item.RecordedDate != "" {
			at, err := toDateTime(item.RecordedDate)
			if err != nil {
				return res, fmt.Errorf("vitals recorded_date: %w", err)
			}
			recorded = *at
		}
		kg, lbs := fillWeights(item.WeightKg, item.WeightLbs)
		vital := models.Vital{
			PetID:           petID,
			RecordedDate:    recorded,
			WeightKg:        kg,
			WeightLbs:       lbs,
			TemperatureF:    item.TemperatureF,
			HeartRateBPM:    item.HeartRateBPM,
			RespiratoryRate: item.RespiratoryRate,
			Notes:           item.Notes,
			DocumentID:      &docID,
		}
		if err := tx.Create(&vital).Error; err != nil {
			return res, fmt.Errorf("save vitals: %w", err)
		}
		res.VitalsSaved++
	}

	return res, nil
}

// toDateTime accepts a bare date or RFC 3339 timestamp and normalizes it to
// midnight of that day. Empty input means no date.
func toDateTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

// normalizeAllergyType maps unknown types to Drug, matching how extracted
// allergies default.
func normalizeAllergyType(t string) string {
	switch t {
	case models.AllergyTypeDrug, models.AllergyTypeFood,
		models.AllergyTypeEnvironmental, models.AllergyTypeVaccine:
		return t
	}
	return models.AllergyTypeDrug
}

// fillWeights derives the missing unit when only one was supplied. Derived
// values round to two decimals.
func fillWeights(kg, lbs *float64) (*float64, *float64) {
	if kg != nil && lbs == nil {
		v := round2(*kg * lbsPerKg)
		lbs = &v
	} else if lbs != nil && kg == nil {
		v := round2(*lbs / lbsPerKg)
		kg = &v
	}
	return kg, lbs
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
