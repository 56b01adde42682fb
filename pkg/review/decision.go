// Package review reconciles user-reviewed extraction candidates into
// canonical pet records.
package review

// Decision is the reviewer's verdict on one extracted candidate.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionEdited   Decision = "edited"
	DecisionRejected Decision = "rejected"
)

// Valid reports whether d is one of the three known verdicts.
func (d Decision) Valid() bool {
	switch d {
	case DecisionApproved, DecisionEdited, DecisionRejected:
		return true
	}
	return false
}

// MedicationDecision carries the reviewed (possibly edited) field values.
// Edited and approved are persisted identically; the decision only gates
// whether the row is written at all.
type MedicationDecision struct {
	Decision   Decision `json:"decision" binding:"required"`
	DrugName   string   `json:"drug_name" binding:"required"`
	Strength   string   `json:"strength"`
	Directions string   `json:"directions"`
	Indication string   `json:"indication"`
	StartDate  string   `json:"start_date"`
	StopDate   string   `json:"stop_date"`
	Prescriber string   `json:"prescriber"`
	Pharmacy   string   `json:"pharmacy"`
}

type VaccineDecision struct {
	Decision    Decision `json:"decision" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	DateGiven   string   `json:"date_given"`
	Clinic      string   `json:"clinic"`
	LotNumber   string   `json:"lot_number"`
	NextDueDate string   `json:"next_due_date"`
}

type AllergyDecision struct {
	Decision      Decision `json:"decision" binding:"required"`
	SubstanceName string   `json:"substance_name" binding:"required"`
	AllergyType   string   `json:"allergy_type"`
	ReactionDesc  string   `json:"reaction_desc"`
	Severity      string   `json:"severity"`
}

type ProblemDecision struct {
	Decision      Decision `json:"decision" binding:"required"`
	ConditionName string   `json:"condition_name" binding:"required"`
	OnsetDate     string   `json:"onset_date"`
	IsActive      *bool    `json:"is_active"`
	Notes         string   `json:"notes"`
}

type VitalDecision struct {
	Decision        Decision `json:"decision" binding:"required"`
	RecordedDate    string   `json:"recorded_date"`
	WeightKg        *float64 `json:"weight_kg"`
	WeightLbs       *float64 `json:"weight_lbs"`
	TemperatureF    *float64 `json:"temperature_f"`
	HeartRateBPM    *int     `json:"heart_rate_bpm"`
	RespiratoryRate *int     `json:"respiratory_rate"`
	Notes           string   `json:"notes"`
}

// Batch is one reconciliation submission for a document.
type Batch struct {
	Medications []MedicationDecision `json:"medications"`
	Vaccines    []VaccineDecision    `json:"vaccines"`
	Allergies   []AllergyDecision    `json:"allergies"`
	Problems    []ProblemDecision    `json:"problems"`
	Vitals      []VitalDecision      `json:"vitals"`
}

// Warning reports a saved medication whose drug matches a recorded drug
// allergy of the pet.
type Warning struct {
	DrugName         string `json:"drug_name"`
	AllergySubstance string `json:"allergy_substance"`
	Severity         string `json:"severity"`
}

// Result is the reconciliation outcome returned to the reviewer.
type Result struct {
	MedicationsSaved int       `json:"medications_saved"`
	VaccinesSaved    int       `json:"vaccines_saved"`
	AllergiesSaved   int       `json:"allergies_saved"`
	ProblemsSaved    int       `json:"problems_saved"`
	VitalsSaved      int       `json:"vitals_saved"`
	AllergyWarnings  []Warning `json:"allergy_warnings"`
}
