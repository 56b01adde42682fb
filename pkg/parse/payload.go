package parse

// Payload is the proposed, not-yet-canonical data extracted from one visit
// summary. It is a proposal for human review, never queried as a record.
type Payload struct {
	Medications []Medication `json:"medications"`
	Vaccines    []Vaccine    `json:"vaccines"`
	Allergies   []Allergy    `json:"allergies"`
	Problems    []Problem    `json:"problems"`
	Vitals      []Vital      `json:"vitals"`
	PetInfo     *PetInfo     `json:"pet_info,omitempty"`
}

// Empty reports whether no clinical category yielded anything. Identity hints
// alone do not count: a payload with only pet_info still triggers fallback.
func (p Payload) Empty() bool {
	return len(p.Medications) == 0 &&
		len(p.Vaccines) == 0 &&
		len(p.Allergies) == 0 &&
		len(p.Problems) == 0 &&
		len(p.Vitals) == 0
}

type Medication struct {
	DrugName   string  `json:"drug_name"`
	Strength   *string `json:"strength"`
	Directions *string `json:"directions"`
	Indication *string `json:"indication"`
	StartDate  *string `json:"start_date"` // YYYY-MM-DD
	StopDate   *string `json:"stop_date"`
	Prescriber *string `json:"prescriber"`
	Pharmacy   *string `json:"pharmacy"`
	Confidence float64 `json:"confidence"`
}

type Vaccine struct {
	Name        string  `json:"name"`
	DateGiven   *string `json:"date_given"`
	Clinic      *string `json:"clinic"`
	LotNumber   *string `json:"lot_number"`
	NextDueDate *string `json:"next_due_date"`
	Confidence  float64 `json:"confidence"`
}

type Allergy struct {
	SubstanceName string  `json:"substance_name"`
	AllergyType   string  `json:"allergy_type"` // Drug|Food|Environmental|Vaccine
	ReactionDesc  *string `json:"reaction_desc"`
	Severity      *string `json:"severity"`
	Confidence    float64 `json:"confidence"`
}

type Problem struct {
	ConditionName string  `json:"condition_name"`
	OnsetDate     *string `json:"onset_date"`
	IsActive      bool    `json:"is_active"`
	Notes         *string `json:"notes"`
	Confidence    float64 `json:"confidence"`
}

type Vital struct {
	RecordedDate    *string  `json:"recorded_date"`
	WeightKg        *float64 `json:"weight_kg"`
	WeightLbs       *float64 `json:"weight_lbs"`
	TemperatureF    *float64 `json:"temperature_f"`
	HeartRateBPM    *int     `json:"heart_rate_bpm"`
	RespiratoryRate *int     `json:"respiratory_rate"`
	Notes           *string  `json:"notes"`
	Confidence      float64  `json:"confidence"`
}

// PetInfo carries identity hints. Informational only; never auto-applied to
// the pet record.
type PetInfo struct {
	Name       *string `json:"name"`
	Species    *string `json:"species"`
	Breed      *string `json:"breed"`
	Weight     *string `json:"weight"`
	Confidence float64 `json:"confidence"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
