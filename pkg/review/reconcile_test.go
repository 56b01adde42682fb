package review

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/shouniet/medpetrx/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Pet{}, &models.Document{},
		&models.Medication{}, &models.Vaccine{}, &models.Allergy{},
		&models.Problem{}, &models.Vital{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPetWithDoc(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()
	user := models.User{Username: "owner", HashedPassword: []byte("x")}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	pet := models.Pet{OwnerID: user.ID, Name: "Biscuit", Species: "Dog"}
	if err := db.Create(&pet).Error; err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	doc := models.Document{PetID: pet.ID, Filename: "visit.pdf", FilePath: "/tmp/visit.pdf", ExtractionStatus: models.ExtractionCompleted}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed doc: %v", err)
	}
	return pet.ID, doc.ID
}

func TestReconcileDecisions(t *testing.T) {
	db := newTestDB(t)
	petID, docID := seedPetWithDoc(t, db)

	// Recorded drug allergy that the approved medication must trip.
	if err := db.Create(&models.Allergy{
		PetID: petID, AllergyType: models.AllergyTypeDrug,
		SubstanceName: "Amoxicillin Trihydrate", Severity: "Severe",
	}).Error; err != nil {
		t.Fatalf("seed allergy: %v", err)
	}

	batch := Batch{
		Medications: []MedicationDecision{
			{Decision: DecisionApproved, DrugName: "amoxicillin", Strength: "250 mg", StartDate: "2026-02-09"},
			{Decision: DecisionRejected, DrugName: "Carprofen"},
		},
		Allergies: []AllergyDecision{
			{Decision: DecisionEdited, SubstanceName: "Chicken protein", AllergyType: "Food"},
		},
		Vitals: []VitalDecision{
			{Decision: DecisionApproved, RecordedDate: "2026-02-09", WeightKg: f(10.0)},
		},
	}

	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var rerr error
		res, rerr = Reconcile(tx, petID, docID, batch)
		return rerr
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if res.MedicationsSaved != 1 || res.AllergiesSaved != 1 || res.VitalsSaved != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.VaccinesSaved != 0 || res.ProblemsSaved != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}

	if len(res.AllergyWarnings) != 1 {
		t.Fatalf("expected 1 allergy warning, got %+v", res.AllergyWarnings)
	}
	w := res.AllergyWarnings[0]
	if w.DrugName != "amoxicillin" || w.AllergySubstance != "Amoxicillin Trihydrate" || w.Severity != "Severe" {
		t.Fatalf("unexpected warning: %+v", w)
	}

	// Rejected rows never land.
	var medCount int64
	db.Model(&models.Medication{}).Where("pet_id = ?", petID).Count(&medCount)
	if medCount != 1 {
		t.Fatalf("expected 1 medication row, got %d", medCount)
	}
	var med models.Medication
	db.Where("pet_id = ?", petID).First(&med)
	if med.DrugName != "amoxicillin" || !med.IsActive {
		t.Fatalf("unexpected medication row: %+v", med)
	}
	if med.DocumentID == nil || *med.DocumentID != docID {
		t.Fatalf("medication not linked to source document: %v", med.DocumentID)
	}
	if med.StartDate == nil || med.StartDate.Format("2006-01-02") != "2026-02-09" {
		t.Fatalf("unexpected start date: %v", med.StartDate)
	}

	// Saved allergy keeps the supplied type.
	var al models.Allergy
	db.Where("pet_id = ? AND substance_name = ?", petID, "Chicken protein").First(&al)
	if al.AllergyType != models.AllergyTypeFood {
		t.Fatalf("allergy type = %q", al.AllergyType)
	}

	// Derived lbs rounds to two decimals.
	var vit models.Vital
	db.Where("pet_id = ?", petID).First(&vit)
	if vit.WeightLbs == nil || *vit.WeightLbs != 22.05 {
		t.Fatalf("derived lbs = %v, want 22.05", vit.WeightLbs)
	}
}

func TestReconcileInvalidDateRollsBack(t *testing.T) {
	db := newTestDB(t)
	petID, docID := seedPetWithDoc(t, db)

	batch := Batch{
		Medications: []MedicationDecision{
			{Decision: DecisionApproved, DrugName: "Carprofen"},
			{Decision: DecisionApproved, DrugName: "Gabapentin", StartDate: "not-a-date"},
		},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		_, rerr := Reconcile(tx, petID, docID, batch)
		return rerr
	})
	if err == nil {
		t.Fatal("expected error for invalid date")
	}
	var count int64
	db.Model(&models.Medication{}).Where("pet_id = ?", petID).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback to remove all rows, got %d", count)
	}
}

func TestReconcileNotIdempotent(t *testing.T) {
	db := newTestDB(t)
	petID, docID := seedPetWithDoc(t, db)

	batch := Batch{Problems: []ProblemDecision{{Decision: DecisionApproved, ConditionName: "Pruritus"}}}
	for i := 0; i < 2; i++ {
		if err := db.Transaction(func(tx *gorm.DB) error {
			_, rerr := Reconcile(tx, petID, docID, batch)
			return rerr
		}); err != nil {
			t.Fatalf("reconcile %d: %v", i, err)
		}
	}
	var count int64
	db.Model(&models.Problem{}).Where("pet_id = ?", petID).Count(&count)
	if count != 2 {
		t.Fatalf("resubmitting the batch should duplicate rows, got %d", count)
	}
}

func TestReconcileEmptyBatch(t *testing.T) {
	db := newTestDB(t)
	petID, docID := seedPetWithDoc(t, db)

	res, err := Reconcile(db, petID, docID, Batch{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.MedicationsSaved != 0 || res.AllergyWarnings == nil || len(res.AllergyWarnings) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCheckMedicationAgainstAllergies(t *testing.T) {
	db := newTestDB(t)
	petID, _ := seedPetWithDoc(t, db)

	seed := []models.Allergy{
		{PetID: petID, AllergyType: models.AllergyTypeDrug, SubstanceName: "Amoxicillin Trihydrate", Severity: "Moderate"},
		{PetID: petID, AllergyType: models.AllergyTypeDrug, SubstanceName: "Peni"},
		{PetID: petID, AllergyType: models.AllergyTypeFood, SubstanceName: "amoxicillin snacks"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// Substance contains drug, case-insensitive.
	matches, err := CheckMedicationAgainstAllergies(db, petID, "AMOXICILLIN")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(matches) != 1 || matches[0].SubstanceName != "Amoxicillin Trihydrate" {
		t.Fatalf("unexpected matches: %+v", matches)
	}

	// Containment direction: substance contains drug. A short recorded
	// substance does not flag a longer drug name.
	matches, err = CheckMedicationAgainstAllergies(db, petID, "Penicillin V")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches for longer drug name, got %+v", matches)
	}

	// Other pets' allergies never match.
	matches, err = CheckMedicationAgainstAllergies(db, petID+100, "amoxicillin")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches for other pet, got %+v", matches)
	}

	// LIKE metacharacters in an edited drug name match literally, never as
	// wildcards.
	for _, drug := range []string{"a%t", "am_xicillin", `amox\icillin`} {
		matches, err = CheckMedicationAgainstAllergies(db, petID, drug)
		if err != nil {
			t.Fatalf("check %q: %v", drug, err)
		}
		if len(matches) != 0 {
			t.Fatalf("drug %q matched as wildcard: %+v", drug, matches)
		}
	}
}

func TestToDateTime(t *testing.T) {
	got, err := toDateTime("2026-02-09")
	if err != nil || got == nil {
		t.Fatalf("toDateTime: %v %v", got, err)
	}
	if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if got2, err := toDateTime("2026-02-09T14:30:00Z"); err != nil || got2.Day() != 9 {
		t.Fatalf("rfc3339: %v %v", got2, err)
	}
	if got3, err := toDateTime(""); err != nil || got3 != nil {
		t.Fatalf("empty: %v %v", got3, err)
	}
	if _, err := toDateTime("02/09/2026"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFillWeights(t *testing.T) {
	kg, lbs := fillWeights(f(10.0), nil)
	if *kg != 10.0 || *lbs != 22.05 {
		t.Fatalf("kg->lbs: %v %v", *kg, *lbs)
	}
	kg, lbs = fillWeights(nil, f(22.0))
	if *lbs != 22.0 || *kg != 9.98 {
		t.Fatalf("lbs->kg: %v %v", *kg, *lbs)
	}
	kg, lbs = fillWeights(f(10.0), f(23.0))
	if *kg != 10.0 || *lbs != 23.0 {
		t.Fatalf("both supplied must not be touched: %v %v", *kg, *lbs)
	}
	kg, lbs = fillWeights(nil, nil)
	if kg != nil || lbs != nil {
		t.Fatalf("nil in, nil out: %v %v", kg, lbs)
	}
}

func f(v float64) *float64 { return &v }
