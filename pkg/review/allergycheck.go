package review

import (
	"strings"

	"gorm.io/gorm"

	"github.com/shouniet/medpetrx/models"
)

// CheckMedicationAgainstAllergies returns the pet's drug allergies whose
// substance name contains the drug name, case-insensitive. The direction
// matters: "Amoxicillin Trihydrate" on record flags a prescription of
// "amoxicillin", but a partial drug name never matches a longer substance.
func CheckMedicationAgainstAllergies(tx *gorm.DB, petID uint, drugName string) ([]models.Allergy, error) {
	var matches []models.Allergy
	err := tx.
		Where("pet_id = ? AND allergy_type = ?", petID, models.AllergyTypeDrug).
		Where(`lower(substance_name) LIKE ? ESCAPE '\'`, "%"+likeEscape(strings.ToLower(drugName))+"%").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// likeEscape neutralizes LIKE metacharacters so a drug name edited to contain
// % or _ matches literally instead of as a wildcard.
func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
