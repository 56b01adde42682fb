package parse

import (
	"regexp"
	"strings"
)

var (
	patientNameRE = regexp.MustCompile(`Patient:\s*(\w+)`)
	canineRE      = regexp.MustCompile(`(?i)\bCanine\b|\bDog\b`)
	felineRE      = regexp.MustCompile(`(?i)\bFeline\b|\bCat\b`)
	breedLabelRE  = regexp.MustCompile(`Breed:\s*(.+?)(?:\n|\||$)`)
	breedGuessRE  = regexp.MustCompile(`([\w\s]+(?:Mix|Breed|Terrier|Retriever|Shepherd|Poodle|Bulldog)[\w\s]*)`)
	petWeightRE   = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*kg`)
)

// extractPetInfo pulls identity hints (name, canonical species, breed,
// weight). Returns nil when nothing matched so the payload omits the block.
func extractPetInfo(text string) *PetInfo {
	info := PetInfo{Confidence: 0.9}
	found := false

	if m := patientNameRE.FindStringSubmatch(text); m != nil {
		info.Name = strPtr(m[1])
		found = true
	}

	// Species synonyms collapse to the canonical "Dog"/"Cat".
	if canineRE.MatchString(text) {
		info.Species = strPtr("Dog")
		found = true
	} else if felineRE.MatchString(text) {
		info.Species = strPtr("Cat")
		found = true
	}

	if m := breedLabelRE.FindStringSubmatch(text); m != nil {
		info.Breed = strPtr(strings.TrimSpace(m[1]))
		found = true
	} else if m := breedGuessRE.FindStringSubmatch(text); m != nil {
		breed := strings.TrimSpace(m[1])
		if len(breed) < 60 {
			info.Breed = strPtr(breed)
			found = true
		}
	}

	if m := petWeightRE.FindStringSubmatch(text); m != nil {
		info.Weight = strPtr(m[1] + " kg")
		found = true
	}

	if !found {
		return nil
	}
	return &info
}
