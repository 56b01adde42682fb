package parse

import (
	"regexp"
	"strings"
)

var (
	noAllergiesRE    = regexp.MustCompile(`(?i)(?:No reported allergies|Allergies:\s*None|No known allergies)`)
	allergySectionRE = regexp.MustCompile(`(?s)(?:Known )?Allergies[:\s]+(.+?)(?:\nCurrent Diet|\n[A-Z]{2,})`)
)

// extractAllergies parses the allergies section. Negative statements
// ("no reported allergies" family) short-circuit to an empty list.
func extractAllergies(text string) []Allergy {
	if noAllergiesRE.MatchString(text) {
		return nil
	}

	m := allergySectionRE.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	block := strings.TrimSpace(m[1])
	low := strings.ToLower(block)
	if strings.Contains(low, "none") || strings.Contains(low, "no reported") {
		return nil
	}

	var allergies []Allergy
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(strings.ToLower(line), "none") || len(line) <= 2 {
			continue
		}
		allergies = append(allergies, Allergy{
			SubstanceName: line,
			AllergyType:   "Drug",
			Confidence:    0.7,
		})
	}
	return allergies
}
