package parse

import (
	"regexp"
	"strings"
)

// bondVet extracts from Bond Vet visit summaries: labelled sections with
// "Parasite Preventive Medications", "Medications/Supplements", an
// IMMUNIZATIONS table and a PROBLEMS LIST.
type bondVet struct{}

var (
	bondClinicRE     = regexp.MustCompile(`(?i)(Bond Vet\s*[-–]\s*\w+)`)
	bondSomervilleRE = regexp.MustCompile(`(?i)somerville`)

	bondParasiteRE   = regexp.MustCompile(`(?s)Parasite Preventive Medications\s*\n(.+?)(?:\nMedications/Supplements|\n[A-Z]{2,})`)
	bondSupplementRE = regexp.MustCompile(`(?s)Medications/Supplements.*?\n(.+?)(?:\nKnown Allergies|\nCurrent Diet|\nOWNER|\n[A-Z]{3,}\n)`)
	bondNoMedsRE     = regexp.MustCompile(`^Medications:\s*No\b`)
	bondDetailRE     = regexp.MustCompile(`^(Hip|Skin|Heart|Immune|Cognitive|Liver|Urinary|Digestive)`)

	bondImmunizationsRE = regexp.MustCompile(`(?s)IMMUNIZATIONS\s*\n(.+?)(?:\nOTHER PRODUCTS|\nPLAN|\n[A-Z]{3,}\s)`)
	bondTableHeaderRE   = regexp.MustCompile(`^TYPE\s+DETAILS`)
	bondVaxDateRE       = regexp.MustCompile(`\w{3}\s+\d{2},?\s+\d{4}`)
	bondManufacturerRE  = regexp.MustCompile(`Manufacturer:.*`)
	bondVaxContRE       = regexp.MustCompile(`(H3N[28]|Bivalent)`)
	bondVaxTrailYearRE  = regexp.MustCompile(`\s*\d{4}$`)
	bondVaxProviderRE   = regexp.MustCompile(`\s*Provider:.*`)
	wsRE                = regexp.MustCompile(`\s+`)

	bondProblemsRE    = regexp.MustCompile(`(?s)PROBLEMS LIST\s*\n(.+?)(?:\nORDERS|\nIMMUNIZATIONS|\nPLAN)`)
	problemDateRE     = regexp.MustCompile(`(.+?)\s*[-–]\s*(\w+\s+\d{1,2},?\s+\d{4})`)
	vaccineNameHints  = []string{"Vaccine", "Leptospirosis", "Lyme", "Influenza", "Bordetella", "Rabies", "DAPP", "DHPP", "FVRCP", "FeLV"}
)

func (bondVet) Clinic(text string) string {
	low := strings.ToLower(text)
	if !strings.Contains(low, "bondvet.com") && !strings.Contains(low, "bond vet") {
		return ""
	}
	if m := bondClinicRE.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if bondSomervilleRE.MatchString(text) {
		return "Bond Vet - Somerville"
	}
	return "Bond Vet"
}

func (bondVet) Medications(text, provider string) []Medication {
	var meds []Medication

	if m := bondParasiteRE.FindStringSubmatch(text); m != nil {
		for _, line := range strings.Split(strings.TrimSpace(m[1]), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "Medications") || len(line) <= 3 {
				continue
			}
			var strength string
			if sm := strengthParenRE.FindStringSubmatch(line); sm != nil {
				strength = sm[1]
			}
			drug := strings.TrimSpace(parenRE.ReplaceAllString(line, ""))
			if drug == "" {
				continue
			}
			meds = append(meds, Medication{
				DrugName:   drug,
				Strength:   strPtr(strength),
				Directions: strPtr("Per label - parasite preventive"),
				Indication: strPtr("Parasite prevention"),
				Prescriber: strPtr(provider),
				Confidence: 0.9,
			})
		}
	}

	if m := bondSupplementRE.FindStringSubmatch(text); m != nil {
		block := strings.TrimSpace(m[1])
		if !bondNoMedsRE.MatchString(block) {
			var currentSupp string
			var details []string
			for _, line := range strings.Split(block, "\n") {
				line = strings.TrimSpace(line)
				if line == "" || strings.HasPrefix(line, "Medications: No") {
					continue
				}
				switch {
				case bondDetailRE.MatchString(line):
					details = append(details, line)
				case strings.Contains(line, "Supplement") || strings.Contains(line, "in 1") || strings.Contains(line, "Multi"):
					currentSupp = line
				case len(line) > 10 && strings.Contains(line, ":"):
					details = append(details, line)
				}
			}
			if currentSupp != "" {
				meds = append(meds, Medication{
					DrugName:   currentSupp,
					Directions: strPtr("Per label"),
					Indication: strPtr(strings.Join(details, "; ")),
					Confidence: 0.85,
				})
			}
		}
	}

	return meds
}

// Vaccines parses the IMMUNIZATIONS table. Entries routinely span two
// physical lines (name line + manufacturer/date continuation), so a current
// accumulator merges continuations before the record is emitted.
func (bondVet) Vaccines(text, visitDate, clinic string) []Vaccine {
	m := bondImmunizationsRE.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(m[1]), "\n") {
		l = strings.TrimSpace(l)
		if l != "" && !bondTableHeaderRE.MatchString(l) {
			lines = append(lines, l)
		}
	}

	var vaccines []Vaccine
	var current *Vaccine
	for _, line := range lines {
		if strings.HasPrefix(line, "Provider:") {
			continue
		}
		if containsAny(line, vaccineNameHints) {
			rawDate := bondVaxDateRE.FindString(line)
			name := bondManufacturerRE.ReplaceAllString(line, "")
			name = strings.TrimSpace(bondVaxDateRE.ReplaceAllString(name, ""))
			if name == "" || strings.HasPrefix(name, "Provider") {
				continue
			}
			if current != nil {
				vaccines = append(vaccines, *current)
			}
			date := parseDateString(rawDate)
			if date == "" {
				date = visitDate
			}
			current = &Vaccine{
				Name:       name,
				DateGiven:  strPtr(date),
				Clinic:     strPtr(clinic),
				Confidence: 0.9,
			}
		} else if current != nil && bondVaxContRE.MatchString(line) {
			current.Name += " " + line
			current.Name = strings.TrimSpace(bondManufacturerRE.ReplaceAllString(current.Name, ""))
			current.Name = strings.TrimSpace(bondVaxDateRE.ReplaceAllString(current.Name, ""))
		}
	}
	if current != nil {
		vaccines = append(vaccines, *current)
	}

	for i := range vaccines {
		name := strings.TrimSpace(wsRE.ReplaceAllString(vaccines[i].Name, " "))
		name = strings.TrimSpace(bondVaxTrailYearRE.ReplaceAllString(name, ""))
		name = strings.TrimSpace(bondVaxProviderRE.ReplaceAllString(name, ""))
		vaccines[i].Name = name
	}
	return vaccines
}

func (bondVet) Problems(text string) []Problem {
	m := bondProblemsRE.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var problems []Problem
	for _, line := range strings.Split(strings.TrimSpace(m[1]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if dm := problemDateRE.FindStringSubmatch(line); dm != nil {
			problems = append(problems, Problem{
				ConditionName: strings.TrimSpace(dm[1]),
				OnsetDate:     strPtr(parseDateString(dm[2])),
				IsActive:      true,
				Confidence:    0.9,
			})
		} else if len(line) > 2 {
			problems = append(problems, Problem{
				ConditionName: line,
				IsActive:      true,
				Confidence:    0.8,
			})
		}
	}
	return problems
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
