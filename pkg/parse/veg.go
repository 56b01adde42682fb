package parse

import (
	"regexp"
	"strings"
)

// vegClinic extracts from VEG (Veterinary Emergency Group) discharge
// summaries: all-caps section headers, dispensed MEDICATIONS entries with
// "Give ..." direction lines, numbered HOME CARE recommendations, and a
// PROBLEMS AND DIFFERENTIALS list.
type vegClinic struct{}

var (
	vegClinicDashRE = regexp.MustCompile(`VEG\s*[-–]?\s*(\w+)`)
	vegClinicLongRE = regexp.MustCompile(`(?i)Veterinary Emergency Group\s*(?:of\s+)?(\w+)`)

	vegMedicationsRE = regexp.MustCompile(`(?s)MEDICATIONS\s+(.+?)(?:\nHOME CARE|\nMONITORING|\nTREATMENT|\n[A-Z]{3,}\s+[A-Z])`)
	vegHomeCareRE    = regexp.MustCompile(`(?s)HOME CARE.*?MONITORING[:\s]*(.+?)(?:\nThank you|\nSincerely|\nVEG\s*\|)`)
	vegHomeCareAltRE = regexp.MustCompile(`(?s)HOME CARE.*?\n(.+?)(?:\nThank you|\nSincerely)`)
	vegNumberedRE    = regexp.MustCompile(`\d+\.\s+(.+?)(?:\n|$)`)

	vegProblemsRE   = regexp.MustCompile(`(?s)PROBLEMS\s+(?:AND\s+)?(?:PROBLEMS\s+)?DIFFERENTIALS\s*\n(.+?)(?:\nNOTES|\nTREATMENT|\n[A-Z]{3,}\s)`)
	vegComplaintRE  = regexp.MustCompile(`(?s)PRESENTING\s+COMPLAINTS?\s*\n?(.+?)(?:\nHISTORY|\nVITALS|\n[A-Z]{3,})`)
)

func (vegClinic) Clinic(text string) string {
	low := strings.ToLower(text)
	if !strings.Contains(low, "veg.com") && !strings.Contains(low, "veterinary emergency group") && !strings.Contains(text, "VEG") {
		return ""
	}
	if m := vegClinicDashRE.FindStringSubmatch(text); m != nil {
		switch m[1] {
		case "Medical", "Tx", "Discharge":
		default:
			return "VEG - " + m[1]
		}
	}
	if m := vegClinicLongRE.FindStringSubmatch(text); m != nil {
		return "VEG - " + m[1]
	}
	return "VEG"
}

func (vegClinic) Medications(text, provider string) []Medication {
	var meds []Medication

	if m := vegMedicationsRE.FindStringSubmatch(text); m != nil {
		lines := strings.Split(strings.TrimSpace(m[1]), "\n")
		for i := 0; i < len(lines); i++ {
			line := strings.TrimSpace(lines[i])
			if line == "" {
				continue
			}
			// Direction/quantity lines never start an entry.
			if strings.HasPrefix(line, "Give ") || strings.HasPrefix(line, "Total Qty") || strings.HasPrefix(line, "Next Dose") {
				continue
			}

			drugName := line
			var directions string
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, "Give ") {
					directions = next
					i++
				}
			}

			var strength string
			if sm := strengthInlineRE.FindStringSubmatch(drugName); sm != nil {
				strength = sm[1]
			}

			if strings.HasPrefix(drugName, "Total") || strings.HasPrefix(drugName, "Next") {
				continue
			}
			meds = append(meds, Medication{
				DrugName:   drugName,
				Strength:   strPtr(strength),
				Directions: strPtr(directions),
				Prescriber: strPtr(provider),
				Confidence: 0.85,
			})
		}
	}

	// Numbered home-care recommendations, deduplicated against medications
	// already captured from the dispensed block above.
	hm := vegHomeCareRE.FindStringSubmatch(text)
	if hm == nil {
		hm = vegHomeCareAltRE.FindStringSubmatch(text)
	}
	if hm != nil {
		for _, nm := range vegNumberedRE.FindAllStringSubmatch(strings.TrimSpace(hm[1]), -1) {
			medLine := strings.TrimSpace(nm[1])
			if strings.HasPrefix(medLine, "This is") || strings.HasPrefix(medLine, "We recommend") || len(medLine) < 3 {
				continue
			}
			drugName := strings.TrimSpace(strings.SplitN(medLine, "(", 2)[0])
			if drugName == "" || hasMedicationPrefix(meds, drugName) {
				continue
			}
			meds = append(meds, Medication{
				DrugName:   drugName,
				Indication: strPtr("Recommended for home care"),
				Prescriber: strPtr(provider),
				Pharmacy:   strPtr("OTC"),
				Confidence: 0.8,
			})
		}
	}

	return meds
}

// VEG summaries carry no immunization table.
func (vegClinic) Vaccines(text, visitDate, clinic string) []Vaccine { return nil }

func (vegClinic) Problems(text string) []Problem {
	var problems []Problem

	if m := vegProblemsRE.FindStringSubmatch(text); m != nil {
		for _, line := range strings.Split(strings.TrimSpace(m[1]), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || line == "DIFFERENTIALS" {
				continue
			}
			// Short comma-free lines are problems; long comma lists are
			// differentials, which stay out of the proposal.
			if !strings.Contains(line, ",") && len(line) < 50 && !hasProblem(problems, line) {
				problems = append(problems, Problem{
					ConditionName: line,
					IsActive:      true,
					Confidence:    0.85,
				})
			}
		}
	}

	// A presenting complaint counts as a problem only when it is short
	// enough to plausibly be a label rather than a paragraph.
	if m := vegComplaintRE.FindStringSubmatch(text); m != nil {
		complaint := strings.TrimSpace(m[1])
		if complaint != "" && len(complaint) < 100 && !hasProblem(problems, complaint) {
			problems = append(problems, Problem{
				ConditionName: complaint,
				IsActive:      true,
				Notes:         strPtr("Presenting complaint"),
				Confidence:    0.85,
			})
		}
	}

	return problems
}
