package parse

import "strings"

// Template identifies the clinic-report family a document belongs to. Each
// family gets its own explicit extractor variant so the section heuristics
// stay auditable per template instead of living in one pattern cascade.
type Template int

const (
	TemplateGeneric Template = iota
	TemplateBondVet
	TemplateVEG
)

func (t Template) String() string {
	switch t {
	case TemplateBondVet:
		return "bondvet"
	case TemplateVEG:
		return "veg"
	default:
		return "generic"
	}
}

// DetectTemplate classifies raw page text into a template family.
func DetectTemplate(text string) Template {
	low := strings.ToLower(text)
	if strings.Contains(low, "bondvet.com") || strings.Contains(low, "bond vet") {
		return TemplateBondVet
	}
	if strings.Contains(low, "veg.com") || strings.Contains(low, "veterinary emergency group") || strings.Contains(text, "VEG") {
		return TemplateVEG
	}
	return TemplateGeneric
}

// variant is the category-extraction interface every template family
// implements. Vitals, allergies, visit date, provider and pet identity are
// template-independent and live in the shared extractors.
type variant interface {
	Clinic(text string) string
	Medications(text, provider string) []Medication
	Vaccines(text, visitDate, clinic string) []Vaccine
	Problems(text string) []Problem
}

func variantFor(t Template) variant {
	switch t {
	case TemplateBondVet:
		return bondVet{}
	case TemplateVEG:
		return vegClinic{}
	default:
		return generic{}
	}
}

// generic runs both known families' section extractors over an unclassified
// document and merges, so loosely formatted summaries still yield proposals.
type generic struct{}

func (generic) Clinic(text string) string {
	if c := (bondVet{}).Clinic(text); c != "" {
		return c
	}
	return vegClinic{}.Clinic(text)
}

func (generic) Medications(text, provider string) []Medication {
	meds := bondVet{}.Medications(text, provider)
	for _, m := range (vegClinic{}).Medications(text, provider) {
		if !hasMedicationPrefix(meds, m.DrugName) {
			meds = append(meds, m)
		}
	}
	return meds
}

func (generic) Vaccines(text, visitDate, clinic string) []Vaccine {
	return bondVet{}.Vaccines(text, visitDate, clinic)
}

func (generic) Problems(text string) []Problem {
	probs := bondVet{}.Problems(text)
	for _, p := range (vegClinic{}).Problems(text) {
		if !hasProblem(probs, p.ConditionName) {
			probs = append(probs, p)
		}
	}
	return probs
}

// hasMedicationPrefix reports whether meds already contains an entry whose
// name shares a case-insensitive prefix with name. Used to avoid re-adding a
// medication captured by an earlier block of the same document.
func hasMedicationPrefix(meds []Medication, name string) bool {
	key := strings.ToLower(name)
	if len(key) > 10 {
		key = key[:10]
	}
	for _, m := range meds {
		if strings.HasPrefix(strings.ToLower(m.DrugName), key) {
			return true
		}
	}
	return false
}

func hasProblem(probs []Problem, name string) bool {
	for _, p := range probs {
		if strings.EqualFold(p.ConditionName, name) {
			return true
		}
	}
	return false
}
