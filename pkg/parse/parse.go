// Package parse extracts structured clinical proposals from the plain text of
// veterinary visit summaries. It is deterministic, template-keyed regex work
// with zero network calls; an empty payload is the signal for the fallback
// extractor, not an error.
package parse

import (
	"regexp"
	"strings"
	"time"
)

// Extract parses concatenated per-page text of a visit summary into a
// proposed payload. Unmatched fields stay null; unrecognized documents
// produce an empty payload.
func Extract(text string) Payload {
	if strings.TrimSpace(text) == "" {
		return Payload{}
	}

	v := variantFor(DetectTemplate(text))

	visitDate := extractVisitDate(text)
	clinic := v.Clinic(text)
	provider := extractProvider(text)

	return Payload{
		Medications: v.Medications(text, provider),
		Vaccines:    v.Vaccines(text, visitDate, clinic),
		Vitals:      extractVitals(text, visitDate),
		Problems:    v.Problems(text),
		Allergies:   extractAllergies(text),
		PetInfo:     extractPetInfo(text),
	}
}

// Ordered visit-date anchors; first hit wins.
var visitDateREs = []*regexp.Regexp{
	regexp.MustCompile(`Date Generated:\s*(\w+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`Visit Date:\s*(\w+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(\w+\s+\d{1,2},?\s+\d{4})\s+at\s+\d`),
}

func extractVisitDate(text string) string {
	for _, re := range visitDateREs {
		if m := re.FindStringSubmatch(text); m != nil {
			if d := parseDateString(m[1]); d != "" {
				return d
			}
		}
	}
	return ""
}

var dateLayouts = []string{"January 2 2006", "Jan 2 2006", "1/2/2006", "1/2/06"}

// parseDateString normalizes the date formats seen across report families to
// YYYY-MM-DD. Returns "" when nothing parses.
func parseDateString(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

var (
	providerLabelRE = regexp.MustCompile(`Provider:\s*(Dr\.\s*[\w\s]+?)(?:\s*\(|\n|$)`)
	providerLooseRE = regexp.MustCompile(`(Dr\.\s*[\w]+\s+[\w\s]+?)(?:\n|Peabody|Somerville|$)`)
	providerTrimRE  = regexp.MustCompile(`\s+(Peabody|Somerville|Visit|Discharge).*`)
)

func extractProvider(text string) string {
	if m := providerLabelRE.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := providerLooseRE.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		return strings.TrimSpace(providerTrimRE.ReplaceAllString(name, ""))
	}
	return ""
}

// strengthParenRE captures a parenthesized strength like "(12.5 mg)".
var strengthParenRE = regexp.MustCompile(`\((.+?)\)`)

// strengthInlineRE captures an inline strength like "30 mL" or "250mg/5mL".
var strengthInlineRE = regexp.MustCompile(`(?i)(\d+\s*(?:mg|mL|mcg|IU|units?)(?:/\w+)?)`)

var parenRE = regexp.MustCompile(`\s*\(.+?\)`)
