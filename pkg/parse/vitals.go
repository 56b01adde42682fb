package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// LbsPerKg is the fixed weight conversion factor used everywhere a missing
// unit is derived from the other.
const LbsPerKg = 2.20462

var (
	weightKgRE     = regexp.MustCompile(`(?i)Weight\s+(\d+\.?\d*)\s*kg`)
	weightLbsRE    = regexp.MustCompile(`(?i)Weight\s+(\d+\.?\d*)\s*(?:lbs?|pounds?)`)
	weightBareKgRE = regexp.MustCompile(`(\d+\.?\d*)\s*kg\b`)
	heartRateRE    = regexp.MustCompile(`(?i)Heart Rate\s+(\d+)\s*(?:bpm|BPM)`)
	respRateRE     = regexp.MustCompile(`(?i)Respiratory Rate\s+(\d+)\s*(?:bpm|BPM)?`)
	temperatureRE  = regexp.MustCompile(`(?i)Temperature\s+(\d+\.?\d*)\s*°?F`)
	bcsRE          = regexp.MustCompile(`BCS\s+(\d+)[/\s]*(?:\(?\d+-?\d*\)?|/\d+)`)
	mucousRE       = regexp.MustCompile(`(?i)Mucous Membranes?\s+(\w+)`)
	crtRE          = regexp.MustCompile(`(?i)(?:CRT|Capillary Refill Time)\s+([<>]?\d+\s*(?:sec|Seconds?)?)`)
	attitudeRE     = regexp.MustCompile(`(?i)(?:Attitude|Mentation)\s+(\w+)`)
)

// Biologically implausible respiratory rates are OCR noise, not data.
const maxRespiratoryRate = 200

// extractVitals does a single pass over the whole text; vitals are laid out
// the same way across the known report families. Returns an empty slice (not
// an all-null record) when nothing at all was found.
func extractVitals(text, visitDate string) []Vital {
	v := Vital{RecordedDate: strPtr(visitDate), Confidence: 0.9}
	foundAny := false

	if m := weightKgRE.FindStringSubmatch(text); m != nil {
		if kg, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.WeightKg = floatPtr(kg)
			v.WeightLbs = floatPtr(round1(kg * LbsPerKg))
			foundAny = true
		}
	}
	if v.WeightKg == nil {
		if m := weightLbsRE.FindStringSubmatch(text); m != nil {
			if lbs, err := strconv.ParseFloat(m[1], 64); err == nil {
				v.WeightLbs = floatPtr(lbs)
				v.WeightKg = floatPtr(round1(lbs / LbsPerKg))
				foundAny = true
			}
		}
	}
	// "31.7 kg" inside a pet info line, without the Weight label.
	if v.WeightKg == nil {
		if m := weightBareKgRE.FindStringSubmatch(text); m != nil {
			if kg, err := strconv.ParseFloat(m[1], 64); err == nil {
				v.WeightKg = floatPtr(kg)
				v.WeightLbs = floatPtr(round1(kg * LbsPerKg))
				foundAny = true
			}
		}
	}

	if m := heartRateRE.FindStringSubmatch(text); m != nil {
		if hr, err := strconv.Atoi(m[1]); err == nil {
			v.HeartRateBPM = intPtr(hr)
			foundAny = true
		}
	}
	if m := respRateRE.FindStringSubmatch(text); m != nil {
		if rr, err := strconv.Atoi(m[1]); err == nil && rr < maxRespiratoryRate {
			v.RespiratoryRate = intPtr(rr)
			foundAny = true
		}
	}
	if m := temperatureRE.FindStringSubmatch(text); m != nil {
		if tf, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.TemperatureF = floatPtr(tf)
			foundAny = true
		}
	}

	var notes []string
	if m := bcsRE.FindString(text); m != "" {
		notes = append(notes, "BCS: "+strings.TrimSpace(m))
	}
	if m := mucousRE.FindStringSubmatch(text); m != nil {
		notes = append(notes, "Mucous Membranes: "+m[1])
	}
	if m := crtRE.FindStringSubmatch(text); m != nil {
		notes = append(notes, "CRT: "+strings.TrimSpace(m[1]))
	}
	if m := attitudeRE.FindStringSubmatch(text); m != nil {
		notes = append(notes, "Attitude: "+m[1])
	}

	if !foundAny {
		return nil
	}
	if len(notes) > 0 {
		v.Notes = strPtr(strings.Join(notes, ". "))
	}
	return []Vital{v}
}

// round1 is the parser-side rounding; the user-editable API rounds derived
// weights to 2 decimals instead.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
