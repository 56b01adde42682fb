package parse

import "testing"

func TestDetectTemplate(t *testing.T) {
	cases := []struct {
		text string
		want Template
	}{
		{"Visit summary from Bond Vet - Somerville", TemplateBondVet},
		{"see bondvet.com for details", TemplateBondVet},
		{"Veterinary Emergency Group discharge", TemplateVEG},
		{"VEG - Boston", TemplateVEG},
		{"thank you for visiting veg.com", TemplateVEG},
		{"Sunny Acres Animal Hospital", TemplateGeneric},
		{"", TemplateGeneric},
	}
	for _, c := range cases {
		if got := DetectTemplate(c.text); got != c.want {
			t.Errorf("DetectTemplate(%q) = %s, want %s", c.text, got, c.want)
		}
	}
}

func TestParseDateString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Feb 09, 2026", "2026-02-09"},
		{"February 9, 2026", "2026-02-09"},
		{"2/9/2026", "2026-02-09"},
		{"2/9/26", "2026-02-09"},
		{"not a date", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := parseDateString(c.in); got != c.want {
			t.Errorf("parseDateString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractEmptyText(t *testing.T) {
	p := Extract("")
	if !p.Empty() {
		t.Fatalf("expected empty payload for empty text, got %+v", p)
	}
	p = Extract("   \n\t  ")
	if !p.Empty() {
		t.Fatalf("expected empty payload for whitespace text, got %+v", p)
	}
}

func TestPayloadEmptyIgnoresPetInfo(t *testing.T) {
	p := Payload{PetInfo: &PetInfo{Name: strPtr("Biscuit")}}
	if !p.Empty() {
		t.Fatal("payload with only pet_info should count as empty")
	}
	p.Problems = []Problem{{ConditionName: "Pruritus"}}
	if p.Empty() {
		t.Fatal("payload with a problem should not be empty")
	}
}

func TestExtractProvider(t *testing.T) {
	text := "Provider: Dr. Jane Smith (DVM)\nSomerville MA"
	if got := extractProvider(text); got != "Dr. Jane Smith" {
		t.Fatalf("provider = %q, want %q", got, "Dr. Jane Smith")
	}
}

func TestExtractAllergiesNegativeStatement(t *testing.T) {
	for _, text := range []string{
		"Known Allergies: None\nCurrent Diet",
		"No reported allergies at this time",
		"No known allergies",
	} {
		if got := extractAllergies(text); len(got) != 0 {
			t.Errorf("expected no allergies for %q, got %+v", text, got)
		}
	}
}

func TestExtractAllergiesListed(t *testing.T) {
	text := "Known Allergies:\nAmoxicillin Trihydrate\nChicken protein\nCurrent Diet\nKibble"
	got := extractAllergies(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 allergies, got %d: %+v", len(got), got)
	}
	if got[0].SubstanceName != "Amoxicillin Trihydrate" || got[0].AllergyType != "Drug" {
		t.Fatalf("unexpected first allergy: %+v", got[0])
	}
	if got[0].Confidence != 0.7 {
		t.Fatalf("allergy confidence = %v, want 0.7", got[0].Confidence)
	}
}

func TestExtractPetInfo(t *testing.T) {
	text := "Patient: Biscuit\nCanine\nBreed: Beagle Mix\n31.7 kg"
	info := extractPetInfo(text)
	if info == nil {
		t.Fatal("expected pet info")
	}
	if *info.Name != "Biscuit" || *info.Species != "Dog" {
		t.Fatalf("unexpected identity: %+v", info)
	}
	if *info.Breed != "Beagle Mix" {
		t.Fatalf("breed = %q", *info.Breed)
	}
	if *info.Weight != "31.7 kg" {
		t.Fatalf("weight = %q", *info.Weight)
	}
	if extractPetInfo("nothing useful here") != nil {
		t.Fatal("expected nil pet info for unmatched text")
	}
}
