package extract

import "testing"

func TestTextFromStreamEscapedParens(t *testing.T) {
	stream := []byte("BT\n" +
		"1 0 0 1 50 700 Td\n" +
		"(Simparica Trio \\(24.1-48 lbs\\)) Tj\n" +
		"0 -14 Td\n" +
		"(Dose: 1 chew \\(monthly\\) per label) Tj\n" +
		"ET\n")
	got := textFromStream(stream)
	want := "Simparica Trio (24.1-48 lbs)\nDose: 1 chew (monthly) per label"
	if got != want {
		t.Fatalf("textFromStream = %q, want %q", got, want)
	}
}

func TestPDFStrings(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{`(plain) Tj`, []string{"plain"}},
		{`(escaped \) close) Tj`, []string{`escaped \) close`}},
		{`(balanced (inner) text) Tj`, []string{"balanced (inner) text"}},
		{`[(one) -120 (two)] TJ`, []string{"one", "two"}},
		{`(unterminated`, []string{"unterminated"}},
	}
	for _, c := range cases {
		got := pdfStrings([]byte(c.line))
		if len(got) != len(c.want) {
			t.Fatalf("pdfStrings(%q) = %d literals, want %d", c.line, len(got), len(c.want))
		}
		for i := range got {
			if string(got[i]) != c.want[i] {
				t.Errorf("pdfStrings(%q)[%d] = %q, want %q", c.line, i, got[i], c.want[i])
			}
		}
	}
}

func TestDecodePDFString(t *testing.T) {
	cases := []struct{ in, want string }{
		{`Simparica \(chew\)`, "Simparica (chew)"},
		{`tab\there`, "tab\there"},
		{`octal\040space`, "octal space"},
		{`back\\slash`, `back\slash`},
	}
	for _, c := range cases {
		if got := decodePDFString([]byte(c.in)); got != c.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
