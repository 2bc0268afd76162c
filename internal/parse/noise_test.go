package parse

import (
	"strings"
	"testing"
)

func TestStripNoiseDropsVendorLines(t *testing.T) {
	in := strings.Join([]string{
		"Ponuda 123/2024",
		"Estimation on Page 1",
		"Person in Charge: H. Novak",
		"Date: 01.02.2024",
		"Time: 10:30",
		"Please check all dimensions",
		"Powered by ORGADATA LogiKal",
		"Germany: +49 1234",
		"Pozicija 1 Prozor 120x140",
	}, "\n")

	got := StripNoise(in)
	want := "Ponuda 123/2024\nPozicija 1 Prozor 120x140"
	if got != want {
		t.Errorf("StripNoise = %q, want %q", got, want)
	}
}

func TestStripNoiseCollapsesBlankRuns(t *testing.T) {
	got := StripNoise("a\n\n\n\n\nb")
	if got != "a\n\nb" {
		t.Errorf("StripNoise = %q, want %q", got, "a\n\nb")
	}
}

func TestStripNoiseIdempotent(t *testing.T) {
	in := "Ponuda 5\nDate: 01.01.2024\n\n\n\nUkupno: 100,00\nLogiKal report\n"
	once := StripNoise(in)
	twice := StripNoise(once)
	if once != twice {
		t.Errorf("StripNoise not idempotent: %q vs %q", once, twice)
	}
}

func TestStripNoiseKeepsDatumLines(t *testing.T) {
	// only the English vendor label is noise, Croatian date labels are data
	got := StripNoise("Datum: 15.03.2024")
	if got != "Datum: 15.03.2024" {
		t.Errorf("StripNoise dropped a data line: %q", got)
	}
}
