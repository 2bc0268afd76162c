package spatial

import (
	"testing"

	"github.com/rubilakse/docparse/internal/entity"
)

func frag(text string, x, y, w, h float64) entity.Fragment {
	return entity.Fragment{Text: text, X: x, Y: y, W: w, H: h}
}

func TestReconstructEmpty(t *testing.T) {
	if got := Reconstruct(nil); got != "" {
		t.Errorf("Reconstruct(nil) = %q, want empty", got)
	}
	if got := Reconstruct([]entity.Fragment{frag("   ", 0, 0, 10, 10)}); got != "" {
		t.Errorf("blank fragments should produce empty text, got %q", got)
	}
}

func TestReconstructRowOrdering(t *testing.T) {
	// draw order is scrambled, reading order is not
	frags := []entity.Fragment{
		frag("world", 60, 0, 30, 10),
		frag("second", 0, 12, 40, 10),
		frag("Hello", 0, 1, 30, 10),
	}

	got := Reconstruct(frags)
	want := "Hello world\nsecond"
	if got != want {
		t.Errorf("Reconstruct = %q, want %q", got, want)
	}
}

func TestReconstructColumnGapBecomesTab(t *testing.T) {
	// gap of 40 against a mean height of 10 crosses the column threshold
	frags := []entity.Fragment{
		frag("Naziv", 0, 0, 20, 10),
		frag("10,00", 60, 0, 20, 10),
	}

	got := Reconstruct(frags)
	want := "Naziv\t10,00"
	if got != want {
		t.Errorf("Reconstruct = %q, want %q", got, want)
	}
}

func TestReconstructParagraphBreak(t *testing.T) {
	frags := []entity.Fragment{
		frag("header", 0, 0, 30, 10),
		frag("body", 0, 50, 30, 10),
	}

	got := Reconstruct(frags)
	want := "header\n\nbody"
	if got != want {
		t.Errorf("Reconstruct = %q, want %q", got, want)
	}
}

func TestReconstructJoinsTouchingFragments(t *testing.T) {
	// PDF streams often split a single word into runs a few units apart
	frags := []entity.Fragment{
		frag("Ra", 0, 0, 12, 10),
		frag("čun", 13, 0, 18, 10),
	}

	got := Reconstruct(frags)
	want := "Račun"
	if got != want {
		t.Errorf("Reconstruct = %q, want %q", got, want)
	}
}
