package parse

import (
	"strings"
	"testing"
)

func testCfg() Config {
	return Config{LongNameLimit: 180, MaxLineRows: 50, MaxSuspectRows: 2}
}

func TestHeaderScore(t *testing.T) {
	tests := []struct {
		line string
		min  int
	}{
		{"Šifra Naziv Količina Cijena PDV", 2},
		{"SIFRA\tOPIS\tJMJ\tKOL\tC.JED\tIZNOS", 2},
		{"Rb. Naziv artikla  Jed.mj.  Količina", 2},
	}
	for _, tt := range tests {
		if got := HeaderScore(tt.line); got < tt.min {
			t.Errorf("HeaderScore(%q) = %d, want >= %d", tt.line, got, tt.min)
		}
	}

	if got := HeaderScore("Poštovani, u privitku dostavljamo"); got >= 2 {
		t.Errorf("prose line scored %d, want < 2", got)
	}
}

func TestExtractLineItemsTable(t *testing.T) {
	text := strings.Join([]string{
		"RAČUN 55/1/1",
		"",
		"Šifra\tNaziv\tJMJ\tKoličina\tCijena\tIznos",
		"AL-250\tAluminijski profil 250\tkom\t10\t12,50\t125,00",
		"ST-010\tStaklo 4mm\tm2\t2,5\t40,00\t100,00",
		"",
		"UKUPNO: 225,00",
	}, "\n")

	items, warns := ExtractLineItems(text, testCfg())
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.Position != 1 {
		t.Errorf("position = %d", first.Position)
	}
	if first.Code == nil || *first.Code != "AL-250" {
		t.Errorf("code = %v", first.Code)
	}
	if first.Name != "Aluminijski profil 250" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Unit == nil || *first.Unit != "kom" {
		t.Errorf("unit = %v", first.Unit)
	}
	if first.Quantity == nil || *first.Quantity != 10 {
		t.Errorf("quantity = %v", first.Quantity)
	}
	if first.UnitPrice == nil || *first.UnitPrice != 12.50 {
		t.Errorf("unit price = %v", first.UnitPrice)
	}
	if first.AmountNet == nil || *first.AmountNet != 125 {
		t.Errorf("amount = %v", first.AmountNet)
	}

	second := items[1]
	if second.Quantity == nil || *second.Quantity != 2.5 {
		t.Errorf("second quantity = %v", second.Quantity)
	}
}

func TestExtractLineItemsPercentColumns(t *testing.T) {
	text := strings.Join([]string{
		"Šifra\tNaziv\tKoličina\tJMJ\tCijena\tIznos",
		"A-100\tProfil ALU 500\t2,00\tkom\t100,00\trabat\t25%\t200,00",
		"B-200\tKutnik spojni\t4\tkom\t25,00\tPDV\t25%\t100,00",
		"C-300\tBrtva EPDM\t10\tm\t2,00\t5%\t20,00",
	}, "\n")

	items, _ := ExtractLineItems(text, testCfg())
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	// a rabat keyword on the line makes the percentage a discount
	first := items[0]
	if first.DiscountPercent == nil || *first.DiscountPercent != 25 {
		t.Errorf("discount percent = %v", first.DiscountPercent)
	}
	if first.VATPercent != nil {
		t.Errorf("vat percent = %v, want nil", first.VATPercent)
	}
	if first.AmountNet == nil || *first.AmountNet != 200 {
		t.Errorf("amount = %v", first.AmountNet)
	}

	second := items[1]
	if second.VATPercent == nil || *second.VATPercent != 25 {
		t.Errorf("vat percent = %v", second.VATPercent)
	}
	if second.DiscountPercent != nil {
		t.Errorf("discount percent = %v, want nil", second.DiscountPercent)
	}

	// a bare percentage with no keyword counts as the VAT rate
	third := items[2]
	if third.VATPercent == nil || *third.VATPercent != 5 {
		t.Errorf("vat percent = %v", third.VATPercent)
	}
}

func TestExtractLineItemsStopsAtTotals(t *testing.T) {
	text := strings.Join([]string{
		"Naziv\tKoličina\tCijena\tIznos",
		"Profil\tkom\t1\t10,00\t10,00",
		"OSNOVICA: 10,00",
		"PDV 25%: 2,50",
	}, "\n")

	items, _ := ExtractLineItems(text, testCfg())
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

func TestExtractLineItemsFallbackBlocks(t *testing.T) {
	text := strings.Join([]string{
		"Ponuda za stolariju",
		"Pozicija 1",
		"Prozor PVC 120x140, dvokrilni",
		"dvostruko staklo, bijeli okvir",
		"kvaka lijevo",
		"Pozicija 2",
		"Vrata ulazna 100x210",
	}, "\n")

	items, warns := ExtractLineItems(text, testCfg())
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	// only the first descriptive line of a block, never the joined block
	if items[0].Name != "Prozor PVC 120x140, dvokrilni" {
		t.Errorf("first item name = %q", items[0].Name)
	}
	if items[1].Name != "Vrata ulazna 100x210" {
		t.Errorf("second item name = %q", items[1].Name)
	}
}

func TestExtractLineItemsNoMarkersStaysEmpty(t *testing.T) {
	text := strings.Join([]string{
		"Poštovani,",
		"u privitku dostavljamo traženu dokumentaciju za objekt.",
		"Lijep pozdrav",
	}, "\n")

	items, warns := ExtractLineItems(text, testCfg())
	if len(items) != 0 {
		t.Fatalf("got %d items, want none", len(items))
	}
	if len(warns) != 0 {
		t.Errorf("warnings = %v", warns)
	}
}

func TestExtractLineItemsRejectsDegradedFallback(t *testing.T) {
	cfg := testCfg()
	cfg.LongNameLimit = 20

	// two marker blocks of running prose, both far over the name cap
	text := strings.Join([]string{
		"Pozicija 1 " + strings.Repeat("vrlo dugačak opis ", 10),
		"Pozicija 2 " + strings.Repeat("jos jedan dugi opis ", 10),
	}, "\n")

	items, warns := ExtractLineItems(text, cfg)
	if len(items) != 0 {
		t.Fatalf("expected rejection, got %d items", len(items))
	}
	if len(warns) != 1 || warns[0] != WarnDegradedLines {
		t.Errorf("warnings = %v", warns)
	}
}

func TestTruncateName(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := truncateName(long, 180)
	if len([]rune(got)) != 181 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncateName length = %d", len([]rune(got)))
	}
	if truncateName("kratko", 180) != "kratko" {
		t.Errorf("short names must pass through")
	}
}
