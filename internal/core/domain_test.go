package core

import (
	"errors"
	"strings"
	"testing"
)

func validEntry() CostEntry {
	return CostEntry{
		Description:  "Adubo NPK",
		Category:     CategoryFertilizer,
		Amount:       Money{Cents: 125000},
		Date:         NewDate(2025, 3, 10),
		Season:       "2024/2025",
		AreaHectares: 25,
		Culture:      "soja",
	}
}

func TestValidate(t *testing.T) {
	if err := validEntry().Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CostEntry)
		fields []string
	}{
		{"empty description", func(e *CostEntry) { e.Description = "  " }, []string{"description"}},
		{"missing category", func(e *CostEntry) { e.Category = "" }, []string{"category"}},
		{"unknown category", func(e *CostEntry) { e.Category = "piscicultura" }, []string{"category"}},
		{"zero amount", func(e *CostEntry) { e.Amount = Money{} }, []string{"amount"}},
		{"negative amount", func(e *CostEntry) { e.Amount = Money{Cents: -100} }, []string{"amount"}},
		{"zero date", func(e *CostEntry) { e.Date = Date{} }, []string{"date"}},
		{"empty season", func(e *CostEntry) { e.Season = "" }, []string{"season"}},
		{"negative area", func(e *CostEntry) { e.AreaHectares = -1 }, []string{"area"}},
		{"everything missing", func(e *CostEntry) { *e = CostEntry{} },
			[]string{"description", "category", "amount", "date", "season"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validEntry()
			tc.mutate(&e)
			err := e.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if strings.Join(verr.Fields, ",") != strings.Join(tc.fields, ",") {
				t.Fatalf("fields = %v, want %v", verr.Fields, tc.fields)
			}
		})
	}
}

func TestCostPerHectare(t *testing.T) {
	e := validEntry() // R$ 1250.00 over 25 ha
	if got := e.CostPerHectare(); got != 50 {
		t.Fatalf("CostPerHectare = %v, want 50", got)
	}

	e.AreaHectares = 0
	if got := e.CostPerHectare(); got != 0 {
		t.Fatalf("CostPerHectare with zero area = %v, want 0", got)
	}
}

func TestCategoryDisplayName(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %q should be valid", c)
		}
		if c.DisplayName() == string(c) {
			t.Fatalf("category %q has no display name", c)
		}
	}
	if Category("x").Valid() {
		t.Fatalf("unknown category should be invalid")
	}
}

func TestCultureOrDefault(t *testing.T) {
	e := validEntry()
	if e.CultureOrDefault() != "soja" {
		t.Fatalf("expected explicit culture")
	}
	e.Culture = " "
	if e.CultureOrDefault() != DefaultCulture {
		t.Fatalf("expected default culture for blank value")
	}
}
