package core

import (
	"strings"
	"time"
)

const (
	CategorySeeds          Category = "sementes"
	CategoryFertilizer     Category = "fertilizantes"
	CategoryPesticides     Category = "defensivos"
	CategoryMachinery      Category = "maquinas"
	CategoryFuel           Category = "combustivel"
	CategoryPermanentLabor Category = "mao-obra-fixa"
	CategorySeasonalLabor  Category = "mao-obra-temporaria"
	CategoryTaxes          Category = "impostos"
	CategoryInsurance      Category = "seguros"
)

// DefaultCulture is assigned when an entry has no crop or livestock line.
const DefaultCulture = "geral"

type (
	// Category is the enumerated cost classification of an entry.
	Category string

	Money struct {
		Cents int64
	}

	// CostEntry is one recorded cost transaction. Entries are immutable once
	// created; edits replace the whole entry by ID.
	CostEntry struct {
		ID            int64
		Description   string
		Category      Category
		Amount        Money
		Date          Date
		Season        string // harvest-cycle label, e.g. "2024/2025"
		AreaHectares  float64
		Culture       string
		Supplier      string
		PaymentMethod string
		Notes         string
		CreatedAt     time.Time
	}

	// FarmProfile describes the property the ledger belongs to.
	FarmProfile struct {
		Name         string
		Owner        string
		Location     string
		SizeHectares float64
	}
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategorySeeds,
		CategoryFertilizer,
		CategoryPesticides,
		CategoryMachinery,
		CategoryFuel,
		CategoryPermanentLabor,
		CategorySeasonalLabor,
		CategoryTaxes,
		CategoryInsurance,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySeeds, CategoryFertilizer, CategoryPesticides, CategoryMachinery,
		CategoryFuel, CategoryPermanentLabor, CategorySeasonalLabor,
		CategoryTaxes, CategoryInsurance:
		return true
	}
	return false
}

// DisplayName returns the human-readable name of the category. Unknown codes
// never pass Validate, so the fallback only shows data predating validation.
func (c Category) DisplayName() string {
	switch c {
	case CategorySeeds:
		return "Sementes"
	case CategoryFertilizer:
		return "Fertilizantes"
	case CategoryPesticides:
		return "Defensivos"
	case CategoryMachinery:
		return "Máquinas"
	case CategoryFuel:
		return "Combustível"
	case CategoryPermanentLabor:
		return "Mão de Obra Fixa"
	case CategorySeasonalLabor:
		return "Mão de Obra Temporária"
	case CategoryTaxes:
		return "Impostos"
	case CategoryInsurance:
		return "Seguros"
	}
	return string(c)
}

// CostPerHectare is the entry amount spread over its area, in reais per
// hectare. Recomputed on every read so it can never go stale; zero when the
// cost is not area-attributable.
func (e CostEntry) CostPerHectare() float64 {
	if e.AreaHectares <= 0 {
		return 0
	}
	return e.Amount.Reais() / e.AreaHectares
}

// CultureOrDefault returns the entry culture, or DefaultCulture when absent.
func (e CostEntry) CultureOrDefault() string {
	if strings.TrimSpace(e.Culture) == "" {
		return DefaultCulture
	}
	return e.Culture
}

// Validate checks the draft fields of an entry. It returns a *ValidationError
// naming every missing or invalid field, or nil when the entry is acceptable.
func (e CostEntry) Validate() error {
	var fields []string

	if strings.TrimSpace(e.Description) == "" {
		fields = append(fields, "description")
	}
	if e.Category == "" || !e.Category.Valid() {
		fields = append(fields, "category")
	}
	if e.Amount.Cents <= 0 {
		fields = append(fields, "amount")
	}
	if e.Date.IsZero() {
		fields = append(fields, "date")
	}
	if strings.TrimSpace(e.Season) == "" {
		fields = append(fields, "season")
	}
	if e.AreaHectares < 0 {
		fields = append(fields, "area")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
