package model

// Reference tables are admin-loaded from spreadsheets and kept verbatim:
// values stay raw text and are coerced at lookup time, so one bad cell
// degrades one lookup instead of poisoning a whole load.

// NormRow holds the per-DRG norm statistics, keyed uniquely by DRG code.
type NormRow struct {
	DRGCode     string
	P25         string
	P50         string
	P75         string
	UpperCutoff string
	TotalWeight string
}

// TariffRow is one tariff-schedule entry: price for a (plan, tramo) pair,
// valid over a [ValidFrom, ValidTo] date interval. Position preserves table
// order; overlapping intervals resolve to the first match by position.
type TariffRow struct {
	PlanCode  string
	Tramo     string
	Price     string
	ValidFrom string
	ValidTo   string
	Position  int32
}

// WaitPaymentRow is one wait-payment (demora) schedule entry. PlanCode is
// empty for the plan family whose schedule has no plan dimension.
type WaitPaymentRow struct {
	PlanCode  string
	Price     string
	ValidFrom string
	ValidTo   string
	Position  int32
}

// WeightBandRow is one interval of the weight-band partition:
// (lower exclusive, upper inclusive]. An unparseable bound means that end is
// unbounded; rows with both bounds unparseable are skipped at lookup.
type WeightBandRow struct {
	Lower    string
	Upper    string
	Tramo    string
	Position int32
}
