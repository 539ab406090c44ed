// Package refdata provides read-only lookups over the four admin-loaded
// reference tables: norm statistics, tariff schedule, wait-payment schedule,
// and weight bands. A Lookup is an immutable snapshot; all methods are pure
// and safe for concurrent use. Lookups never fail hard: a missing or
// unparseable value is a miss (ok=false), which the pricing engine degrades
// to a null derived field.
package refdata

import (
	"math"
	"strings"

	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/normalize"
)

// Lookup is an in-memory snapshot of the reference tables.
type Lookup struct {
	norms   map[string]model.NormRow
	tariffs []model.TariffRow
	waits   []model.WaitPaymentRow
	bands   []model.WeightBandRow
}

// New builds a Lookup from reference rows. Tariff, wait-payment, and band
// slices must already be in table (position) order; norm rows are keyed by
// DRG code, last row winning on duplicates.
func New(norms []model.NormRow, tariffs []model.TariffRow, waits []model.WaitPaymentRow, bands []model.WeightBandRow) *Lookup {
	nm := make(map[string]model.NormRow, len(norms))
	for _, n := range norms {
		nm[strings.TrimSpace(n.DRGCode)] = n
	}
	return &Lookup{norms: nm, tariffs: tariffs, waits: waits, bands: bands}
}

// TariffPrice returns the price of the first tariff-schedule row, in table
// order, matching planCode (and tramo when non-empty) whose validity interval
// contains admissionDate. Overlapping intervals are undefined in the source
// data; first match wins.
func (l *Lookup) TariffPrice(planCode, tramo, admissionDate string) (float64, bool) {
	planCode = strings.TrimSpace(planCode)
	if planCode == "" {
		return 0, false
	}
	d := normalize.ParseDate(admissionDate)
	if d == nil {
		return 0, false
	}
	for _, row := range l.tariffs {
		if !strings.EqualFold(strings.TrimSpace(row.PlanCode), planCode) {
			continue
		}
		if tramo != "" && !strings.EqualFold(strings.TrimSpace(row.Tramo), strings.TrimSpace(tramo)) {
			continue
		}
		if !normalize.DateInRange(*d, row.ValidFrom, row.ValidTo) {
			continue
		}
		p := normalize.ParseNumber(row.Price)
		if p == nil {
			return 0, false
		}
		return *p, true
	}
	return 0, false
}

// WaitPaymentPrice returns the wait-payment price whose interval contains
// admissionDate, scanning only rows without a plan dimension.
func (l *Lookup) WaitPaymentPrice(admissionDate string) (float64, bool) {
	d := normalize.ParseDate(admissionDate)
	if d == nil {
		return 0, false
	}
	for _, row := range l.waits {
		if strings.TrimSpace(row.PlanCode) != "" {
			continue
		}
		if !normalize.DateInRange(*d, row.ValidFrom, row.ValidTo) {
			continue
		}
		p := normalize.ParseNumber(row.Price)
		if p == nil {
			return 0, false
		}
		return *p, true
	}
	return 0, false
}

// WaitPaymentPriceByPlan returns the first wait-payment price keyed by plan
// code, ignoring validity dates. Used by the plan family whose schedule is
// plan-keyed rather than dated.
func (l *Lookup) WaitPaymentPriceByPlan(planCode string) (float64, bool) {
	planCode = strings.TrimSpace(planCode)
	if planCode == "" {
		return 0, false
	}
	for _, row := range l.waits {
		if !strings.EqualFold(strings.TrimSpace(row.PlanCode), planCode) {
			continue
		}
		p := normalize.ParseNumber(row.Price)
		if p == nil {
			return 0, false
		}
		return *p, true
	}
	return 0, false
}

// NormStats holds the parsed norm statistics for one DRG code. Individual
// fields are nil when the stored cell is not numeric; arithmetic consuming a
// nil operand degrades to null in the pricing engine.
type NormStats struct {
	P25         *float64
	P50         *float64
	P75         *float64
	UpperCutoff *float64
	TotalWeight *float64
}

// NormStats looks up the norm row for drgCode (exact match after trimming).
func (l *Lookup) NormStats(drgCode string) (NormStats, bool) {
	drgCode = strings.TrimSpace(drgCode)
	if drgCode == "" {
		return NormStats{}, false
	}
	row, ok := l.norms[drgCode]
	if !ok {
		return NormStats{}, false
	}
	return NormStats{
		P25:         normalize.ParseNumber(row.P25),
		P50:         normalize.ParseNumber(row.P50),
		P75:         normalize.ParseNumber(row.P75),
		UpperCutoff: normalize.ParseNumber(row.UpperCutoff),
		TotalWeight: normalize.ParseNumber(row.TotalWeight),
	}, true
}

// WeightBand returns the label of the first band, in table order, whose
// (lower exclusive, upper inclusive] interval contains weight. An unparseable
// bound is unbounded on that end; bands with both bounds unparseable are
// skipped.
func (l *Lookup) WeightBand(weight *float64) (string, bool) {
	if weight == nil {
		return "", false
	}
	for _, b := range l.bands {
		lower := normalize.ParseNumber(b.Lower)
		upper := normalize.ParseNumber(b.Upper)
		if lower == nil && upper == nil {
			continue
		}
		lo := math.Inf(-1)
		if lower != nil {
			lo = *lower
		}
		hi := math.Inf(1)
		if upper != nil {
			hi = *upper
		}
		if *weight > lo && *weight <= hi {
			return b.Tramo, true
		}
	}
	return "", false
}
