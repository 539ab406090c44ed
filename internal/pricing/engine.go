// Package pricing derives the per-episode monetary and categorical fields of
// a GRD row from a raw SIGESA episode plus reference lookups. Derivation is a
// pure function: it never errors on bad or missing data. Every derived field
// independently degrades to null (or 0 for the outlier payment).
package pricing

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/normalize"
	"github.com/gyeh/grdflow/internal/refdata"
)

// ErrNilEpisode is returned when the caller passes no episode record; it is
// the only error Derive can produce.
var ErrNilEpisode = errors.New("pricing: nil episode record")

// Derived holds the pricing-engine outputs for one episode.
type Derived struct {
	Tramo          *string
	BaseTariff     *float64
	DemoraPayment  *float64
	OutlierPayment float64
	PlanLabel      *string
}

// Engine derives fields using a configured set of plan formulas. Episodes
// whose plan code is outside the set get null monetary fields, exactly like
// unsupported plans.
type Engine struct {
	formulas []PlanFormula
}

// NewEngine creates an Engine over the given formulas; pass AllPlanFormulas
// for the full supported set.
func NewEngine(formulas []PlanFormula) *Engine {
	return &Engine{formulas: formulas}
}

// Derive computes the derived fields for one episode record.
func (e *Engine) Derive(ep *model.RawEpisode, look *refdata.Lookup) (Derived, error) {
	if ep == nil {
		return Derived{}, ErrNilEpisode
	}

	var d Derived

	weight := normalize.ParseNumber(ep.MeanWeight)
	if tramo, ok := look.WeightBand(weight); ok {
		d.Tramo = &tramo
	}

	formula, supported := formulaIn(e.formulas, ep.PlanCode)
	if supported {
		d.BaseTariff = baseTariff(ep, formula, d.Tramo, look)
		d.DemoraPayment = demoraPayment(ep, formula, weight, d.BaseTariff, look)
		if formula.Outlier {
			d.OutlierPayment = outlierPayment(ep, weight, d.BaseTariff, look)
		}
	}

	d.PlanLabel = planLabel(ep.PlanCode, ep.PlanDescription)
	return d, nil
}

func baseTariff(ep *model.RawEpisode, f PlanFormula, tramo *string, look *refdata.Lookup) *float64 {
	switch f.Tariff {
	case TariffByPlanTramo:
		if tramo == nil {
			return nil
		}
		if p, ok := look.TariffPrice(ep.PlanCode, *tramo, ep.AdmissionDate); ok {
			return &p
		}
	case TariffByPlan:
		if p, ok := look.TariffPrice(ep.PlanCode, "", ep.AdmissionDate); ok {
			return &p
		}
	case TariffWaitByPlan:
		if p, ok := look.WaitPaymentPriceByPlan(ep.PlanCode); ok {
			return &p
		}
	}
	return nil
}

func demoraPayment(ep *model.RawEpisode, f PlanFormula, weight, base *float64, look *refdata.Lookup) *float64 {
	switch f.Demora {
	case DemoraNormP75:
		delay := normalize.ParseNumber(ep.DelayDays)
		if weight == nil || base == nil || delay == nil {
			return nil
		}
		stats, ok := look.NormStats(ep.DRGCode)
		if !ok || stats.P75 == nil || *stats.P75 == 0 {
			return nil
		}
		v := (*weight * *base * *delay) / *stats.P75
		return &v

	case DemoraWaitSchedule:
		delay := normalize.ParseNumber(ep.DelayDays)
		if delay == nil || *delay <= 0 {
			return nil
		}
		price, ok := look.WaitPaymentPrice(ep.AdmissionDate)
		if !ok {
			return nil
		}
		v := price * *delay
		return &v
	}
	return nil
}

// outlierPayment implements the excess-stay surcharge for the designated
// plan: carence = upperCutoff + p50, excess = stayDays − carence,
// payment = excess × weight × baseTariff / p75 when excess > 0.
func outlierPayment(ep *model.RawEpisode, weight, base *float64, look *refdata.Lookup) float64 {
	stay := normalize.ParseNumber(ep.StayDays)
	if stay == nil || weight == nil || base == nil {
		return 0
	}
	stats, ok := look.NormStats(ep.DRGCode)
	if !ok || stats.UpperCutoff == nil || stats.P50 == nil || stats.P75 == nil || *stats.P75 == 0 {
		return 0
	}
	carence := *stats.UpperCutoff + *stats.P50
	excess := *stay - carence
	if excess <= 0 {
		return 0
	}
	return (excess * *weight * *base) / *stats.P75
}

func planLabel(code, description string) *string {
	code = strings.TrimSpace(code)
	description = strings.TrimSpace(description)
	if code == "" || description == "" {
		return nil
	}
	label := code + " - " + description
	return &label
}

// BuildRow assembles the ingestion-derived zone of a GRD row for one episode.
// Encoder- and finance-owned fields start null.
func (e *Engine) BuildRow(ep *model.RawEpisode, batchID uuid.UUID, look *refdata.Lookup) (*model.GRDRow, error) {
	d, err := e.Derive(ep, look)
	if err != nil {
		return nil, err
	}
	return &model.GRDRow{
		BatchID:          batchID,
		EpisodeNumber:    strings.TrimSpace(ep.EpisodeNumber),
		PatientID:        normalize.NilIfEmpty(ep.PatientID),
		PatientName:      normalize.NilIfEmpty(ep.PatientName),
		AdmissionDate:    normalize.ParseDate(ep.AdmissionDate),
		DischargeDate:    normalize.ParseDate(ep.DischargeDate),
		AdmissionService: normalize.NilIfEmpty(ep.AdmissionService),
		DischargeService: normalize.NilIfEmpty(ep.DischargeService),
		PlanCode:         normalize.NilIfEmpty(ep.PlanCode),
		PlanLabel:        d.PlanLabel,
		DRGCode:          normalize.NilIfEmpty(ep.DRGCode),
		GRDWeight:        normalize.ParseNumber(ep.MeanWeight),
		StayDays:         normalize.ParseNumber(ep.StayDays),
		DelayDays:        normalize.ParseNumber(ep.DelayDays),
		DischargeType:    normalize.NilIfEmpty(ep.DischargeType),
		Tramo:            d.Tramo,
		BaseTariff:       d.BaseTariff,
		DemoraPayment:    d.DemoraPayment,
		OutlierPayment:   d.OutlierPayment,
	}, nil
}
