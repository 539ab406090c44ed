package pricing

import "strings"

// TariffMethod selects which reference lookup produces a plan's base tariff.
type TariffMethod int

const (
	// TariffByPlanTramo looks up ref.tariff_schedule by plan code, weight
	// band, and admission date.
	TariffByPlanTramo TariffMethod = iota
	// TariffByPlan looks up ref.tariff_schedule by plan code and admission
	// date, without a band dimension.
	TariffByPlan
	// TariffWaitByPlan looks up the wait-payment schedule by plan code,
	// ignoring dates.
	TariffWaitByPlan
)

// DemoraMethod selects how a plan's delay (demora) payment is computed.
type DemoraMethod int

const (
	// DemoraNone: the plan pays no delay surcharge.
	DemoraNone DemoraMethod = iota
	// DemoraNormP75: (weight × baseTariff × delayDays) / percentile-75.
	DemoraNormP75
	// DemoraWaitSchedule: waitPaymentPrice(admissionDate) × delayDays,
	// only when delayDays > 0.
	DemoraWaitSchedule
)

// PlanFormula describes the pricing formula for one supported insurance plan
// code. Plan codes outside this table yield null derived fields.
type PlanFormula struct {
	PlanCode string
	Tariff   TariffMethod
	Demora   DemoraMethod
	// Outlier marks the single plan for which the outlier-superior
	// (excess-stay) payment is defined.
	Outlier bool
}

// AllPlanFormulas lists the supported plan codes in canonical order.
var AllPlanFormulas = []PlanFormula{
	{PlanCode: "FNS012", Tariff: TariffByPlanTramo, Demora: DemoraNormP75, Outlier: true},
	{PlanCode: "FNS013", Tariff: TariffByPlanTramo, Demora: DemoraNone},
	{PlanCode: "FNS020", Tariff: TariffByPlan, Demora: DemoraWaitSchedule},
	{PlanCode: "FNS030", Tariff: TariffWaitByPlan, Demora: DemoraNone},
}

// FormulaByPlan returns the formula for the given plan code, or ok=false for
// unsupported plans.
func FormulaByPlan(code string) (PlanFormula, bool) {
	return formulaIn(AllPlanFormulas, code)
}

// FormulasFor resolves plan codes to their formulas, silently skipping
// unknown codes (config validation rejects them earlier).
func FormulasFor(codes []string) []PlanFormula {
	var out []PlanFormula
	for _, code := range codes {
		if f, ok := FormulaByPlan(code); ok {
			out = append(out, f)
		}
	}
	return out
}

func formulaIn(set []PlanFormula, code string) (PlanFormula, bool) {
	code = strings.TrimSpace(code)
	for _, f := range set {
		if strings.EqualFold(f.PlanCode, code) {
			return f, true
		}
	}
	return PlanFormula{}, false
}
