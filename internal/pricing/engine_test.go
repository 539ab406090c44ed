package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/refdata"
)

// engineLookup builds a lookup with one weight band per tramo, a tariff row
// per plan family, and norm stats for DRG 14011 (p75 = 500).
func engineLookup() *refdata.Lookup {
	return refdata.New(
		[]model.NormRow{
			{DRGCode: "14011", P25: "2", P50: "4", P75: "500", UpperCutoff: "10", TotalWeight: "120"},
			{DRGCode: "14612", P25: "1", P50: "3", P75: "0", UpperCutoff: "8", TotalWeight: "90"},
		},
		[]model.TariffRow{
			{PlanCode: "FNS012", Tramo: "T2", Price: "1000", ValidFrom: "2023-01-01", ValidTo: "2023-12-31", Position: 0},
			{PlanCode: "FNS013", Tramo: "T2", Price: "900", ValidFrom: "2023-01-01", ValidTo: "2023-12-31", Position: 1},
			{PlanCode: "FNS020", Tramo: "", Price: "750", ValidFrom: "2023-01-01", ValidTo: "2023-12-31", Position: 2},
		},
		[]model.WaitPaymentRow{
			{PlanCode: "", Price: "40", ValidFrom: "2023-01-01", ValidTo: "2023-12-31", Position: 0},
			{PlanCode: "FNS030", Price: "600", ValidFrom: "", ValidTo: "", Position: 1},
		},
		[]model.WeightBandRow{
			{Lower: "", Upper: "1", Tramo: "T1", Position: 0},
			{Lower: "1", Upper: "2", Tramo: "T2", Position: 1},
			{Lower: "2", Upper: "", Tramo: "T3", Position: 2},
		},
	)
}

func baseEpisode() *model.RawEpisode {
	return &model.RawEpisode{
		EpisodeNumber:   "EP-100",
		PlanCode:        "FNS012",
		PlanDescription: "Fonasa tramo institucional",
		DRGCode:         "14011",
		AdmissionDate:   "2023-06-01",
		MeanWeight:      "1,2",
		StayDays:        "5",
		DelayDays:       "2",
	}
}

func TestDerive_NilEpisode(t *testing.T) {
	_, err := NewEngine(AllPlanFormulas).Derive(nil, engineLookup())
	assert.ErrorIs(t, err, ErrNilEpisode)
}

func TestDerive_FNS012(t *testing.T) {
	d, err := NewEngine(AllPlanFormulas).Derive(baseEpisode(), engineLookup())
	require.NoError(t, err)

	require.NotNil(t, d.Tramo)
	assert.Equal(t, "T2", *d.Tramo)

	require.NotNil(t, d.BaseTariff)
	assert.Equal(t, 1000.0, *d.BaseTariff)

	// (1.2 × 1000 × 2) / 500
	require.NotNil(t, d.DemoraPayment)
	assert.InDelta(t, 4.8, *d.DemoraPayment, 1e-9)

	// Stay 5 ≤ carence 14 (upperCutoff 10 + p50 4): no excess.
	assert.Equal(t, 0.0, d.OutlierPayment)

	require.NotNil(t, d.PlanLabel)
	assert.Equal(t, "FNS012 - Fonasa tramo institucional", *d.PlanLabel)
}

func TestDerive_FNS012_Outlier(t *testing.T) {
	ep := baseEpisode()
	ep.StayDays = "20" // excess = 20 − (10 + 4) = 6

	d, err := NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)
	assert.InDelta(t, (6*1.2*1000)/500, d.OutlierPayment, 1e-9)
}

func TestDerive_ZeroP75(t *testing.T) {
	ep := baseEpisode()
	ep.DRGCode = "14612"
	ep.StayDays = "30"

	d, err := NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)
	assert.Nil(t, d.DemoraPayment, "p75 of 0 can never divide")
	assert.Equal(t, 0.0, d.OutlierPayment)
}

func TestDerive_FNS013(t *testing.T) {
	ep := baseEpisode()
	ep.PlanCode = "FNS013"
	ep.StayDays = "40"

	d, err := NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)

	require.NotNil(t, d.BaseTariff)
	assert.Equal(t, 900.0, *d.BaseTariff)
	assert.Nil(t, d.DemoraPayment)
	assert.Equal(t, 0.0, d.OutlierPayment, "excess-stay payment is FNS012-only")
}

func TestDerive_FNS020(t *testing.T) {
	ep := baseEpisode()
	ep.PlanCode = "FNS020"
	ep.DelayDays = "3"

	d, err := NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)

	require.NotNil(t, d.BaseTariff)
	assert.Equal(t, 750.0, *d.BaseTariff)

	// 40 per day × 3 delay days.
	require.NotNil(t, d.DemoraPayment)
	assert.InDelta(t, 120.0, *d.DemoraPayment, 1e-9)

	ep.DelayDays = "0"
	d, err = NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)
	assert.Nil(t, d.DemoraPayment, "no delay, no payment")
}

func TestDerive_FNS030(t *testing.T) {
	ep := baseEpisode()
	ep.PlanCode = "FNS030"
	ep.AdmissionDate = "2030-01-01" // outside every schedule window

	d, err := NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)

	require.NotNil(t, d.BaseTariff, "plan-keyed schedule ignores the date")
	assert.Equal(t, 600.0, *d.BaseTariff)
	assert.Nil(t, d.DemoraPayment)
}

func TestDerive_UnsupportedPlan(t *testing.T) {
	ep := baseEpisode()
	ep.PlanCode = "ISP999"

	d, err := NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)

	require.NotNil(t, d.Tramo, "band assignment is plan-independent")
	assert.Nil(t, d.BaseTariff)
	assert.Nil(t, d.DemoraPayment)
	assert.Equal(t, 0.0, d.OutlierPayment)
	require.NotNil(t, d.PlanLabel)
}

func TestDerive_RestrictedFormulaSet(t *testing.T) {
	engine := NewEngine(FormulasFor([]string{"FNS013"}))

	d, err := engine.Derive(baseEpisode(), engineLookup())
	require.NoError(t, err)
	assert.Nil(t, d.BaseTariff, "FNS012 is outside the configured set")
	assert.Nil(t, d.DemoraPayment)
}

func TestDerive_Degradation(t *testing.T) {
	look := engineLookup()
	engine := NewEngine(AllPlanFormulas)

	ep := baseEpisode()
	ep.MeanWeight = "n/a"
	d, err := engine.Derive(ep, look)
	require.NoError(t, err)
	assert.Nil(t, d.Tramo, "unparseable weight has no band")
	assert.Nil(t, d.BaseTariff, "band-keyed tariff needs a band")
	assert.Nil(t, d.DemoraPayment)

	ep = baseEpisode()
	ep.DelayDays = ""
	d, err = engine.Derive(ep, look)
	require.NoError(t, err)
	require.NotNil(t, d.BaseTariff)
	assert.Nil(t, d.DemoraPayment, "missing delay degrades only the delay payment")

	ep = baseEpisode()
	ep.DRGCode = "99999"
	d, err = engine.Derive(ep, look)
	require.NoError(t, err)
	require.NotNil(t, d.BaseTariff)
	assert.Nil(t, d.DemoraPayment, "unknown DRG has no percentile stats")
}

func TestPlanLabel(t *testing.T) {
	ep := baseEpisode()
	ep.PlanDescription = ""
	d, err := NewEngine(AllPlanFormulas).Derive(ep, engineLookup())
	require.NoError(t, err)
	assert.Nil(t, d.PlanLabel, "label needs both code and description")
}

func TestBuildRow(t *testing.T) {
	batchID := uuid.New()
	ep := baseEpisode()
	ep.EpisodeNumber = "  EP-100  "
	ep.PatientID = "12.345.678-9"
	ep.DischargeDate = "15/06/2023"

	row, err := NewEngine(AllPlanFormulas).BuildRow(ep, batchID, engineLookup())
	require.NoError(t, err)

	assert.Equal(t, batchID, row.BatchID)
	assert.Equal(t, "EP-100", row.EpisodeNumber)
	require.NotNil(t, row.PatientID)
	assert.Equal(t, "12.345.678-9", *row.PatientID)
	require.NotNil(t, row.AdmissionDate)
	require.NotNil(t, row.DischargeDate)
	assert.Equal(t, 15, row.DischargeDate.Day())
	require.NotNil(t, row.GRDWeight)
	assert.InDelta(t, 1.2, *row.GRDWeight, 1e-9)
	require.NotNil(t, row.BaseTariff)
	assert.Nil(t, row.AT, "encoder fields start null")
	assert.Nil(t, row.Validado, "finance fields start null")
}

func TestFormulaByPlan(t *testing.T) {
	f, ok := FormulaByPlan("fns012")
	require.True(t, ok, "plan codes match case-insensitively")
	assert.True(t, f.Outlier)

	_, ok = FormulaByPlan("FNS999")
	assert.False(t, ok)

	assert.Len(t, FormulasFor([]string{"FNS012", "BOGUS", "FNS030"}), 2)
}
