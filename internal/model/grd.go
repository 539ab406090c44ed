package model

import (
	"time"

	"github.com/google/uuid"
)

// Batch is one official GRD document: one uploaded export's worth of
// episodes, the unit of workflow. Estado lives here, once per batch; rows
// reference the batch and can never disagree on state.
type Batch struct {
	BatchID        uuid.UUID
	Estado         State
	SourceFileName string
	RowCount       int64
	CreatedAt      time.Time
}

// GRDRow is the derived billing row for one episode, 1:1 with the source
// episode by episode number. Fields split into three ownership zones:
// ingestion-derived (immutable), encoder-owned (AT), finance-owned (validado).
type GRDRow struct {
	BatchID       uuid.UUID
	EpisodeNumber string

	// Derived at ingestion, immutable afterwards.
	PatientID        *string
	PatientName      *string
	AdmissionDate    *time.Time
	DischargeDate    *time.Time
	AdmissionService *string
	DischargeService *string
	PlanCode         *string
	PlanLabel        *string
	DRGCode          *string
	GRDWeight        *float64
	StayDays         *float64
	DelayDays        *float64
	DischargeType    *string
	Tramo            *string
	BaseTariff       *float64
	DemoraPayment    *float64
	OutlierPayment   float64

	// Encoder-owned. ATDetalle is mandatory whenever AT is true.
	AT        *bool
	ATDetalle *string

	// Finance-owned. Validado must be true on every row before the batch can
	// leave Finance's stage.
	Validado      *bool
	Documentacion *string
	FinalAmount   *float64
}

// ATEntry is one technology-adjustment line linked to a GRD row, referencing
// an entry of the AT catalog.
type ATEntry struct {
	EpisodeNumber string
	CatalogCode   string
	Amount        float64
}

// ATCatalogEntry is one admin-loaded row of the technology-adjustment catalog.
type ATCatalogEntry struct {
	Code        string
	Description string
	Amount      float64
}

// GRDRowColumns returns the ordered column names for COPY into grd.rows.
func GRDRowColumns() []string {
	return []string{
		"batch_id",
		"episode_number",
		"patient_id",
		"patient_name",
		"admission_date",
		"discharge_date",
		"admission_service",
		"discharge_service",
		"plan_code",
		"plan_label",
		"drg_code",
		"grd_weight",
		"stay_days",
		"delay_days",
		"discharge_type",
		"tramo",
		"base_tariff",
		"demora_payment",
		"outlier_payment",
		"at_flag",
		"at_detalle",
		"validado",
		"documentacion",
		"final_amount",
	}
}

// CopyValues returns the row values in GRDRowColumns order, suitable for a
// pgx CopyFromSource.
func (r *GRDRow) CopyValues() []any {
	return []any{
		r.BatchID,
		r.EpisodeNumber,
		r.PatientID,
		r.PatientName,
		r.AdmissionDate,
		r.DischargeDate,
		r.AdmissionService,
		r.DischargeService,
		r.PlanCode,
		r.PlanLabel,
		r.DRGCode,
		r.GRDWeight,
		r.StayDays,
		r.DelayDays,
		r.DischargeType,
		r.Tramo,
		r.BaseTariff,
		r.DemoraPayment,
		r.OutlierPayment,
		r.AT,
		r.ATDetalle,
		r.Validado,
		r.Documentacion,
		r.FinalAmount,
	}
}
