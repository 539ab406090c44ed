// Package export flattens an approved batch (rows plus their variable-length
// technology-adjustment entries) into a tabular file. Pure formatting; all
// decisions were made upstream by the workflow.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/workflow"
)

// Row is one flattened export line. AT entries collapse into a single
// "code (amount); ..." column plus their sum.
type Row struct {
	EpisodeNumber  string   `parquet:"episodio"`
	PatientID      string   `parquet:"rut_paciente"`
	PatientName    string   `parquet:"nombre_paciente"`
	AdmissionDate  string   `parquet:"fecha_ingreso"`
	DischargeDate  string   `parquet:"fecha_alta"`
	PlanLabel      string   `parquet:"plan"`
	DRGCode        string   `parquet:"ir_grd"`
	GRDWeight      *float64 `parquet:"peso_grd,optional"`
	StayDays       *float64 `parquet:"dias_estada,optional"`
	DelayDays      *float64 `parquet:"dias_demora,optional"`
	Tramo          string   `parquet:"tramo"`
	BaseTariff     *float64 `parquet:"tarifa_base,optional"`
	DemoraPayment  *float64 `parquet:"pago_demora,optional"`
	OutlierPayment float64  `parquet:"pago_outlier"`
	ATDetalle      string   `parquet:"at_detalle"`
	ATEntries      string   `parquet:"ajustes_tecnologicos"`
	ATTotal        float64  `parquet:"total_at"`
	Documentacion  string   `parquet:"documentacion"`
	FinalAmount    *float64 `parquet:"monto_final,optional"`
	Estado         string   `parquet:"estado"`
}

// Header lists the export column titles in Row field order.
var Header = []string{
	"Episodio", "RUT Paciente", "Nombre Paciente", "Fecha Ingreso", "Fecha Alta",
	"Plan", "IR-GRD", "Peso GRD", "Dias Estada", "Dias Demora", "Tramo",
	"Tarifa Base", "Pago Demora", "Pago Outlier", "AT Detalle",
	"Ajustes Tecnologicos", "Total AT", "Documentacion", "Monto Final", "Estado",
}

// FetchRows loads the flattened rows of one batch. Only batches in aprobado
// or exportado may be exported.
func FetchRows(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID) ([]Row, error) {
	var estado model.State
	err := pool.QueryRow(ctx,
		`SELECT estado FROM grd.batches WHERE batch_id = $1`, batchID).Scan(&estado)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &workflow.NotFoundError{Kind: "batch", Key: batchID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("read batch state: %w", err)
	}
	if estado != model.StateAprobado && estado != model.StateExportado {
		return nil, &workflow.GuardError{
			Transition: "export",
			BatchID:    batchID,
			Expected:   []model.State{model.StateAprobado, model.StateExportado},
			Actual:     estado,
		}
	}

	rows, err := pool.Query(ctx, `
		SELECT r.episode_number,
		       COALESCE(r.patient_id, ''),
		       COALESCE(r.patient_name, ''),
		       COALESCE(to_char(r.admission_date, 'YYYY-MM-DD'), ''),
		       COALESCE(to_char(r.discharge_date, 'YYYY-MM-DD'), ''),
		       COALESCE(r.plan_label, COALESCE(r.plan_code, '')),
		       COALESCE(r.drg_code, ''),
		       r.grd_weight,
		       r.stay_days,
		       r.delay_days,
		       COALESCE(r.tramo, ''),
		       r.base_tariff,
		       r.demora_payment,
		       r.outlier_payment,
		       COALESCE(r.at_detalle, ''),
		       COALESCE(a.detail, ''),
		       COALESCE(a.total, 0),
		       COALESCE(r.documentacion, ''),
		       r.final_amount,
		       b.estado
		FROM grd.rows r
		JOIN grd.batches b ON b.batch_id = r.batch_id
		LEFT JOIN (
			SELECT episode_number,
			       string_agg(catalog_code || ' (' || amount::text || ')', '; ' ORDER BY entry_id) AS detail,
			       SUM(amount) AS total
			FROM grd.at_entries
			GROUP BY episode_number
		) a ON a.episode_number = r.episode_number
		WHERE r.batch_id = $1
		ORDER BY r.episode_number`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var r Row
		err := row.Scan(
			&r.EpisodeNumber, &r.PatientID, &r.PatientName,
			&r.AdmissionDate, &r.DischargeDate, &r.PlanLabel, &r.DRGCode,
			&r.GRDWeight, &r.StayDays, &r.DelayDays, &r.Tramo,
			&r.BaseTariff, &r.DemoraPayment, &r.OutlierPayment,
			&r.ATDetalle, &r.ATEntries, &r.ATTotal,
			&r.Documentacion, &r.FinalAmount, &r.Estado,
		)
		return r, err
	})
}
