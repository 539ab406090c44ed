package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/normalize"
)

// SheetNames maps each reference table to its sheet in the admin workbook.
type SheetNames struct {
	Norms        string `yaml:"norms"`
	Tariffs      string `yaml:"tariffs"`
	WaitPayments string `yaml:"wait_payments"`
	WeightBands  string `yaml:"weight_bands"`
	ATCatalog    string `yaml:"at_catalog"`
}

// DefaultSheetNames returns the workbook layout used by the hospital's
// reference template.
func DefaultSheetNames() SheetNames {
	return SheetNames{
		Norms:        "Normas",
		Tariffs:      "Tarifas",
		WaitPayments: "Demora",
		WeightBands:  "Tramos",
		ATCatalog:    "CatalogoAT",
	}
}

// Tables holds one parsed reference workbook. Values stay raw text; only the
// AT catalog amount is coerced at load time (a catalog entry without a
// numeric amount is useless and rejected early).
type Tables struct {
	Norms        []model.NormRow
	Tariffs      []model.TariffRow
	WaitPayments []model.WaitPaymentRow
	WeightBands  []model.WeightBandRow
	ATCatalog    []model.ATCatalogEntry
}

// LoadWorkbook parses the reference workbook. Each sheet has a fixed
// positional column layout with one header row.
func LoadWorkbook(path string, sheets SheetNames) (*Tables, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	t := &Tables{}

	if err := eachDataRow(f, sheets.Norms, 6, func(_ int, c []string) error {
		t.Norms = append(t.Norms, model.NormRow{
			DRGCode: c[0], P25: c[1], P50: c[2], P75: c[3], UpperCutoff: c[4], TotalWeight: c[5],
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachDataRow(f, sheets.Tariffs, 5, func(i int, c []string) error {
		t.Tariffs = append(t.Tariffs, model.TariffRow{
			PlanCode: c[0], Tramo: c[1], Price: c[2], ValidFrom: c[3], ValidTo: c[4],
			Position: int32(i),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachDataRow(f, sheets.WaitPayments, 4, func(i int, c []string) error {
		t.WaitPayments = append(t.WaitPayments, model.WaitPaymentRow{
			PlanCode: c[0], Price: c[1], ValidFrom: c[2], ValidTo: c[3],
			Position: int32(i),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachDataRow(f, sheets.WeightBands, 3, func(i int, c []string) error {
		t.WeightBands = append(t.WeightBands, model.WeightBandRow{
			Lower: c[0], Upper: c[1], Tramo: c[2],
			Position: int32(i),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachDataRow(f, sheets.ATCatalog, 3, func(_ int, c []string) error {
		amount := normalize.ParseNumber(c[2])
		if c[0] == "" || amount == nil {
			return fmt.Errorf("catalog entry %q: missing code or amount", c[0])
		}
		t.ATCatalog = append(t.ATCatalog, model.ATCatalogEntry{
			Code: c[0], Description: c[1], Amount: *amount,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	return t, nil
}

// eachDataRow visits the data rows of one sheet, padding each row to width
// columns. Fully empty rows are skipped; i counts data rows from zero.
func eachDataRow(f *excelize.File, sheet string, width int, visit func(i int, cells []string) error) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet %q is empty", sheet)
	}
	i := 0
	for _, row := range rows[1:] {
		cells := make([]string, width)
		empty := true
		for j := 0; j < width && j < len(row); j++ {
			cells[j] = row[j]
			if row[j] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if err := visit(i, cells); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
		}
		i++
	}
	return nil
}

// Replace swaps the reference tables for the workbook contents in one
// transaction. The AT catalog is upserted instead of replaced because linked
// at_entries reference its codes.
func Replace(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, t *Tables) (*model.RefLoadSummary, error) {
	start := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("refload begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{
		"ref.norm_table", "ref.tariff_schedule", "ref.wait_payment_schedule", "ref.weight_bands",
	} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, n := range t.Norms {
		_, err := tx.Exec(ctx,
			`INSERT INTO ref.norm_table (drg_code, p25, p50, p75, upper_cutoff, total_weight)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			n.DRGCode, n.P25, n.P50, n.P75, n.UpperCutoff, n.TotalWeight)
		if err != nil {
			return nil, fmt.Errorf("insert norm %q: %w", n.DRGCode, err)
		}
	}
	for _, r := range t.Tariffs {
		_, err := tx.Exec(ctx,
			`INSERT INTO ref.tariff_schedule (plan_code, tramo, price, valid_from, valid_to, position)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.PlanCode, r.Tramo, r.Price, r.ValidFrom, r.ValidTo, r.Position)
		if err != nil {
			return nil, fmt.Errorf("insert tariff row %d: %w", r.Position, err)
		}
	}
	for _, r := range t.WaitPayments {
		_, err := tx.Exec(ctx,
			`INSERT INTO ref.wait_payment_schedule (plan_code, price, valid_from, valid_to, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			r.PlanCode, r.Price, r.ValidFrom, r.ValidTo, r.Position)
		if err != nil {
			return nil, fmt.Errorf("insert wait-payment row %d: %w", r.Position, err)
		}
	}
	for _, b := range t.WeightBands {
		_, err := tx.Exec(ctx,
			`INSERT INTO ref.weight_bands (lower_bound, upper_bound, tramo, position)
			 VALUES ($1, $2, $3, $4)`,
			b.Lower, b.Upper, b.Tramo, b.Position)
		if err != nil {
			return nil, fmt.Errorf("insert weight band %d: %w", b.Position, err)
		}
	}
	for _, c := range t.ATCatalog {
		_, err := tx.Exec(ctx,
			`INSERT INTO ref.at_catalog (code, description, amount)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description, amount = EXCLUDED.amount`,
			c.Code, c.Description, c.Amount)
		if err != nil {
			return nil, fmt.Errorf("upsert catalog %q: %w", c.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("refload commit: %w", err)
	}

	summary := &model.RefLoadSummary{
		NormRows:        int64(len(t.Norms)),
		TariffRows:      int64(len(t.Tariffs)),
		WaitPaymentRows: int64(len(t.WaitPayments)),
		WeightBandRows:  int64(len(t.WeightBands)),
		ATCatalogRows:   int64(len(t.ATCatalog)),
		Duration:        time.Since(start),
	}
	log.Info().
		Int64("norms", summary.NormRows).
		Int64("tariffs", summary.TariffRows).
		Int64("wait_payments", summary.WaitPaymentRows).
		Int64("weight_bands", summary.WeightBandRows).
		Int64("at_catalog", summary.ATCatalogRows).
		Dur("duration", summary.Duration).
		Msg("reference tables replaced")
	return summary, nil
}
