package refdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/grdflow/internal/model"
)

// Load reads the four reference tables into an immutable Lookup snapshot.
// Reference tables only change through refload, so one snapshot per
// operation is sufficient.
func Load(ctx context.Context, pool *pgxpool.Pool) (*Lookup, error) {
	norms, err := loadNorms(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load norm table: %w", err)
	}
	tariffs, err := loadTariffs(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load tariff schedule: %w", err)
	}
	waits, err := loadWaitPayments(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load wait-payment schedule: %w", err)
	}
	bands, err := loadWeightBands(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load weight bands: %w", err)
	}
	return New(norms, tariffs, waits, bands), nil
}

func loadNorms(ctx context.Context, pool *pgxpool.Pool) ([]model.NormRow, error) {
	rows, err := pool.Query(ctx,
		`SELECT drg_code, p25, p50, p75, upper_cutoff, total_weight FROM ref.norm_table`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.NormRow, error) {
		var n model.NormRow
		err := row.Scan(&n.DRGCode, &n.P25, &n.P50, &n.P75, &n.UpperCutoff, &n.TotalWeight)
		return n, err
	})
}

func loadTariffs(ctx context.Context, pool *pgxpool.Pool) ([]model.TariffRow, error) {
	rows, err := pool.Query(ctx,
		`SELECT plan_code, tramo, price, valid_from, valid_to, position
		 FROM ref.tariff_schedule ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TariffRow, error) {
		var t model.TariffRow
		err := row.Scan(&t.PlanCode, &t.Tramo, &t.Price, &t.ValidFrom, &t.ValidTo, &t.Position)
		return t, err
	})
}

func loadWaitPayments(ctx context.Context, pool *pgxpool.Pool) ([]model.WaitPaymentRow, error) {
	rows, err := pool.Query(ctx,
		`SELECT plan_code, price, valid_from, valid_to, position
		 FROM ref.wait_payment_schedule ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.WaitPaymentRow, error) {
		var w model.WaitPaymentRow
		err := row.Scan(&w.PlanCode, &w.Price, &w.ValidFrom, &w.ValidTo, &w.Position)
		return w, err
	})
}

func loadWeightBands(ctx context.Context, pool *pgxpool.Pool) ([]model.WeightBandRow, error) {
	rows, err := pool.Query(ctx,
		`SELECT lower_bound, upper_bound, tramo, position
		 FROM ref.weight_bands ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.WeightBandRow, error) {
		var b model.WeightBandRow
		err := row.Scan(&b.Lower, &b.Upper, &b.Tramo, &b.Position)
		return b, err
	})
}
