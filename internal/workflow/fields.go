package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/grdflow/internal/model"
)

// Role-owned field updates. Writability is decided by the batch's state via
// the model.Writable mapping: encoder fields in borrador_encoder and
// rechazado, finance fields in pendiente_finance and borrador_finance.

// SetEncoderFields updates the AT flag and detail of one row.
func (m *Machine) SetEncoderFields(ctx context.Context, role model.Role, episodeNumber string, at bool, detalle string) error {
	if role != model.RoleEncoder {
		return &ForbiddenError{Transition: "set-encoder-fields", Role: role, Required: model.RoleEncoder}
	}
	return m.updateRow(ctx, role, episodeNumber, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE grd.rows SET at_flag = $2, at_detalle = $3 WHERE episode_number = $1`,
			episodeNumber, at, detalle)
		return err
	})
}

// AddATEntry links a technology-adjustment catalog entry to one row. The
// amount is copied from the catalog at link time.
func (m *Machine) AddATEntry(ctx context.Context, role model.Role, episodeNumber, catalogCode string) error {
	if role != model.RoleEncoder {
		return &ForbiddenError{Transition: "add-at-entry", Role: role, Required: model.RoleEncoder}
	}
	return m.updateRow(ctx, role, episodeNumber, func(ctx context.Context, tx pgx.Tx) error {
		var amount float64
		err := tx.QueryRow(ctx,
			`SELECT amount FROM ref.at_catalog WHERE code = $1`, catalogCode).Scan(&amount)
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Kind: "at_catalog entry", Key: catalogCode}
		}
		if err != nil {
			return fmt.Errorf("lookup at_catalog %q: %w", catalogCode, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO grd.at_entries (episode_number, catalog_code, amount) VALUES ($1, $2, $3)`,
			episodeNumber, catalogCode, amount)
		return err
	})
}

// SetFinanceFields updates the validado flag and documentation of one row.
func (m *Machine) SetFinanceFields(ctx context.Context, role model.Role, episodeNumber string, validado bool, documentacion string) error {
	if role != model.RoleFinance {
		return &ForbiddenError{Transition: "set-finance-fields", Role: role, Required: model.RoleFinance}
	}
	return m.updateRow(ctx, role, episodeNumber, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE grd.rows SET validado = $2, documentacion = $3 WHERE episode_number = $1`,
			episodeNumber, validado, documentacion)
		return err
	})
}

// updateRow locks the row's batch, verifies the batch state is writable by
// the acting role, and runs the update inside the same transaction.
func (m *Machine) updateRow(ctx context.Context, role model.Role, episodeNumber string, update func(context.Context, pgx.Tx) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("update row: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var batchID uuid.UUID
	var estado model.State
	err = tx.QueryRow(ctx,
		`SELECT r.batch_id, b.estado
		 FROM grd.rows r
		 JOIN grd.batches b ON b.batch_id = r.batch_id
		 WHERE r.episode_number = $1
		 FOR UPDATE OF b`,
		episodeNumber).Scan(&batchID, &estado)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Kind: "row", Key: episodeNumber}
	}
	if err != nil {
		return fmt.Errorf("read row state: %w", err)
	}

	if !model.Writable(estado, role) {
		return &GuardError{
			Transition: "update-row",
			BatchID:    batchID,
			Expected:   writableStates(role),
			Actual:     estado,
		}
	}

	if err := update(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func writableStates(role model.Role) []model.State {
	var out []model.State
	for _, si := range model.AllStates {
		if si.WritableBy == role {
			out = append(out, si.Name)
		}
	}
	return out
}
