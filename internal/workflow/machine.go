// Package workflow implements the approval pipeline of an official GRD batch:
// Encoder draft → Finance → Admin review → approved/rejected → exported. One
// batch-wide estado lives on the batch record; every transition is a single
// state-guarded conditional update, and the single-active-batch invariant is
// enforced by a compare-and-swap on the workflow.active_slot singleton.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/grdflow/internal/model"
	embedsql "github.com/gyeh/grdflow/internal/sql"
)

// maxSampleEpisodes bounds how many offending episode numbers a
// ValidationError carries; Total still reports the full count.
const maxSampleEpisodes = 5

// Machine executes workflow transitions against the store.
type Machine struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New creates a Machine over the given pool.
func New(pool *pgxpool.Pool, log zerolog.Logger) *Machine {
	return &Machine{pool: pool, log: log}
}

// Transition describes one legal move of the pipeline. Guards run in a fixed
// order: role first, then state, then row-field completeness.
type Transition struct {
	Name string
	Role model.Role
	From []model.State
	To   model.State
}

var (
	submitToFinance = Transition{
		Name: "submit-to-finance",
		Role: model.RoleEncoder,
		// A rejected batch behaves as an encoder draft; resubmitting it
		// re-enters the pipeline (and must re-acquire the active slot).
		From: []model.State{model.StateBorradorEncoder, model.StateRechazado},
		To:   model.StatePendienteFinance,
	}
	submitToAdmin = Transition{
		Name: "submit-to-admin",
		Role: model.RoleFinance,
		From: []model.State{model.StatePendienteFinance, model.StateBorradorFinance},
		To:   model.StatePendienteAdmin,
	}
	reviewApprove = Transition{
		Name: "review-approve",
		Role: model.RoleAdmin,
		From: []model.State{model.StatePendienteAdmin},
		To:   model.StateAprobado,
	}
	reviewReject = Transition{
		Name: "review-reject",
		Role: model.RoleAdmin,
		From: []model.State{model.StatePendienteAdmin},
		To:   model.StateRechazado,
	}
	markExported = Transition{
		Name: "mark-exported",
		Role: model.RoleAdmin,
		From: []model.State{model.StateAprobado},
		To:   model.StateExportado,
	}
)

// ReviewAction is the admin's decision on a pending batch.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// SubmitToFinance moves an encoder draft (or a rejected batch being
// resubmitted) to pendiente_finance. Guard: every row with AT set must carry
// a non-empty AT detail.
func (m *Machine) SubmitToFinance(ctx context.Context, role model.Role, batchID uuid.UUID) error {
	return m.apply(ctx, role, batchID, submitToFinance, func(ctx context.Context, tx pgx.Tx) error {
		return m.checkRowGuard(ctx, tx, submitToFinance, batchID, embedsql.MissingATDetail, "AT_detalle")
	})
}

// SubmitToAdmin moves a finance batch to pendiente_admin. Guard: validado
// must be exactly true on every row. Effect: final amounts are computed
// before the batch leaves Finance's stage.
func (m *Machine) SubmitToAdmin(ctx context.Context, role model.Role, batchID uuid.UUID) error {
	return m.apply(ctx, role, batchID, submitToAdmin, func(ctx context.Context, tx pgx.Tx) error {
		if err := m.checkRowGuard(ctx, tx, submitToAdmin, batchID, embedsql.NotValidated, "validado"); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, embedsql.ComputeFinalAmounts, batchID); err != nil {
			return fmt.Errorf("compute final amounts: %w", err)
		}
		return nil
	})
}

// Review records the admin decision. Reject may carry a human-readable
// reason, stored in the rows' documentation field. Review itself has no
// field-completeness guard.
func (m *Machine) Review(ctx context.Context, role model.Role, batchID uuid.UUID, action ReviewAction, reason string) error {
	switch action {
	case ActionApprove:
		return m.apply(ctx, role, batchID, reviewApprove, nil)
	case ActionReject:
		return m.apply(ctx, role, batchID, reviewReject, func(ctx context.Context, tx pgx.Tx) error {
			if reason == "" {
				return nil
			}
			_, err := tx.Exec(ctx,
				`UPDATE grd.rows SET documentacion = $2 WHERE batch_id = $1`,
				batchID, reason)
			if err != nil {
				return fmt.Errorf("store reject reason: %w", err)
			}
			return nil
		})
	default:
		return fmt.Errorf("review: unknown action %q", action)
	}
}

// MarkExported moves an approved batch to the terminal exportado state. The
// export adapter calls this after the file is written.
func (m *Machine) MarkExported(ctx context.Context, role model.Role, batchID uuid.UUID) error {
	return m.apply(ctx, role, batchID, markExported, nil)
}

// ActiveInfo reports the batch currently holding the active slot.
type ActiveInfo struct {
	HasActiveWorkflow bool
	BatchID           uuid.UUID
	Estado            model.State
}

// Active reports whether any batch is in an active workflow state. It gates
// new uploads and drives role-specific editor redirection.
func (m *Machine) Active(ctx context.Context) (ActiveInfo, error) {
	var info ActiveInfo
	err := m.pool.QueryRow(ctx, embedsql.ActiveBatch).Scan(&info.BatchID, &info.Estado)
	if errors.Is(err, pgx.ErrNoRows) {
		return ActiveInfo{}, nil
	}
	if err != nil {
		return ActiveInfo{}, fmt.Errorf("query active batch: %w", err)
	}
	info.HasActiveWorkflow = true
	return info, nil
}

// apply runs one transition: role check, then inside a single transaction the
// state guard (row locked), the per-transition guard/effects, slot CAS when
// the batch crosses the active boundary, and the state-guarded conditional
// update. Zero rows affected anywhere along the way is a failure, never a
// silent success.
func (m *Machine) apply(ctx context.Context, role model.Role, batchID uuid.UUID, t Transition, guard func(context.Context, pgx.Tx) error) error {
	// Role mismatch is checked before any state guard.
	if role != t.Role {
		return &ForbiddenError{Transition: t.Name, Role: role, Required: t.Role}
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", t.Name, err)
	}
	defer tx.Rollback(ctx)

	var actual model.State
	err = tx.QueryRow(ctx,
		`SELECT estado FROM grd.batches WHERE batch_id = $1 FOR UPDATE`,
		batchID).Scan(&actual)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Kind: "batch", Key: batchID.String()}
	}
	if err != nil {
		return fmt.Errorf("%s: read batch state: %w", t.Name, err)
	}

	if !stateIn(actual, t.From) {
		return &GuardError{Transition: t.Name, BatchID: batchID, Expected: t.From, Actual: actual}
	}

	if guard != nil {
		if err := guard(ctx, tx); err != nil {
			return err
		}
	}

	// Crossing into the active set re-acquires the slot; leaving it releases.
	if !model.IsActive(actual) && model.IsActive(t.To) {
		if err := AcquireSlot(ctx, tx, batchID); err != nil {
			return err
		}
	}
	if model.IsActive(actual) && !model.IsActive(t.To) {
		if _, err := tx.Exec(ctx, embedsql.ReleaseSlot, batchID); err != nil {
			return fmt.Errorf("%s: release slot: %w", t.Name, err)
		}
	}

	tag, err := tx.Exec(ctx, embedsql.TransitionBatch, batchID, t.To, stateStrings(t.From))
	if err != nil {
		return fmt.Errorf("%s: transition update: %w", t.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return &ConflictError{Op: t.Name}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", t.Name, err)
	}

	m.log.Info().
		Str("transition", t.Name).
		Str("batch_id", batchID.String()).
		Str("from", string(actual)).
		Str("to", string(t.To)).
		Msg("workflow transition")
	return nil
}

// checkRowGuard runs a guard query returning offending episode numbers and
// converts a non-empty result into a ValidationError with a bounded sample.
func (m *Machine) checkRowGuard(ctx context.Context, tx pgx.Tx, t Transition, batchID uuid.UUID, query, field string) error {
	rows, err := tx.Query(ctx, query, batchID)
	if err != nil {
		return fmt.Errorf("%s: guard query: %w", t.Name, err)
	}
	episodes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("%s: guard scan: %w", t.Name, err)
	}
	if len(episodes) == 0 {
		return nil
	}
	sample := episodes
	if len(sample) > maxSampleEpisodes {
		sample = sample[:maxSampleEpisodes]
	}
	return &ValidationError{
		Transition: t.Name,
		BatchID:    batchID,
		Field:      field,
		Sample:     sample,
		Total:      len(episodes),
	}
}

// AcquireSlot claims the active-batch slot for batchID inside the caller's
// transaction. Zero rows affected means another batch holds the slot; the
// returned ConflictError names it. Ingestion and resubmission both funnel
// through this single compare-and-swap.
func AcquireSlot(ctx context.Context, tx pgx.Tx, batchID uuid.UUID) error {
	tag, err := tx.Exec(ctx, embedsql.AcquireSlot, batchID)
	if err != nil {
		return fmt.Errorf("acquire active slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var holder uuid.UUID
		var estado model.State
		if err := tx.QueryRow(ctx, embedsql.ActiveBatch).Scan(&holder, &estado); err != nil {
			return &ConflictError{Op: "acquire active slot"}
		}
		return &ConflictError{Op: "acquire active slot", BatchID: holder, Estado: estado}
	}
	return nil
}

func stateIn(s model.State, set []model.State) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func stateStrings(set []model.State) []string {
	out := make([]string, len(set))
	for i, s := range set {
		out[i] = string(s)
	}
	return out
}
