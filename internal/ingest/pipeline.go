// Package ingest creates an official GRD batch from parsed SIGESA episode
// records: one pricing-engine pass per episode, then a bulk COPY of the
// resulting rows. Batch record, active-slot claim, and row load all happen in
// one transaction; a failure anywhere leaves no partial batch behind.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/grdflow/internal/config"
	"github.com/gyeh/grdflow/internal/db"
	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/pricing"
	"github.com/gyeh/grdflow/internal/refdata"
	"github.com/gyeh/grdflow/internal/workflow"
)

const priceBatchSize = 256

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run ingests one upload's worth of episodes as a new batch in the machine's
// initial state. Rows without an episode number are dropped (not fatal); an
// already-active batch aborts the whole call with a ConflictError.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, episodes []model.RawEpisode) (*model.IngestSummary, error) {
	totalStart := time.Now()
	sourceFileName := filepath.Base(cfg.FilePath)
	engine := pricing.NewEngine(pricing.AllPlanFormulas)
	if len(cfg.PlanCodes) > 0 {
		engine = pricing.NewEngine(pricing.FormulasFor(cfg.PlanCodes))
	}

	// Fast-fail precheck; the CAS inside the transaction below stays the
	// authoritative guard against racing uploads.
	m := workflow.New(pool, log)
	if active, err := m.Active(ctx); err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	} else if active.HasActiveWorkflow {
		return nil, &PipelineError{Phase: "preflight", Err: &workflow.ConflictError{
			Op: "ingest", BatchID: active.BatchID, Estado: active.Estado,
		}}
	}

	look, err := refdata.Load(ctx, pool)
	if err != nil {
		return nil, &PipelineError{Phase: "refdata", Err: err}
	}

	batchID := uuid.New()
	log.Info().
		Str("batch_id", batchID.String()).
		Str("file", sourceFileName).
		Int("episodes", len(episodes)).
		Msg("starting batch ingestion")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, &PipelineError{Phase: "create", Err: err}
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO grd.batches (batch_id, estado, source_file_name) VALUES ($1, $2, $3)`,
		batchID, model.StateBorradorEncoder, sourceFileName)
	if err != nil {
		return nil, &PipelineError{Phase: "create", Err: err}
	}

	if err := workflow.AcquireSlot(ctx, tx, batchID); err != nil {
		return nil, &PipelineError{Phase: "create", Err: err}
	}

	// Producer: pricing engine per episode → channel → COPY.
	priceStart := time.Now()
	ch := make(chan *model.GRDRow, priceBatchSize)
	errCh := make(chan error, 1)
	var rowsDropped int64

	go func() {
		defer close(ch)
		for i := range episodes {
			ep := &episodes[i]
			if strings.TrimSpace(ep.EpisodeNumber) == "" {
				rowsDropped++
				log.Warn().Int("row", i+1).Msg("episode without number dropped")
				continue
			}
			row, buildErr := engine.BuildRow(ep, batchID, look)
			if buildErr != nil {
				errCh <- fmt.Errorf("price episode %q: %w", ep.EpisodeNumber, buildErr)
				return
			}
			select {
			case ch <- row:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	copyStart := time.Now()
	rowsIngested, err := tx.CopyFrom(ctx,
		pgx.Identifier{"grd", "rows"},
		model.GRDRowColumns(),
		db.NewRowSource(ch),
	)

	prodErr := <-errCh
	if prodErr != nil {
		return nil, &PipelineError{Phase: "price", Err: prodErr}
	}
	if err != nil {
		return nil, &PipelineError{Phase: "copy", Err: err}
	}

	_, err = tx.Exec(ctx,
		`UPDATE grd.batches SET row_count = $2 WHERE batch_id = $1`,
		batchID, rowsIngested)
	if err != nil {
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}

	summary := &model.IngestSummary{
		BatchID:        batchID,
		SourceFileName: sourceFileName,
		RowsRead:       int64(len(episodes)),
		RowsIngested:   rowsIngested,
		RowsDropped:    rowsDropped,
		DurationPrice:  copyStart.Sub(priceStart),
		DurationCopy:   time.Since(copyStart),
		DurationTotal:  time.Since(totalStart),
	}

	log.Info().
		Str("batch_id", batchID.String()).
		Int64("rows_read", summary.RowsRead).
		Int64("rows_ingested", summary.RowsIngested).
		Int64("rows_dropped", summary.RowsDropped).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("batch ingestion complete")

	return summary, nil
}
