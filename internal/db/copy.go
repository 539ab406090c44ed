package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/grdflow/internal/model"
)

// RowSource implements pgx.CopyFromSource by reading GRD rows from a channel.
// The pricing producer and the COPY writer run concurrently with natural
// backpressure through the channel.
type RowSource struct {
	ch      <-chan *model.GRDRow
	current *model.GRDRow
	err     error
}

// NewRowSource creates a CopyFromSource backed by a channel.
func NewRowSource(ch <-chan *model.GRDRow) *RowSource {
	return &RowSource{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *RowSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	return true
}

// Values returns the current row's values in COPY column order.
func (s *RowSource) Values() ([]any, error) {
	return s.current.CopyValues(), nil
}

// Err returns any error encountered during iteration.
func (s *RowSource) Err() error {
	return s.err
}

var _ pgx.CopyFromSource = (*RowSource)(nil)
