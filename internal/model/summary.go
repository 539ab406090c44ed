package model

import (
	"time"

	"github.com/google/uuid"
)

// IngestSummary reports the outcome of one batch-ingestion run.
type IngestSummary struct {
	BatchID        uuid.UUID
	SourceFileName string
	RowsRead       int64
	RowsIngested   int64
	RowsDropped    int64 // rows missing an episode number
	DurationPrice  time.Duration
	DurationCopy   time.Duration
	DurationTotal  time.Duration
}

// RefLoadSummary reports row counts per reference table after a refload run.
type RefLoadSummary struct {
	NormRows        int64
	TariffRows      int64
	WaitPaymentRows int64
	WeightBandRows  int64
	ATCatalogRows   int64
	Duration        time.Duration
}
