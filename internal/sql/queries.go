package sql

import (
	"embed"
)

// Migrations holds the schema migration files, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/acquire_slot.sql
var AcquireSlot string

//go:embed queries/release_slot.sql
var ReleaseSlot string

//go:embed queries/active_batch.sql
var ActiveBatch string

//go:embed queries/transition_batch.sql
var TransitionBatch string

//go:embed queries/missing_at_detail.sql
var MissingATDetail string

//go:embed queries/not_validated.sql
var NotValidated string

//go:embed queries/compute_final_amounts.sql
var ComputeFinalAmounts string
