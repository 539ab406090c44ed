package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	ConflictError   = 4
	GuardError      = 5
	IngestError     = 6
	ExportError     = 7
)
