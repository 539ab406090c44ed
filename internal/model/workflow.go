package model

// State is the workflow state of an official GRD batch. All rows of a batch
// share the batch's state; the value lives on the batch record.
type State string

const (
	StateBorradorEncoder  State = "borrador_encoder"
	StatePendienteFinance State = "pendiente_finance"
	StateBorradorFinance  State = "borrador_finance"
	StatePendienteAdmin   State = "pendiente_admin"
	StateAprobado         State = "aprobado"
	StateRechazado        State = "rechazado"
	StateExportado        State = "exportado"
)

// Role is the acting role supplied by the (external) auth adapter. The core
// treats it as an opaque precondition input and never resolves it itself.
type Role string

const (
	RoleEncoder Role = "encoder"
	RoleFinance Role = "finance"
	RoleAdmin   Role = "admin"
)

// StateInfo describes one workflow state: whether it blocks new uploads and
// which role may edit row fields while a batch sits in it.
type StateInfo struct {
	Name State
	// Active states count toward the single-active-batch invariant.
	Active bool
	// WritableBy is the role allowed to mutate its own row fields in this
	// state. Empty means the batch is read-only.
	WritableBy Role
}

// AllStates lists the workflow states in pipeline order. Rechazado is
// encoder-writable: a rejected batch behaves as an encoder draft until it is
// resubmitted, at which point it re-enters pendiente_finance.
var AllStates = []StateInfo{
	{Name: StateBorradorEncoder, Active: true, WritableBy: RoleEncoder},
	{Name: StatePendienteFinance, Active: true, WritableBy: RoleFinance},
	{Name: StateBorradorFinance, Active: true, WritableBy: RoleFinance},
	{Name: StatePendienteAdmin, Active: true},
	{Name: StateAprobado, Active: false},
	{Name: StateRechazado, Active: false, WritableBy: RoleEncoder},
	{Name: StateExportado, Active: false},
}

// StateByName returns the StateInfo for the given state, or ok=false.
func StateByName(s State) (StateInfo, bool) {
	for _, si := range AllStates {
		if si.Name == s {
			return si, true
		}
	}
	return StateInfo{}, false
}

// ActiveStates returns the states that block new uploads, in pipeline order.
func ActiveStates() []State {
	var out []State
	for _, si := range AllStates {
		if si.Active {
			out = append(out, si.Name)
		}
	}
	return out
}

// IsActive reports whether the state counts toward the single-active-batch
// invariant. Unknown states are treated as inactive.
func IsActive(s State) bool {
	si, ok := StateByName(s)
	return ok && si.Active
}

// Writable reports whether the given role may edit its row fields while the
// batch is in the given state.
func Writable(s State, r Role) bool {
	si, ok := StateByName(s)
	return ok && si.WritableBy == r && r != ""
}
