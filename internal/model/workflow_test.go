package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateByName(t *testing.T) {
	si, ok := StateByName(StateBorradorEncoder)
	require.True(t, ok)
	assert.True(t, si.Active)
	assert.Equal(t, RoleEncoder, si.WritableBy)

	_, ok = StateByName(State("limbo"))
	assert.False(t, ok)
}

func TestActiveStates(t *testing.T) {
	got := ActiveStates()
	assert.Equal(t, []State{
		StateBorradorEncoder,
		StatePendienteFinance,
		StateBorradorFinance,
		StatePendienteAdmin,
	}, got)
}

func TestIsActive(t *testing.T) {
	assert.True(t, IsActive(StatePendienteAdmin))
	assert.False(t, IsActive(StateAprobado))
	assert.False(t, IsActive(StateRechazado), "a rejected batch frees the slot")
	assert.False(t, IsActive(StateExportado))
	assert.False(t, IsActive(State("limbo")), "unknown states never hold the slot")
}

func TestWritable(t *testing.T) {
	assert.True(t, Writable(StateBorradorEncoder, RoleEncoder))
	assert.True(t, Writable(StatePendienteFinance, RoleFinance))
	assert.True(t, Writable(StateBorradorFinance, RoleFinance))
	assert.True(t, Writable(StateRechazado, RoleEncoder), "rejected batches reopen for the encoder")

	assert.False(t, Writable(StateBorradorEncoder, RoleFinance))
	assert.False(t, Writable(StatePendienteFinance, RoleEncoder))
	assert.False(t, Writable(StatePendienteAdmin, RoleAdmin), "admin reviews, never edits rows")
	assert.False(t, Writable(StateAprobado, RoleEncoder))
	assert.False(t, Writable(StateExportado, RoleFinance))
	assert.False(t, Writable(StateBorradorEncoder, Role("")))
}
