package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerTracksEachResourceKindSeparately(t *testing.T) {
	ledger := NewLedger()
	ledger.ReserveInstructor("x", "s1")

	assert.True(t, ledger.InstructorBusy("x", "s1"))
	assert.False(t, ledger.RoomBusy("x", "s1"))
	assert.False(t, ledger.CohortBusy(class("c1", "i1", "x", 1, false), "s1"))
	assert.False(t, ledger.InstructorBusy("x", "s2"))
}

func TestLedgerIgnoresEmptyCohort(t *testing.T) {
	ledger := NewLedger()
	solo := class("c1", "i1", "", 1, false)
	ledger.ReserveCohort(solo, "s1")

	assert.Equal(t, 0, ledger.Len())
	assert.False(t, ledger.CohortBusy(solo, "s1"))
}

func TestCommitReservesAllResources(t *testing.T) {
	ledger := NewLedger()
	Commit(ledger, class("c1", "inst-1", "prog-1", 1, false), "r1", "s1")

	assert.True(t, ledger.InstructorBusy("inst-1", "s1"))
	assert.True(t, ledger.RoomBusy("r1", "s1"))
	assert.True(t, ledger.CohortBusy(class("c2", "inst-2", "prog-1", 1, false), "s1"))
	assert.Equal(t, 3, ledger.Len())
}
