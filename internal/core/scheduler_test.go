package core

import (
	"testing"

	"github.com/hilevel/armkernel/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *scheduler {
	idle := newPCB(constants.IdlePID, nil, Context{})
	return newScheduler(idle)
}

func TestResetDispatchesTheOnlyReadyProcess(t *testing.T) {
	s := newTestScheduler()
	p := mustReadyPCB(1)
	s.ready(p)

	got := s.Schedule(ResetSource())
	assert.Equal(t, p, got)
}

func TestResetFallsBackToIdleWithNoneReady(t *testing.T) {
	s := newTestScheduler()
	got := s.Schedule(ResetSource())
	assert.Equal(t, int32(constants.IdlePID), got.pid)
}

func TestTimerKeepsRunningUntilQuantumExhausted(t *testing.T) {
	s := newTestScheduler()
	p := mustReadyPCB(1)
	s.ready(p)
	s.Schedule(ResetSource())

	quantum := constants.Level0Quantum
	for i := 0; i < quantum-1; i++ {
		got := s.Schedule(TimerSource())
		require.Equal(t, p, got, "tick %d should not switch yet", i)
	}

	// One more tick exhausts the quantum and demotes p to level 1; with
	// no other process ready, popNext immediately re-picks p anyway, now
	// running at its new, lower level.
	got := s.Schedule(TimerSource())
	assert.Equal(t, p, got)
	assert.Equal(t, 1, s.current.level)
}

func TestYieldSwitchesToNextReadyProcess(t *testing.T) {
	s := newTestScheduler()
	a, b := mustReadyPCB(1), mustReadyPCB(2)
	s.ready(a)
	s.Schedule(ResetSource())
	s.ready(b)

	got := s.Schedule(YieldSource())
	assert.Equal(t, b, got)
}

func TestBoostRunsEveryBoostQuantumTicks(t *testing.T) {
	s := newTestScheduler()
	low := mustReadyPCB(1)
	low.status = statusBlocked // never picked, so it is still queued at level 3 when the boost fires
	s.mlq.pushAtLevel(3, low)
	s.ready(mustReadyPCB(2))
	s.Schedule(ResetSource())

	for i := 0; i < constants.BoostQuantum; i++ {
		s.Schedule(TimerSource())
	}

	assert.Contains(t, s.mlq.levels[0].queue, low)
}

func TestYieldDemotesCurrentByOneLevel(t *testing.T) {
	s := newTestScheduler()
	a, b := mustReadyPCB(1), mustReadyPCB(2)
	s.ready(a)
	s.Schedule(ResetSource())
	s.ready(b)

	s.Schedule(YieldSource())

	assert.Contains(t, s.mlq.levels[1].queue, a, "yielding process demotes to level 1")
	assert.NotContains(t, s.mlq.levels[0].queue, a)
}

func TestOrdinarySvcPromotesCurrentAndKeepsItRunning(t *testing.T) {
	s := newTestScheduler()
	p := mustReadyPCB(1)
	s.mlq.pushAtLevel(2, p)
	s.current = &currentEntry{p: p, level: 2, runCount: 3}

	got := s.Schedule(ContinueSource())

	assert.Equal(t, p, got, "an ordinary syscall keeps the same process running")
	assert.Equal(t, 1, s.current.level, "promoted from level 2 to level 1")
	assert.Equal(t, 0, s.current.runCount, "run count resets as bookkeeping for the next dispatch")
}

func TestOrdinarySvcAtTopLevelStaysAtTop(t *testing.T) {
	s := newTestScheduler()
	p := mustReadyPCB(1)
	s.current = &currentEntry{p: p, level: 0, runCount: 1}

	got := s.Schedule(ContinueSource())

	assert.Equal(t, p, got)
	assert.Equal(t, 0, s.current.level, "already at the top level: clamped, not negative")
}

func TestLeaveSourceDoesNotRequeueCurrent(t *testing.T) {
	s := newTestScheduler()
	p := mustReadyPCB(1)
	s.ready(p)
	s.Schedule(ResetSource())

	got := s.Schedule(LeaveSource())
	assert.Equal(t, int32(constants.IdlePID), got.pid)
	assert.False(t, s.mlq.remove(p), "p must not have been left in any level's queue")
}
