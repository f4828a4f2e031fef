package core

import "github.com/hilevel/armkernel/internal/constants"

// SourceKind names what triggered a scheduling decision.
type SourceKind int

const (
	SourceReset SourceKind = iota
	SourceTimer
	SourceSvc
	SourceIO
)

// Source describes why Schedule was called. For SourceSvc, Yielded
// and Left distinguish the three ways a syscall can affect the
// currently running process: an explicit yield, leaving the ready set
// entirely (exit, kill, or blocking on I/O), or an ordinary syscall
// that keeps the caller running (only its level and run count are
// adjusted).
type Source struct {
	Kind    SourceKind
	Yielded bool
	Left    bool
}

func ResetSource() Source    { return Source{Kind: SourceReset} }
func TimerSource() Source    { return Source{Kind: SourceTimer} }
func IOSource() Source       { return Source{Kind: SourceIO} }
func YieldSource() Source    { return Source{Kind: SourceSvc, Yielded: true} }
func LeaveSource() Source    { return Source{Kind: SourceSvc, Left: true} }
func ContinueSource() Source { return Source{Kind: SourceSvc} }

// currentEntry tracks the process presently dispatched: which level
// it was popped from (so a timer tick demotes it from the right
// place) and how many ticks it has consumed of its quantum.
type currentEntry struct {
	p        *pcb
	level    int
	runCount int
}

// scheduler implements the multi-level feedback queue policy: level
// selection, quantum tracking, periodic boosting, and per-source
// dispatch rules.
type scheduler struct {
	mlq        *multiLevelQueue
	current    *currentEntry
	boostTicks int
	boosts     int
	idle       *pcb
}

func newScheduler(idle *pcb) *scheduler {
	return &scheduler{mlq: newMultiLevelQueue(), idle: idle}
}

// ready marks p runnable and puts it in the top-priority level via
// mlq.pushFront, which joins the back of that level's FIFO: a process
// that just became runnable (created, forked, or woken from blocked
// I/O) runs after the peers already waiting at the top level.
func (s *scheduler) ready(p *pcb) {
	p.status = statusReady
	s.mlq.pushFront(p)
}

// remove drops p from the scheduler entirely, whether it is currently
// dispatched or sitting in a level's queue. Used when a process exits
// or is killed while not necessarily the one running.
func (s *scheduler) remove(p *pcb) bool {
	if s.current != nil && s.current.p == p {
		s.current = nil
		return true
	}
	return s.mlq.remove(p)
}

func readyPred(p *pcb) bool { return p.status == statusReady }

func (s *scheduler) popNext() *pcb {
	p, idx, ok := s.mlq.popFirstMatching(readyPred)
	if !ok {
		return nil
	}
	p.status = statusExecuting
	s.current = &currentEntry{p: p, level: idx}
	return p
}

// dispatchIdleIfNone falls back to the idle process when no ready
// process was found, so the scheduler always returns something to run.
func (s *scheduler) dispatchIdleIfNone(p *pcb) *pcb {
	if p != nil {
		return p
	}
	s.current = &currentEntry{p: s.idle, level: s.mlq.levelCount() - 1}
	s.idle.status = statusExecuting
	return s.idle
}

// Schedule applies the dispatch rule for src and returns the process
// that should run next (the idle process if nothing else is ready).
func (s *scheduler) Schedule(src Source) *pcb {
	switch src.Kind {
	case SourceReset:
		return s.dispatchIdleIfNone(s.popNext())

	case SourceTimer:
		s.boostTicks++
		if s.boostTicks >= constants.BoostQuantum {
			s.mlq.boost()
			s.boostTicks = 0
			s.boosts++
		}
		if s.current == nil || s.current.p == s.idle {
			s.current = nil
			return s.dispatchIdleIfNone(s.popNext())
		}
		cur := s.current
		cur.runCount++
		if cur.runCount < s.mlq.quantum(cur.level) {
			return cur.p // quantum not exhausted: keep running
		}
		cur.p.status = statusReady
		s.mlq.pushAtLevel(cur.level+1, cur.p)
		s.current = nil
		return s.dispatchIdleIfNone(s.popNext())

	case SourceSvc:
		cur := s.current
		if cur == nil {
			return s.dispatchIdleIfNone(s.popNext())
		}
		if src.Left {
			// The caller already removed this process from the ready
			// set (it exited, was killed, or just blocked on I/O) —
			// don't requeue it.
			s.current = nil
			return s.dispatchIdleIfNone(s.popNext())
		}
		if src.Yielded {
			// An explicit yield gives up the rest of the quantum early
			// and hands off the CPU: demote one level, same as running
			// out the clock, and let popNext pick whoever's next.
			cur.p.status = statusReady
			s.mlq.pushAtLevel(cur.level+1, cur.p)
			s.current = nil
			return s.dispatchIdleIfNone(s.popNext())
		}
		// An ordinary syscall that neither leaves nor yields returns
		// control to the same process — there is no preemption point
		// here, so it keeps the CPU. It's rewarded for not hogging its
		// quantum: promote one level (or stay at the top) and reset its
		// run count, purely as bookkeeping for the next time it's
		// actually dispatched from the queue.
		if cur.level > 0 {
			cur.level--
		}
		cur.runCount = 0
		return cur.p

	case SourceIO:
		if s.current == nil || s.current.p == s.idle {
			s.current = nil
			return s.dispatchIdleIfNone(s.popNext())
		}
		cur := s.current
		// The current process is still runnable, but a blocked peer
		// may have just become ready; requeue current at its own
		// level and let popNext decide who runs, so a higher-priority
		// newcomer can preempt.
		cur.p.status = statusReady
		s.mlq.pushAtLevel(cur.level, cur.p)
		s.current = nil
		return s.dispatchIdleIfNone(s.popNext())
	}
	return s.dispatchIdleIfNone(s.popNext())
}
