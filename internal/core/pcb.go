package core

import (
	"github.com/hilevel/armkernel/internal/idtable"
	"github.com/hilevel/armkernel/internal/wref"
)

// processStatus tracks a process through its lifecycle. Exited and
// Terminated are both terminal states kept only long enough for the
// manager to notice and reap the PCB; neither is ever scheduled.
type processStatus int

const (
	statusReady processStatus = iota
	statusExecuting
	statusBlocked
	statusExited
	statusTerminated
)

// pcb is the kernel's process control block: everything the scheduler
// and process manager need to run, suspend, and eventually tear down
// one process.
type pcb struct {
	pid    int32
	status processStatus
	stack  []byte
	context Context
	fds    *idtable.Table[int32, FileDescriptor]

	// self lets anything holding a weak reference to this pcb (a
	// pending read/write task) notice the instant the process is torn
	// down, rather than whenever the garbage collector happens to run.
	self *wref.Box[pcb]
}

// newPCB builds a pcb whose context starts at pc with a stack pointer
// at the top of stack, and asserts that the stack pointer the context
// carries falls within the allocated stack — a process whose initial
// sp doesn't land inside its own stack buffer is a kernel bug, not a
// recoverable runtime condition.
func newPCB(pid int32, stack []byte, ctx Context) *pcb {
	p := &pcb{pid: pid, status: statusReady, stack: stack, context: ctx, fds: idtable.New[int32, FileDescriptor]()}
	p.self = wref.NewBox(p)
	p.assertStackBounds()
	return p
}

func (p *pcb) assertStackBounds() {
	if len(p.stack) == 0 {
		return // the idle process owns no stack
	}
	sp := p.context.SP
	low, high := p.stackRange()
	if sp < low || sp > high {
		panic("process stack pointer out of bounds")
	}
}

// stackRange returns the [low, high] sp bounds for this process's
// stack, expressed as offsets into the stack slice (the ARM stack
// grows down, so high is the top of the buffer and low is its base).
func (p *pcb) stackRange() (low, high uint32) {
	return 0, uint32(len(p.stack))
}

func (p *pcb) weak() wref.Weak[pcb] {
	return p.self.Weak()
}

// teardown invalidates every weak reference to this pcb (pending
// read/write tasks) so they observe the process is
// gone on their next attempt instead of operating on a freed stack.
func (p *pcb) teardown() {
	p.self.Clear()
}
