package core

import (
	"math"

	"github.com/hilevel/armkernel/internal/constants"
	"github.com/hilevel/armkernel/internal/idtable"
	"github.com/hilevel/armkernel/internal/logging"
	"github.com/hilevel/armkernel/internal/stackpool"
)

// taskQueuer is satisfied by every FileDescriptor implementation (via
// the embedded descriptorBase) and lets the manager enqueue a pending
// read/write without the FileDescriptor interface itself needing to
// expose task plumbing to callers outside this package.
type taskQueuer interface {
	queueRead(t *readTask)
	queueWrite(t *writeTask)
}

// Manager is the process manager: it owns the process table, the
// scheduler, and the I/O manager, and is the single object the root
// package's Kernel drives from its three exception entry points.
type Manager struct {
	processes  *idtable.Table[int32, *pcb]
	sched      *scheduler
	io         *ioManager
	logger     *logging.Logger
	stackBytes int
}

// NewManager wires a Manager around two UART devices (UART0 for the
// console, UART1 as a second general-purpose port) and a stack size
// for every process the manager creates.
func NewManager(uart0, uart1 UARTDevice, stackBytes int, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	stackpool.Configure(stackBytes)
	idle := newPCB(constants.IdlePID, nil, Context{})
	return &Manager{
		processes:  idtable.New[int32, *pcb](),
		sched:      newScheduler(idle),
		io:         newIOManager(uart0, uart1),
		logger:     logger,
		stackBytes: stackBytes,
	}
}

// CurrentPID returns the pid of the process presently dispatched, or
// constants.IdlePID if nothing but the idle loop is runnable.
func (m *Manager) CurrentPID() int32 {
	if m.sched.current != nil {
		return m.sched.current.p.pid
	}
	return constants.IdlePID
}

// BoostCount returns how many times the scheduler has boosted every
// level back to the top, cumulatively, so the kernel can mirror it
// into Metrics.Boosts.
func (m *Manager) BoostCount() int { return m.sched.boosts }

// Dispatch saves ctx into whichever process was running before this
// call, asks the scheduler for the next process to run per source,
// and returns its context and pid for the caller to load back into
// the core.
func (m *Manager) Dispatch(ctx Context, source Source) (Context, int32) {
	if m.sched.current != nil {
		m.sched.current.p.context = ctx
	}
	next := m.sched.Schedule(source)
	return next.context, next.pid
}

// Reset creates the single initial process at entry and schedules it;
// called once from the kernel's reset handler.
func (m *Manager) Reset(entry uint32) (Context, int32, error) {
	p, err := m.createProcess(entry)
	if err != nil {
		return Context{}, 0, err
	}
	m.sched.ready(p)
	next := m.sched.Schedule(ResetSource())
	return next.context, next.pid, nil
}

func (m *Manager) createProcess(entry uint32) (*pcb, error) {
	pid, err := m.processes.NextKey(math.MaxInt32)
	if err != nil {
		return nil, err
	}
	stack := stackpool.Get(m.stackBytes)
	p := newPCB(pid, stack, NewContext(entry, uint32(len(stack))))
	p.fds = m.io.defaultFiles()
	m.processes.Set(pid, p)
	return p, nil
}

// Create starts a new process at entry, as the Create syscall does.
func (m *Manager) Create(entry uint32) (int32, error) {
	p, err := m.createProcess(entry)
	if err != nil {
		return 0, err
	}
	m.sched.ready(p)
	m.logger.Debug("process created", "pid", p.pid)
	return p.pid, nil
}

// Fork duplicates callerPID's stack and file descriptors into a new
// process whose stack pointer preserves the same offset from the top
// of stack that the parent's sp had, and whose gpr[0] (the syscall
// return register) is forced to 0 so the child observes fork()
// returning 0 where the parent observes the child's pid.
func (m *Manager) Fork(callerPID int32) (int32, error) {
	parent, ok := m.processes.Get(callerPID)
	if !ok {
		return 0, ErrPidNotFound
	}
	pid, err := m.processes.NextKey(math.MaxInt32)
	if err != nil {
		return 0, err
	}

	childStack := stackpool.Get(len(parent.stack))
	copy(childStack, parent.stack)

	oldTop := uint32(len(parent.stack))
	newTop := uint32(len(childStack))
	delta := oldTop - parent.context.SP

	childCtx := parent.context
	childCtx.SP = newTop - delta
	childCtx.GPR[0] = 0

	child := newPCB(pid, childStack, childCtx)
	child.fds = idtable.New[int32, FileDescriptor]()
	for _, fid := range parent.fds.Keys() {
		fd, _ := parent.fds.Get(fid)
		child.fds.Set(fid, fd)
	}

	m.processes.Set(pid, child)
	m.sched.ready(child)
	m.logger.Debug("process forked", "parent", callerPID, "child", pid)
	return pid, nil
}

// Exec replaces pid's context with a fresh one at entry, keeping its
// stack buffer and file descriptors exactly as they were.
func (m *Manager) Exec(pid int32, entry uint32) error {
	p, ok := m.processes.Get(pid)
	if !ok {
		return ErrPidNotFound
	}
	p.context = NewContext(entry, uint32(len(p.stack)))
	return nil
}

// Exit tears down pid cleanly: removed from the scheduler and process
// table, its weak self-reference cleared so any task still watching
// it for progress observes it is gone, and its stack buffer returned
// to the pool.
func (m *Manager) Exit(pid int32) error {
	p, ok := m.processes.Get(pid)
	if !ok {
		return ErrPidNotFound
	}
	p.status = statusExited
	m.teardownProcess(p)
	m.logger.Debug("process exited", "pid", pid)
	return nil
}

// Signal kills pid; the kernel's only supported signal is SIGKILL, so
// unlike POSIX kill(2) there is no signal number to interpret.
func (m *Manager) Signal(pid int32) error {
	p, ok := m.processes.Get(pid)
	if !ok {
		return ErrPidNotFound
	}
	p.status = statusTerminated
	m.teardownProcess(p)
	m.logger.Debug("process killed", "pid", pid)
	return nil
}

func (m *Manager) teardownProcess(p *pcb) {
	m.sched.remove(p)
	m.processes.Delete(p.pid)
	p.teardown()
	stackpool.Put(p.stack)
}

// Read attempts to satisfy a read(2) call for pid on fid into dst. If
// the descriptor can't fill the whole buffer immediately, the
// remainder is queued as a pending readTask that completes later (on
// the descriptor's next state change) and pid is expected to have
// been removed from the ready set by the caller.
func (m *Manager) Read(pid, fid int32, dst []byte) (IOResult, error) {
	p, ok := m.processes.Get(pid)
	if !ok {
		return IOResult{}, ErrPidNotFound
	}
	fd, ok := p.fds.Get(fid)
	if !ok {
		return IOResult{}, ErrInvalidDescriptor
	}
	res, err := fd.Read(dst)
	if err != nil {
		return IOResult{}, err
	}
	if res.Blocked {
		m.queueBlockedRead(p, fd, dst, res.Bytes)
	}
	return res, nil
}

func (m *Manager) queueBlockedRead(p *pcb, fd FileDescriptor, dst []byte, already int) {
	q, ok := fd.(taskQueuer)
	if !ok {
		return
	}
	p.status = statusBlocked
	task := newReadTask(p.weak(), dst[already:], func(n int, taskErr error) {
		m.completeBlocked(p, already, n, taskErr)
	})
	q.queueRead(task)
}

// Write attempts to satisfy a write(2) call for pid on fid from src,
// queuing a pending writeTask for the remainder exactly as Read does.
func (m *Manager) Write(pid, fid int32, src []byte) (IOResult, error) {
	p, ok := m.processes.Get(pid)
	if !ok {
		return IOResult{}, ErrPidNotFound
	}
	fd, ok := p.fds.Get(fid)
	if !ok {
		return IOResult{}, ErrInvalidDescriptor
	}
	res, err := fd.Write(src)
	if err != nil {
		return IOResult{}, err
	}
	if res.Blocked {
		m.queueBlockedWrite(p, fd, src, res.Bytes)
	}
	return res, nil
}

func (m *Manager) queueBlockedWrite(p *pcb, fd FileDescriptor, src []byte, already int) {
	q, ok := fd.(taskQueuer)
	if !ok {
		return
	}
	p.status = statusBlocked
	task := newWriteTask(p.weak(), src[already:], func(n int, taskErr error) {
		m.completeBlocked(p, already, n, taskErr)
	})
	q.queueWrite(task)
}

// completeBlocked is the shared completion callback for blocked reads
// and writes: it writes the total byte count (or -1 on error) into
// the process's syscall return register and, if the process hasn't
// exited or been killed in the meantime, makes it ready again.
func (m *Manager) completeBlocked(p *pcb, already, n int, taskErr error) {
	if p.status == statusExited || p.status == statusTerminated {
		return
	}
	total := already + n
	if taskErr != nil {
		p.context.GPR[0] = ^uint32(0) // int32(-1)
	} else {
		p.context.GPR[0] = uint32(int32(total))
	}
	m.sched.ready(p)
}

// CreatePipe creates an unnamed pipe and installs its two ends into
// pid's file descriptor table, returning the read-end and write-end
// fids.
func (m *Manager) CreatePipe(pid int32) (readFid, writeFid int32, err error) {
	p, ok := m.processes.Get(pid)
	if !ok {
		return 0, 0, ErrPidNotFound
	}
	readEnd, writeEnd := newPipe()

	readFid, err = p.fds.NextKey(math.MaxInt32)
	if err != nil {
		return 0, 0, err
	}
	p.fds.Set(readFid, readEnd)

	writeFid, err = p.fds.NextKey(math.MaxInt32)
	if err != nil {
		p.fds.Delete(readFid)
		return 0, 0, err
	}
	p.fds.Set(writeFid, writeEnd)

	return readFid, writeFid, nil
}

// Close closes fid in pid's file descriptor table. Closing either end
// of a pipe marks that end closed on the shared pipe so the peer
// observes EOF or a write error, per the respective descriptor's
// close hook.
func (m *Manager) Close(pid, fid int32) error {
	p, ok := m.processes.Get(pid)
	if !ok {
		return ErrPidNotFound
	}
	fd, ok := p.fds.Get(fid)
	if !ok {
		return ErrInvalidDescriptor
	}
	switch end := fd.(type) {
	case *pipeReadEnd:
		end.close()
	case *pipeWriteEnd:
		end.close()
	}
	p.fds.Delete(fid)
	return nil
}

// OnUART0Interrupt buffers newly received bytes on UART0 and wakes any
// reads blocked on it.
func (m *Manager) OnUART0Interrupt() { m.io.onUART0Interrupt() }

// OnUART1Interrupt buffers newly received bytes on UART1 and wakes any
// reads blocked on it.
func (m *Manager) OnUART1Interrupt() { m.io.onUART1Interrupt() }
