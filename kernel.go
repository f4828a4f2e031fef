package armkernel

import (
	"encoding/binary"
	"errors"

	"github.com/hilevel/armkernel/internal/constants"
	"github.com/hilevel/armkernel/internal/core"
	"github.com/hilevel/armkernel/internal/idtable"
	"github.com/hilevel/armkernel/internal/logging"
)

// KernelConfig holds the tunables a Kernel is built with.
type KernelConfig struct {
	// StackBytes is the per-process stack allocation.
	StackBytes int
	// MainEntry is the address of the first process's entry point
	// (the linker-provided main_console symbol on real hardware).
	MainEntry uint32
	// Logger receives scheduling and syscall diagnostics. Defaults to
	// logging.Default() when left nil.
	Logger *logging.Logger
}

// DefaultKernelConfig returns the stock configuration: a 4KiB stack
// per process and the default logger.
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{
		StackBytes: constants.DefaultStackBytes,
		MainEntry:  0,
	}
}

// Kernel is the assembled microkernel core: the process manager,
// scheduler and I/O subsystem, wired to a Platform. Its three handler
// methods are what the reset/irq/svc assembly trampolines call.
type Kernel struct {
	mgr      *core.Manager
	platform Platform
	metrics  *Metrics
	logger   *logging.Logger
	cfg      KernelConfig
}

// NewKernel builds a Kernel around platform using cfg.
func NewKernel(platform Platform, cfg KernelConfig) *Kernel {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	stackBytes := cfg.StackBytes
	if stackBytes == 0 {
		stackBytes = constants.DefaultStackBytes
	}
	mgr := core.NewManager(
		&uartAdapter{platform: platform, id: UART0},
		&uartAdapter{platform: platform, id: UART1},
		stackBytes,
		logger,
	)
	return &Kernel{mgr: mgr, platform: platform, metrics: NewMetrics(), logger: logger, cfg: cfg}
}

// Metrics returns the kernel's running statistics.
func (k *Kernel) Metrics() *Metrics { return k.metrics }

// uartAdapter adapts the root Platform interface (keyed by UARTID)
// down to the single-device shape internal/core needs, so core never
// depends on the root package.
type uartAdapter struct {
	platform Platform
	id       UARTID
}

func (a *uartAdapter) Putc(b byte)   { a.platform.Putc(a.id, b) }
func (a *uartAdapter) Getc() byte    { return a.platform.Getc(a.id) }
func (a *uartAdapter) CanPutc() bool { return a.platform.CanPutc(a.id) }
func (a *uartAdapter) CanGetc() bool { return a.platform.CanGetc(a.id) }

// HandleReset is the kernel's reset exception entry point: it builds
// the first process at cfg.MainEntry, enables interrupts, and writes
// that process's initial register frame into ctx for the trampoline
// to restore.
func (k *Kernel) HandleReset(ctx *Context) {
	k.metrics.ResetCount.Add(1)
	next, _, err := k.mgr.Reset(k.cfg.MainEntry)
	if err != nil {
		k.logger.Error("reset failed", "err", err)
		return
	}
	*ctx = next
	k.metrics.ProcessesCreated.Add(1)
	k.platform.EnableIRQ()
}

// HandleIRQ is the kernel's IRQ exception entry point. source is the
// peripheral ID the trampoline read from the GIC's interrupt
// acknowledge register before calling in; UART0 and UART1 reception
// rebuffers into that UART's descriptor and wakes blocked readers,
// everything else (including the timer) simply triggers a scheduling
// decision.
func (k *Kernel) HandleIRQ(ctx *Context, source GICSourceID) {
	k.metrics.IRQCount.Add(1)

	var sched core.Source
	switch source {
	case GICSourceTimer:
		sched = core.TimerSource()
	case GICSourceUART0:
		k.mgr.OnUART0Interrupt()
		sched = core.IOSource()
	case GICSourceUART1:
		k.mgr.OnUART1Interrupt()
		sched = core.IOSource()
	default:
		sched = core.IOSource()
	}

	prev := k.mgr.CurrentPID()
	next, nextPID := k.mgr.Dispatch(*ctx, sched)
	if nextPID != prev {
		k.metrics.ContextSwitches.Add(1)
	}
	k.metrics.Boosts.Store(uint64(k.mgr.BoostCount()))
	*ctx = next
}

// HandleSVC is the kernel's SVC exception entry point. id is the
// syscall number the trampoline decoded from the trap instruction;
// mem is a flat view of the calling process's address space that
// Write/Read's pointer+length arguments index into (the kernel core
// never addresses real memory itself — that mapping is the assembly
// bridge's job).
func (k *Kernel) HandleSVC(ctx *Context, id SysCall, mem []byte) {
	k.metrics.SvcCount.Add(1)
	pid := k.mgr.CurrentPID()
	source := core.ContinueSource()

	switch id {
	case SysYield:
		source = core.YieldSource()

	case SysWrite:
		fid := int32(ctx.GPR[0])
		buf, err := sliceMem(mem, ctx.GPR[1], ctx.GPR[2])
		if err != nil {
			ctx.GPR[0] = k.fail("write", err)
			break
		}
		res, err := k.mgr.Write(pid, fid, buf)
		if err != nil {
			ctx.GPR[0] = k.fail("write", err)
			break
		}
		ctx.GPR[0] = uint32(res.Bytes)
		k.metrics.BytesWritten.Add(uint64(res.Bytes))
		if res.Blocked {
			k.metrics.TasksBlocked.Add(1)
			source = core.LeaveSource()
		}

	case SysRead:
		fid := int32(ctx.GPR[0])
		buf, err := sliceMem(mem, ctx.GPR[1], ctx.GPR[2])
		if err != nil {
			ctx.GPR[0] = k.fail("read", err)
			break
		}
		res, err := k.mgr.Read(pid, fid, buf)
		if err != nil {
			ctx.GPR[0] = k.fail("read", err)
			break
		}
		ctx.GPR[0] = uint32(res.Bytes)
		k.metrics.BytesRead.Add(uint64(res.Bytes))
		if res.Blocked {
			k.metrics.TasksBlocked.Add(1)
			source = core.LeaveSource()
		}

	case SysFork:
		child, err := k.mgr.Fork(pid)
		if err != nil {
			ctx.GPR[0] = k.fail("fork", err)
			break
		}
		ctx.GPR[0] = uint32(child)
		k.metrics.ProcessesCreated.Add(1)

	case SysExit:
		_ = k.mgr.Exit(pid)
		k.metrics.ProcessesExited.Add(1)
		source = core.LeaveSource()

	case SysExec:
		entry := ctx.GPR[0]
		if err := k.mgr.Exec(pid, entry); err != nil {
			ctx.GPR[0] = k.fail("exec", err)
			break
		}
		// Dispatch saves ctx into the caller's PCB, so load the fresh
		// frame here; otherwise the old one overwrites what Exec set.
		stackBytes := k.cfg.StackBytes
		if stackBytes == 0 {
			stackBytes = constants.DefaultStackBytes
		}
		*ctx = NewContext(entry, uint32(stackBytes))

	case SysKill:
		target := int32(ctx.GPR[0])
		if err := k.mgr.Signal(target); err != nil {
			ctx.GPR[0] = k.fail("kill", err)
			break
		}
		ctx.GPR[0] = 0
		k.metrics.ProcessesSignalled.Add(1)
		if target == pid {
			source = core.LeaveSource()
		}

	case SysNice:
		// Priority hinting is not implemented: the scheduler's level
		// placement is derived entirely from run history, so nice is a
		// documented no-op rather than an error.

	case SysPipe:
		buf, err := sliceMem(mem, ctx.GPR[0], 8)
		if err != nil {
			ctx.GPR[0] = k.fail("pipe", err)
			break
		}
		r, w, err := k.mgr.CreatePipe(pid)
		if err != nil {
			ctx.GPR[0] = k.fail("pipe", err)
			break
		}
		binary.LittleEndian.PutUint32(buf[0:4], uint32(r))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(w))
		ctx.GPR[0] = 0

	case SysClose:
		if err := k.mgr.Close(pid, int32(ctx.GPR[0])); err != nil {
			ctx.GPR[0] = k.fail("close", err)
			break
		}
		ctx.GPR[0] = 0
	}

	prev := pid
	next, nextPID := k.mgr.Dispatch(*ctx, source)
	if nextPID != prev {
		k.metrics.ContextSwitches.Add(1)
	}
	*ctx = next
}

// sliceMem bounds-checks a guest pointer+length pair against mem and
// returns the corresponding Go slice view.
func sliceMem(mem []byte, ptr, length uint32) ([]byte, error) {
	end := uint64(ptr) + uint64(length)
	if end > uint64(len(mem)) {
		return nil, NewError("mem", ErrCodeInvalidMemoryRange, "pointer+length out of range")
	}
	return mem[ptr:end], nil
}

// fail maps a core-level error onto the public error codes, logs it,
// and returns the -1 sentinel every syscall reports failure with in
// gpr[0].
func (k *Kernel) fail(op string, err error) uint32 {
	kerr := toKernelError(op, err)
	k.logger.Warn("syscall failed", "op", op, "err", kerr.Error())
	return ^uint32(0) // int32(-1)
}

func toKernelError(op string, err error) *Error {
	switch {
	case errors.Is(err, core.ErrInvalidDescriptor):
		return NewError(op, ErrCodeInvalidDescriptor, err.Error())
	case errors.Is(err, core.ErrUnsupportedOperation):
		return NewError(op, ErrCodeUnsupportedOperation, err.Error())
	case errors.Is(err, core.ErrPidNotFound):
		return NewError(op, ErrCodePidNotFound, err.Error())
	case errors.Is(err, idtable.ErrTableFull):
		return NewError(op, ErrCodeTableFull, err.Error())
	default:
		return WrapError(op, err)
	}
}
