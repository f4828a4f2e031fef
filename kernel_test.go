package armkernel

import (
	"encoding/binary"
	"testing"

	"github.com/hilevel/armkernel/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKernel() (*Kernel, *FakePlatform) {
	fp := NewFakePlatform()
	k := NewKernel(fp, KernelConfig{StackBytes: 0x1000, MainEntry: 0x8000})
	return k, fp
}

func TestResetStartsInitProcessAndEnablesIRQ(t *testing.T) {
	k, fp := newTestKernel()
	var ctx Context

	k.HandleReset(&ctx)

	assert.Equal(t, uint32(0x8000), ctx.PC)
	assert.True(t, fp.IRQEnabled)
	assert.EqualValues(t, 1, k.Metrics().ResetCount.Load())
}

func TestYieldSwitchesBetweenTwoReadyProcesses(t *testing.T) {
	k, _ := newTestKernel()
	var ctx Context
	k.HandleReset(&ctx)

	// Fork once so two processes are ready; the parent is current.
	ctx.GPR[0] = 0
	k.HandleSVC(&ctx, SysFork, nil)
	childPID := ctx.GPR[0]
	require.NotZero(t, childPID)

	// A Yield from the parent should hand the CPU to the child, whose
	// saved context still carries the fork()-returns-0 result it got
	// when it was created.
	k.HandleSVC(&ctx, SysYield, nil)
	assert.EqualValues(t, 0, ctx.GPR[0])
}

func TestBlockedReadCompletesAfterUARTInterrupt(t *testing.T) {
	k, fp := newTestKernel()
	var ctx Context
	k.HandleReset(&ctx)

	mem := make([]byte, 64)
	ctx.GPR[0] = 0 // stdin fid
	ctx.GPR[1] = 0 // ptr into mem
	ctx.GPR[2] = 4 // want 4 bytes, none buffered yet

	k.HandleSVC(&ctx, SysRead, mem)
	assert.EqualValues(t, 0, ctx.GPR[0], "no bytes buffered yet: read blocks with 0 so far")

	fp.FeedInput(UART0, []byte("abcd"))
	k.HandleIRQ(&ctx, GICSourceUART0)

	assert.Equal(t, []byte("abcd"), mem[:4])
}

func TestBlockedReadCompletesAfterUART1Interrupt(t *testing.T) {
	k, fp := newTestKernel()
	var ctx Context
	k.HandleReset(&ctx)

	mem := make([]byte, 64)
	ctx.GPR[0] = constants.Uart1Fileno
	ctx.GPR[1] = 0
	ctx.GPR[2] = 3 // want 3 bytes, none buffered yet

	k.HandleSVC(&ctx, SysRead, mem)
	assert.EqualValues(t, 0, ctx.GPR[0], "no bytes buffered yet: read blocks with 0 so far")

	fp.FeedInput(UART1, []byte("xyz"))
	k.HandleIRQ(&ctx, GICSourceUART1)

	assert.Equal(t, []byte("xyz"), mem[:3])
}

func TestPipeWriteThenReadRoundTrips(t *testing.T) {
	k, _ := newTestKernel()
	var ctx Context
	k.HandleReset(&ctx)

	mem := make([]byte, 64)
	ctx.GPR[0] = 0 // ptr to the two-u32 [read_fid, write_fid] output
	k.HandleSVC(&ctx, SysPipe, mem)
	assert.EqualValues(t, 0, ctx.GPR[0])
	readFid := binary.LittleEndian.Uint32(mem[0:4])
	writeFid := binary.LittleEndian.Uint32(mem[4:8])

	copy(mem, "hello")
	ctx.GPR[0] = writeFid
	ctx.GPR[1] = 0
	ctx.GPR[2] = 5
	k.HandleSVC(&ctx, SysWrite, mem)
	assert.EqualValues(t, 5, ctx.GPR[0])

	out := make([]byte, 64)
	ctx.GPR[0] = readFid
	ctx.GPR[1] = 0
	ctx.GPR[2] = 5
	k.HandleSVC(&ctx, SysRead, out)
	assert.EqualValues(t, 5, ctx.GPR[0])
	assert.Equal(t, "hello", string(out[:5]))
}

func TestKillRemovesTargetFromScheduling(t *testing.T) {
	k, _ := newTestKernel()
	var ctx Context
	k.HandleReset(&ctx)

	k.HandleSVC(&ctx, SysFork, nil)
	childPID := ctx.GPR[0]

	ctx.GPR[0] = childPID
	k.HandleSVC(&ctx, SysKill, nil)
	assert.EqualValues(t, 0, ctx.GPR[0])
	assert.EqualValues(t, 1, k.Metrics().ProcessesSignalled.Load())

	for i := 0; i < 20; i++ {
		k.HandleIRQ(&ctx, GICSourceTimer)
		assert.NotEqualValues(t, childPID, k.mgr.CurrentPID())
	}
}

func TestBoostsMetricIncrementsAfterEnoughTimerTicks(t *testing.T) {
	k, _ := newTestKernel()
	var ctx Context
	k.HandleReset(&ctx)

	for i := 0; i < constants.BoostQuantum; i++ {
		k.HandleIRQ(&ctx, GICSourceTimer)
	}

	assert.EqualValues(t, 1, k.Metrics().Boosts.Load())
}

func TestExitLeavesOnlyRemainingProcessRunnable(t *testing.T) {
	k, _ := newTestKernel()
	var ctx Context
	k.HandleReset(&ctx)

	k.HandleSVC(&ctx, SysFork, nil)
	childPID := ctx.GPR[0]

	k.HandleSVC(&ctx, SysExit, nil)
	assert.EqualValues(t, 1, k.Metrics().ProcessesExited.Load())
	assert.EqualValues(t, childPID, k.mgr.CurrentPID())
}
