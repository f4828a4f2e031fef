package core

import (
	"testing"

	"github.com/hilevel/armkernel/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(&fakeDevice{}, &fakeDevice{}, 0x1000, nil)
}

func TestCreateAssignsIncreasingPIDs(t *testing.T) {
	m := newTestManager()
	p1, err := m.Create(0x1000)
	require.NoError(t, err)
	p2, err := m.Create(0x1000)
	require.NoError(t, err)
	assert.Greater(t, p2, p1)
}

func TestForkPreservesStackPointerDeltaAndZeroesChildReturn(t *testing.T) {
	m := newTestManager()
	parentPID, err := m.Create(0x1000)
	require.NoError(t, err)

	parent, _ := m.processes.Get(parentPID)
	parent.context.SP -= 64 // simulate the parent having pushed a frame
	parent.context.GPR[0] = 99

	childPID, err := m.Fork(parentPID)
	require.NoError(t, err)

	child, ok := m.processes.Get(childPID)
	require.True(t, ok)

	wantDelta := uint32(len(parent.stack)) - parent.context.SP
	gotDelta := uint32(len(child.stack)) - child.context.SP
	assert.Equal(t, wantDelta, gotDelta)
	assert.EqualValues(t, 0, child.context.GPR[0])
}

func TestForkSharesFileDescriptorsWithParent(t *testing.T) {
	m := newTestManager()
	parentPID, _ := m.Create(0x1000)
	childPID, err := m.Fork(parentPID)
	require.NoError(t, err)

	parent, _ := m.processes.Get(parentPID)
	child, _ := m.processes.Get(childPID)

	parentFD, _ := parent.fds.Get(constants.StdoutFileno)
	childFD, _ := child.fds.Get(constants.StdoutFileno)
	assert.Same(t, parentFD, childFD)
}

func TestExitRemovesProcessFromTable(t *testing.T) {
	m := newTestManager()
	pid, _ := m.Create(0x1000)

	require.NoError(t, m.Exit(pid))
	_, ok := m.processes.Get(pid)
	assert.False(t, ok)
}

func TestSignalUnknownPIDReturnsErrPidNotFound(t *testing.T) {
	m := newTestManager()
	err := m.Signal(999)
	assert.ErrorIs(t, err, ErrPidNotFound)
}

func TestCreatePipeInstallsBothEndsInCallerFDTable(t *testing.T) {
	m := newTestManager()
	pid, _ := m.Create(0x1000)

	readFid, writeFid, err := m.CreatePipe(pid)
	require.NoError(t, err)
	assert.NotEqual(t, readFid, writeFid)

	p, _ := m.processes.Get(pid)
	_, ok := p.fds.Get(readFid)
	assert.True(t, ok)
	_, ok = p.fds.Get(writeFid)
	assert.True(t, ok)
}

func TestWriteThenReadRoundTripsThroughManager(t *testing.T) {
	m := newTestManager()
	pid, _ := m.Create(0x1000)
	readFid, writeFid, err := m.CreatePipe(pid)
	require.NoError(t, err)

	res, err := m.Write(pid, writeFid, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bytes)

	dst := make([]byte, 2)
	res, err = m.Read(pid, readFid, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bytes)
	assert.Equal(t, "hi", string(dst))
}

func TestReadOnInvalidDescriptorReturnsError(t *testing.T) {
	m := newTestManager()
	pid, _ := m.Create(0x1000)

	_, err := m.Read(pid, 999, make([]byte, 1))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestCloseRemovesDescriptorAndMarksPipeEndClosed(t *testing.T) {
	m := newTestManager()
	pid, _ := m.Create(0x1000)
	readFid, writeFid, _ := m.CreatePipe(pid)

	require.NoError(t, m.Close(pid, writeFid))
	_, err := m.Read(pid, readFid, make([]byte, 1))
	require.NoError(t, err)

	p, _ := m.processes.Get(pid)
	_, ok := p.fds.Get(writeFid)
	assert.False(t, ok)
}
