// Package constants collects the tunable defaults shared across the
// kernel core: scheduler quanta, stack sizes, and device buffer limits.
package constants

// Scheduler level quanta, in ticks, from the highest-priority level
// down. BoostQuantum is the number of Timer dispatches between
// priority boosts that drain every level back into the top one.
const (
	Level0Quantum = 2
	Level1Quantum = 4
	Level2Quantum = 8
	Level3Quantum = 16

	BoostQuantum = 50
)

// LevelQuanta lists the default per-level quanta top to bottom.
var LevelQuanta = []int{Level0Quantum, Level1Quantum, Level2Quantum, Level3Quantum}

// DefaultStackBytes is the per-process stack allocation.
const DefaultStackBytes = 0x1000

// IdlePID is the reserved pid of the idle process, which owns no stack
// and is never present in the process table.
const IdlePID = -1

// File descriptor numbers wired up by default for every new process.
const (
	StdinFileno  = 0
	StdoutFileno = 1
	StderrFileno = 2
	Uart1Fileno  = 3
)

// UARTBufferBytes bounds the UART receive ring buffer.
const UARTBufferBytes = 4096

// PipeBufferBytes bounds an unnamed pipe's internal buffer.
const PipeBufferBytes = 4096

// TimerReloadValue is the SP804 Timer1Load value for a ~regular tick
// rate. Programming the timer is the platform's job: KernelConfig has
// no timer setting and nothing in this module reads this constant.
const TimerReloadValue = 0x00100000
