package core

import (
	"github.com/hilevel/armkernel/internal/constants"
	"github.com/hilevel/armkernel/internal/idtable"
)

// ioManager owns the kernel's canonical UART descriptors and hands out
// a freshly populated file-descriptor table to each new process. The
// distilled spec's bindings table implies this object without naming
// it; the original kernel's io::IoManager is this module's namesake.
type ioManager struct {
	uart0ReadOnly  *uartDescriptor
	uart0WriteOnly *uartDescriptor
	uart1ReadWrite *uartDescriptor
}

func newIOManager(uart0, uart1 UARTDevice) *ioManager {
	return &ioManager{
		uart0ReadOnly:  newUARTDescriptor(uart0, true, false),
		uart0WriteOnly: newUARTDescriptor(uart0, false, true),
		uart1ReadWrite: newUARTDescriptor(uart1, true, true),
	}
}

// defaultFiles builds the fid table every new process starts with:
// stdin/stdout/stderr aliased onto UART0, and fid 3 bound to UART1.
func (m *ioManager) defaultFiles() *idtable.Table[int32, FileDescriptor] {
	t := idtable.New[int32, FileDescriptor]()
	t.Set(constants.StdinFileno, m.uart0ReadOnly)
	t.Set(constants.StdoutFileno, m.uart0WriteOnly)
	t.Set(constants.StderrFileno, m.uart0WriteOnly)
	t.Set(constants.Uart1Fileno, m.uart1ReadWrite)
	return t
}

func (m *ioManager) onUART0Interrupt() { m.uart0ReadOnly.bufferInput() }
func (m *ioManager) onUART1Interrupt() { m.uart1ReadWrite.bufferInput() }
