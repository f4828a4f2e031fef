package armkernel

// Platform is the kernel core's boundary onto the bare-metal world: the
// UART character devices, the GIC, and the cycle timer. The assembly
// reset/irq/svc trampolines and the real register pokes live outside
// this module; Platform is what lets the scheduler, process manager
// and I/O subsystem stay pure Go and testable against FakePlatform.
type Platform interface {
	// Putc writes one byte to the given UART, blocking the caller is
	// never acceptable here: the kernel only calls Putc after CanPutc
	// reports the transmit FIFO has room.
	Putc(uart UARTID, b byte)

	// Getc reads one byte from the given UART. Only called after
	// CanGetc reports a byte is available.
	Getc(uart UARTID) byte

	// CanPutc reports whether uart's transmit FIFO has room for
	// another byte.
	CanPutc(uart UARTID) bool

	// CanGetc reports whether uart's receive FIFO holds an unread
	// byte.
	CanGetc(uart UARTID) bool

	// EnableIRQ unmasks interrupts at the core (the CPSR I-bit).
	EnableIRQ()

	// DisableIRQ masks interrupts at the core.
	DisableIRQ()
}

// UARTID identifies one of the kernel's four UART devices.
type UARTID int

const (
	UART0 UARTID = iota
	UART1
	UART2
	UART3
)

// GICSourceID identifies the peripheral that raised an IRQ, as read
// from the GIC's interrupt acknowledge register.
type GICSourceID uint32

const (
	// GICSourceTimer is the SP804 timer's interrupt ID on this board.
	GICSourceTimer GICSourceID = 36
	// GICSourceUART0 is UART0's interrupt ID on this board.
	GICSourceUART0 GICSourceID = 44
	// GICSourceUART1 is UART1's interrupt ID on this board.
	GICSourceUART1 GICSourceID = 45
)
