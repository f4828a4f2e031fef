package armkernel

// FakePlatform is an in-memory Platform for tests and the bundled
// demo: each UART has its own input/output byte queue instead of
// talking to real PL011 registers.
type FakePlatform struct {
	uarts [4]fakeUART

	IRQEnabled bool
}

type fakeUART struct {
	rx []byte // bytes waiting to be Getc'd (simulated input)
	tx []byte // bytes Putc'd so far (simulated output)
}

// NewFakePlatform returns a FakePlatform with all four UARTs empty.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{}
}

func (f *FakePlatform) Putc(uart UARTID, b byte) {
	f.uarts[uart].tx = append(f.uarts[uart].tx, b)
}

func (f *FakePlatform) Getc(uart UARTID) byte {
	u := &f.uarts[uart]
	b := u.rx[0]
	u.rx = u.rx[1:]
	return b
}

func (f *FakePlatform) CanPutc(UARTID) bool { return true }

func (f *FakePlatform) CanGetc(uart UARTID) bool {
	return len(f.uarts[uart].rx) > 0
}

func (f *FakePlatform) EnableIRQ()  { f.IRQEnabled = true }
func (f *FakePlatform) DisableIRQ() { f.IRQEnabled = false }

// FeedInput queues bytes as though they arrived on uart's receive
// FIFO, for a test to then simulate the matching GIC UART IRQ.
func (f *FakePlatform) FeedInput(uart UARTID, data []byte) {
	f.uarts[uart].rx = append(f.uarts[uart].rx, data...)
}

// Output returns everything Put to uart so far.
func (f *FakePlatform) Output(uart UARTID) []byte {
	return append([]byte(nil), f.uarts[uart].tx...)
}

var _ Platform = (*FakePlatform)(nil)
