package core

import "github.com/hilevel/armkernel/internal/constants"

// UARTDevice is the minimal per-UART hook the core needs from the
// platform: push/pull one byte, and check whether doing so would
// block. The root package's Platform interface (keyed by UARTID) is
// adapted down to one UARTDevice per UART at kernel construction, so
// this package never depends on the root package.
type UARTDevice interface {
	Putc(b byte)
	Getc() byte
	CanPutc() bool
	CanGetc() bool
}

// uartDescriptor is a character-device FileDescriptor backed by a
// UARTDevice, buffering received bytes in a ring until a process
// reads them. read and/or write may be disabled (e.g. stdin is
// read-only, stdout is write-only) to match spec §4.5's bindings.
type uartDescriptor struct {
	descriptorBase
	device     UARTDevice
	canRead    bool
	canWrite   bool
	readBuffer []byte // ring buffer of bytes received but not yet consumed
}

func newUARTDescriptor(device UARTDevice, canRead, canWrite bool) *uartDescriptor {
	if !canRead && !canWrite {
		panic("uart descriptor must support at least one direction")
	}
	return &uartDescriptor{device: device, canRead: canRead, canWrite: canWrite}
}

// bufferInput is called from the IRQ path when the platform reports a
// byte is available on this UART; it appends to the ring (dropping
// the oldest byte if full) and gives pending reads a chance to drain.
func (u *uartDescriptor) bufferInput() {
	for u.device.CanGetc() {
		b := u.device.Getc()
		if len(u.readBuffer) >= constants.UARTBufferBytes {
			u.readBuffer = u.readBuffer[1:]
		}
		u.readBuffer = append(u.readBuffer, b)
	}
	u.onStateChange()
}

func (u *uartDescriptor) Read(dst []byte) (IOResult, error) {
	if !u.canRead {
		return IOResult{}, ErrUnsupportedOperation
	}
	n, err := u.consumeBuffered(dst)
	if err != nil {
		return IOResult{}, err
	}
	return IOResult{Bytes: n, Blocked: n < len(dst)}, nil
}

func (u *uartDescriptor) consumeBuffered(dst []byte) (int, error) {
	n := copy(dst, u.readBuffer)
	u.readBuffer = u.readBuffer[n:]
	return n, nil
}

func (u *uartDescriptor) Write(src []byte) (IOResult, error) {
	if !u.canWrite {
		return IOResult{}, ErrUnsupportedOperation
	}
	n := 0
	for n < len(src) && u.device.CanPutc() {
		u.device.Putc(src[n])
		n++
	}
	return IOResult{Bytes: n, Blocked: n < len(src)}, nil
}

func (u *uartDescriptor) onStateChange() {
	u.drainReads(u.consumeBuffered)
	u.drainWrites(func(src []byte) (int, error) {
		n := 0
		for n < len(src) && u.device.CanPutc() {
			u.device.Putc(src[n])
			n++
		}
		return n, nil
	})
}
