// Command hilevel-console drives the kernel core against the real
// terminal over UART0: it puts stdin in raw mode, feeds every byte
// typed to the kernel as a simulated UART0 receive interrupt, and
// echoes whatever the running process writes back to stdout. It is a
// wiring demo, not a CPU emulator — there is no ARM core here to fetch
// and execute instructions, so it drives the kernel by hand: Reset
// once at startup, then a Timer IRQ on a fixed schedule and a UART0
// IRQ for each byte typed.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/hilevel/armkernel"
	"github.com/hilevel/armkernel/internal/logging"
)

func main() {
	var (
		verbose   = flag.Bool("v", false, "Verbose kernel logging")
		tickEvery = flag.Duration("tick", 20*time.Millisecond, "Timer IRQ interval")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	platform := newTermPlatform()
	defer platform.restore()

	k := armkernel.NewKernel(platform, armkernel.KernelConfig{
		StackBytes: 0x1000,
		MainEntry:  0,
		Logger:     logger,
	})

	var ctx armkernel.Context
	k.HandleReset(&ctx)
	logger.Info("kernel reset", "pc", ctx.PC)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stdinCh := make(chan byte, 256)
	go platform.pumpStdin(stdinCh)

	ticker := time.NewTicker(*tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down")
			return

		case b, ok := <-stdinCh:
			if !ok {
				return
			}
			platform.feedUART0(b)
			k.HandleIRQ(&ctx, armkernel.GICSourceUART0)

		case <-ticker.C:
			k.HandleIRQ(&ctx, armkernel.GICSourceTimer)
		}
	}
}

// termPlatform implements armkernel.Platform over the process's real
// stdin/stdout on UART0; UART1-3 are unconnected (output to them is
// discarded and they never report input), since this demo has no
// second serial line to attach.
type termPlatform struct {
	savedState *term.State
	rawEnabled bool

	uart0RX chan byte
	irqOn   bool
}

func newTermPlatform() *termPlatform {
	p := &termPlatform{uart0RX: make(chan byte, 4096)}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if state, err := term.MakeRaw(int(os.Stdin.Fd())); err == nil {
			p.savedState = state
			p.rawEnabled = true
		}
	}
	return p
}

func (p *termPlatform) restore() {
	if p.rawEnabled {
		term.Restore(int(os.Stdin.Fd()), p.savedState)
	}
}

// pumpStdin copies raw bytes from the terminal into out until stdin
// closes; run in its own goroutine since os.Stdin.Read blocks.
func (p *termPlatform) pumpStdin(out chan<- byte) {
	defer close(out)
	buf := make([]byte, 64)
	for {
		n, err := os.Stdin.Read(buf)
		for i := 0; i < n; i++ {
			out <- buf[i]
		}
		if err != nil {
			return
		}
	}
}

func (p *termPlatform) feedUART0(b byte) {
	select {
	case p.uart0RX <- b:
	default:
		// RX FIFO overrun: drop the byte, same as real PL011 hardware
		// under sustained overflow.
	}
}

func (p *termPlatform) Putc(uart armkernel.UARTID, b byte) {
	if uart != armkernel.UART0 {
		return
	}
	fmt.Fprintf(os.Stdout, "%c", b)
}

func (p *termPlatform) Getc(uart armkernel.UARTID) byte {
	if uart != armkernel.UART0 {
		return 0
	}
	select {
	case b := <-p.uart0RX:
		return b
	default:
		return 0
	}
}

func (p *termPlatform) CanPutc(armkernel.UARTID) bool { return true }

func (p *termPlatform) CanGetc(uart armkernel.UARTID) bool {
	if uart != armkernel.UART0 {
		return false
	}
	return len(p.uart0RX) > 0
}

func (p *termPlatform) EnableIRQ()  { p.irqOn = true }
func (p *termPlatform) DisableIRQ() { p.irqOn = false }

var _ armkernel.Platform = (*termPlatform)(nil)
