package core

import "github.com/hilevel/armkernel/internal/constants"

// pipe is the shared buffer behind an unnamed pipe's two descriptor
// ends. Unlike the original Rust implementation (which gave each end a
// Weak back-reference to the pipe to break an Rc ownership cycle), the
// pipe and its two ends hold plain pointers to each other here: Go's
// garbage collector has no trouble with the resulting reference cycle,
// so the only thing that needs explicit tracking is which end has
// been closed, not whether it still exists.
type pipe struct {
	buffer      []byte
	readEnd     *pipeReadEnd
	writeEnd    *pipeWriteEnd
	readClosed  bool
	writeClosed bool
	notifying   bool // re-entrancy guard, see notifyReaders/notifyWriters
}

func newPipe() (*pipeReadEnd, *pipeWriteEnd) {
	p := &pipe{}
	p.readEnd = &pipeReadEnd{pipe: p}
	p.writeEnd = &pipeWriteEnd{pipe: p}
	return p.readEnd, p.writeEnd
}

// notifyReaders drains pending reads on the read end after the buffer
// gains data. Guarded against re-entrancy: a read that frees buffer
// space can trigger notifyWriters, which (once it writes) would
// otherwise recurse back into notifyReaders before the outer call
// finishes.
func (p *pipe) notifyReaders() {
	if p.notifying {
		return
	}
	p.notifying = true
	defer func() { p.notifying = false }()
	p.readEnd.drainReads(p.consumeBuffered)
}

func (p *pipe) notifyWriters() {
	if p.notifying {
		return
	}
	p.notifying = true
	defer func() { p.notifying = false }()
	p.writeEnd.drainWrites(p.appendBuffered)
}

func (p *pipe) consumeBuffered(dst []byte) (int, error) {
	n := copy(dst, p.buffer)
	p.buffer = p.buffer[n:]
	if n > 0 {
		p.notifyWriters()
	}
	return n, nil
}

func (p *pipe) appendBuffered(src []byte) (int, error) {
	room := constants.PipeBufferBytes - len(p.buffer)
	if room <= 0 {
		return 0, nil
	}
	n := len(src)
	if n > room {
		n = room
	}
	p.buffer = append(p.buffer, src[:n]...)
	if n > 0 {
		p.notifyReaders()
	}
	return n, nil
}

// pipeReadEnd is the read-only descriptor handed to the process that
// created the pipe (or the end of it inherited across a fork).
type pipeReadEnd struct {
	descriptorBase
	pipe *pipe
}

func (r *pipeReadEnd) Read(dst []byte) (IOResult, error) {
	n, _ := r.pipe.consumeBuffered(dst)
	if n == 0 && r.pipe.writeClosed {
		return IOResult{Bytes: 0, Blocked: false}, nil // EOF: no data, no writer left
	}
	return IOResult{Bytes: n, Blocked: n < len(dst)}, nil
}

func (r *pipeReadEnd) Write([]byte) (IOResult, error) {
	return IOResult{}, ErrUnsupportedOperation
}

func (r *pipeReadEnd) close() {
	r.pipe.readClosed = true
}

// pipeWriteEnd is the write-only descriptor handed to the process that
// created the pipe.
type pipeWriteEnd struct {
	descriptorBase
	pipe *pipe
}

func (w *pipeWriteEnd) Write(src []byte) (IOResult, error) {
	if w.pipe.readClosed {
		return IOResult{}, ErrUnsupportedOperation
	}
	n, _ := w.pipe.appendBuffered(src)
	return IOResult{Bytes: n, Blocked: n < len(src)}, nil
}

func (w *pipeWriteEnd) Read([]byte) (IOResult, error) {
	return IOResult{}, ErrUnsupportedOperation
}

func (w *pipeWriteEnd) close() {
	w.pipe.writeClosed = true
}
