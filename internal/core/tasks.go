package core

import "github.com/hilevel/armkernel/internal/wref"

// readTask and writeTask track a single in-flight read(2)/write(2)
// call that could not complete immediately: the caller supplied a
// buffer, and the task keeps retrying against the device each time
// its descriptor's state changes (a byte arrives, a peer writes) until
// the buffer is full or the owning process goes away.
//
// Each holds a weak reference to its process rather than a strong
// one: if the process exits or is killed while the task is still
// pending, the next attempt's Upgrade fails and the task quietly
// finishes instead of writing into a freed stack.
type readTask struct {
	proc      wref.Weak[pcb]
	dest      []byte
	completed int
	err       error
	fired     bool
	onComplete func(n int, err error)
}

func newReadTask(proc wref.Weak[pcb], dest []byte, onComplete func(int, error)) *readTask {
	return &readTask{proc: proc, dest: dest, onComplete: onComplete}
}

// attempt calls ioFn against the remaining unfilled portion of dest.
// Returns true once the task is finished (buffer full, an error
// occurred, or the owning process is gone) — the caller should then
// drop the task from its pending queue.
func (t *readTask) attempt(ioFn func([]byte) (int, error)) bool {
	if t.fired {
		return true
	}
	if _, ok := t.proc.Upgrade(); !ok {
		t.fire()
		return true
	}
	remaining := t.dest[t.completed:]
	if len(remaining) == 0 {
		t.fire()
		return true
	}
	n, err := ioFn(remaining)
	if err != nil {
		t.err = err
		t.fire()
		return true
	}
	t.completed += n
	if n == 0 {
		return false
	}
	if t.completed >= len(t.dest) {
		t.fire()
		return true
	}
	return false
}

func (t *readTask) fire() {
	if t.fired {
		return
	}
	t.fired = true
	if t.onComplete != nil {
		t.onComplete(t.completed, t.err)
	}
}

type writeTask struct {
	proc       wref.Weak[pcb]
	src        []byte
	completed  int
	err        error
	fired      bool
	onComplete func(n int, err error)
}

func newWriteTask(proc wref.Weak[pcb], src []byte, onComplete func(int, error)) *writeTask {
	return &writeTask{proc: proc, src: src, onComplete: onComplete}
}

func (t *writeTask) attempt(ioFn func([]byte) (int, error)) bool {
	if t.fired {
		return true
	}
	if _, ok := t.proc.Upgrade(); !ok {
		t.fire()
		return true
	}
	remaining := t.src[t.completed:]
	if len(remaining) == 0 {
		t.fire()
		return true
	}
	n, err := ioFn(remaining)
	if err != nil {
		t.err = err
		t.fire()
		return true
	}
	t.completed += n
	if n == 0 {
		return false
	}
	if t.completed >= len(t.src) {
		t.fire()
		return true
	}
	return false
}

func (t *writeTask) fire() {
	if t.fired {
		return
	}
	t.fired = true
	if t.onComplete != nil {
		t.onComplete(t.completed, t.err)
	}
}
