// Package stackpool provides pooled process stack buffers to avoid
// hot-path allocations on process create/fork.
//
// Uses a single size bucket (the size passed to Configure, 0x1000 until
// then) since every process stack is allocated at the same fixed size;
// a process that
// requests a non-default size falls back to a plain make and is never
// pooled.
//
// Uses *[]byte pattern to avoid sync.Pool interface allocation overhead.
package stackpool

import "sync"

var defaultPool = sync.Pool{
	New: func() any { b := make([]byte, stackSize); return &b },
}

// stackSize is set once via Configure; it defaults to 0x1000 (the
// original kernel's DEFAULT_STACK_BYTES) until Configure is called.
var stackSize = 0x1000

// Configure sets the pooled stack size. Must be called before any
// Get/Put if the kernel is built with a non-default stack size;
// changing it after buffers are in flight only affects future Gets.
func Configure(size int) {
	stackSize = size
	defaultPool = sync.Pool{
		New: func() any { b := make([]byte, stackSize); return &b },
	}
}

// Get returns a zeroed buffer of exactly size bytes. When size matches
// the configured stack size the buffer comes from the pool; otherwise
// it is allocated fresh and Put on it is a no-op.
func Get(size int) []byte {
	if size != stackSize {
		return make([]byte, size)
	}
	buf := *(defaultPool.Get().(*[]byte))
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Put returns a buffer to the pool. Buffers whose capacity doesn't
// match the configured stack size are dropped rather than pooled.
func Put(buf []byte) {
	if cap(buf) != stackSize {
		return
	}
	buf = buf[:cap(buf)]
	defaultPool.Put(&buf)
}
