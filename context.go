package armkernel

import "github.com/hilevel/armkernel/internal/core"

// Context is the saved register frame for a process. The type lives
// in internal/core (which the scheduler and process manager operate
// on directly); this is a transparent alias so callers outside the
// module see it as armkernel.Context.
type Context = core.Context

// CPSRUser is the CPSR mode bits a freshly created process starts in:
// USR mode, IRQs enabled.
const CPSRUser = core.CPSRUser

// NewContext builds the initial register frame for a process whose
// entry point is pc and whose stack pointer is sp.
func NewContext(pc, sp uint32) Context {
	return core.NewContext(pc, sp)
}
