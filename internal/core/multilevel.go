package core

import "github.com/hilevel/armkernel/internal/constants"

// level is one priority queue in the multi-level feedback queue: a
// FIFO of ready processes and the quantum (in timer ticks) a process
// is allowed to run for once dispatched from it.
type level struct {
	quantum int
	queue   []*pcb
}

func (lv *level) pushBack(p *pcb) { lv.queue = append(lv.queue, p) }

func (lv *level) popFront() (*pcb, bool) {
	if len(lv.queue) == 0 {
		return nil, false
	}
	p := lv.queue[0]
	lv.queue = lv.queue[1:]
	return p, true
}

// MultiLevelQueue is the set of priority levels the scheduler picks
// the next process from: index 0 is the highest-priority (shortest
// quantum) level, and higher indices are progressively lower
// priority. Unlike the reference implementation this is ported from,
// levels are linked by plain index into a slice rather than an
// Rc/Weak chain — Go's garbage collector has no trouble with a
// doubly-navigable structure, so there is no ownership cycle to break.
type multiLevelQueue struct {
	levels []*level
}

// newMultiLevelQueue builds the default four-level queue with quanta
// taken from internal/constants.
func newMultiLevelQueue() *multiLevelQueue {
	levels := make([]*level, len(constants.LevelQuanta))
	for i, q := range constants.LevelQuanta {
		levels[i] = &level{quantum: q}
	}
	return &multiLevelQueue{levels: levels}
}

func (q *multiLevelQueue) levelCount() int { return len(q.levels) }

func (q *multiLevelQueue) quantum(idx int) int { return q.levels[idx].quantum }

// pushFront inserts p into the top (highest-priority) level — used
// when a process first becomes ready. It joins the back of that
// level's queue: newcomers at the same level are ordered FIFO, so
// three processes readied in order P, Q, R are popped in that same
// order, not LIFO.
func (q *multiLevelQueue) pushFront(p *pcb) { q.levels[0].pushBack(p) }

// pushAtLevel appends p to the back of the given level, clamped into
// range so callers moving a process below the bottom level or above
// the top one land at the nearest valid level instead of panicking.
func (q *multiLevelQueue) pushAtLevel(idx int, p *pcb) {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(q.levels) {
		idx = len(q.levels) - 1
	}
	q.levels[idx].pushBack(p)
}

// remove drops p from whichever level currently holds it. Reports
// whether p was found.
func (q *multiLevelQueue) remove(p *pcb) bool {
	for _, lv := range q.levels {
		for i, e := range lv.queue {
			if e == p {
				lv.queue = append(lv.queue[:i], lv.queue[i+1:]...)
				return true
			}
		}
	}
	return false
}

// popFirstMatching scans levels top-down, and within a level
// front-to-back, for the first process satisfying pred, and removes
// it. Entries skipped along the way stay where they are, so the
// relative order of non-matching entries is preserved; a blocked
// process at the front of a queue is passed over rather than
// wedging everything behind it.
func (q *multiLevelQueue) popFirstMatching(pred func(*pcb) bool) (*pcb, int, bool) {
	for idx, lv := range q.levels {
		for i, p := range lv.queue {
			if pred(p) {
				lv.queue = append(lv.queue[:i], lv.queue[i+1:]...)
				return p, idx, true
			}
		}
	}
	return nil, 0, false
}

// boost drains every level below the top into the top level's back,
// preserving each level's internal order and processing lower levels
// after higher ones so the overall back-to-front order favors
// processes that were closer to running already.
func (q *multiLevelQueue) boost() {
	top := q.levels[0]
	for _, lv := range q.levels[1:] {
		for _, p := range lv.queue {
			top.pushBack(p)
		}
		lv.queue = nil
	}
}

// isEmpty reports whether every level is empty.
func (q *multiLevelQueue) isEmpty() bool {
	for _, lv := range q.levels {
		if len(lv.queue) > 0 {
			return false
		}
	}
	return true
}
