// Package lanes assigns graph lanes to commits streamed in display order.
//
// The engine keeps one slot per line of history that is still waiting for
// a commit. Each processed commit mutates the slots and yields a snapshot,
// so a row can be drawn later without replaying the whole history.
package lanes

// Commit is the part of a commit the engine needs.
type Commit struct {
	ID       string
	Parents  []string
	Boundary bool
}

// Engine is not safe for concurrent use; callers serialize Update.
type Engine struct {
	types []Type
	// next holds, per lane, the id of the commit the lane expects; "" means none.
	next   []string
	active int

	boundary bool
	node     Type
	nodeR    Type
	nodeL    Type
}

func (e *Engine) IsEmpty() bool { return len(e.types) == 0 }

func (e *Engine) Len() int { return len(e.types) }

func (e *Engine) ActiveLane() int { return e.active }

// Init resets the engine to a single branch lane expecting id.
func (e *Engine) Init(id string) {
	e.Clear()
	e.setBoundary(false)
	e.add(Branch, id, e.active)
}

func (e *Engine) Clear() {
	e.types = nil
	e.next = nil
	e.active = 0
	e.boundary = false
}

// Tracks reports whether some lane is waiting for id.
func (e *Engine) Tracks(id string) bool {
	return id != "" && e.findNext(id, 0) != -1
}

// Expected returns a copy of the ids each lane waits for.
func (e *Engine) Expected() []string {
	return append([]string(nil), e.next...)
}

// Snapshot returns a copy of the current lane types.
func (e *Engine) Snapshot() []Type {
	return append([]Type(nil), e.types...)
}

// Update processes the next commit of the stream and returns the lane
// snapshot for its row. Commits must be fed in display order.
func (e *Engine) Update(c Commit) []Type {
	if e.IsEmpty() {
		e.Init(c.ID)
	}

	fork, discontinuity := e.isFork(c.ID)
	merge := len(c.Parents) > 1
	initial := len(c.Parents) == 0

	if discontinuity {
		// relies on the boundary state of the previous row
		e.changeActiveLane(c.ID)
	}
	e.setBoundary(c.Boundary)

	if fork {
		e.setFork(c.ID)
	}
	if merge {
		e.setMerge(c.Parents)
	}
	if initial {
		e.setInitial()
	}

	snapshot := e.Snapshot()

	next := ""
	if !initial {
		next = c.Parents[0]
	}
	e.nextParent(next)

	if merge {
		e.afterMerge()
	}
	if fork {
		e.afterFork()
	}
	if e.isBranch() {
		e.afterBranch()
	}
	return snapshot
}

func (e *Engine) isFork(id string) (fork bool, discontinuity bool) {
	pos := e.findNext(id, 0)
	discontinuity = e.active != pos
	if pos == -1 {
		return false, discontinuity
	}
	return e.findNext(id, pos+1) != -1, discontinuity
}

func (e *Engine) isNode(t Type) bool {
	return t == e.node || t == e.nodeR || t == e.nodeL
}

func (e *Engine) setBoundary(b bool) {
	if b {
		e.node, e.nodeR, e.nodeL = BoundaryC, BoundaryR, BoundaryL
	} else {
		e.node, e.nodeR, e.nodeL = MergeFork, MergeForkR, MergeForkL
	}
	e.boundary = b
	if b && e.active < len(e.types) {
		e.types[e.active] = Boundary
	}
}

func (e *Engine) changeActiveLane(id string) {
	if e.active < len(e.types) {
		t := &e.types[e.active]
		if *t == Initial || t.IsBoundary() {
			*t = Empty
		} else {
			*t = NotActive
		}
	}
	idx := e.findNext(id, 0)
	if idx != -1 {
		e.types[idx] = Active
	} else {
		idx = e.add(Branch, id, e.active)
	}
	e.active = idx
}

func (e *Engine) setFork(id string) {
	rangeStart := e.findNext(id, 0)
	rangeEnd := rangeStart
	for idx := rangeStart; idx != -1; idx = e.findNext(id, idx+1) {
		rangeEnd = idx
		e.types[idx] = Tail
	}
	e.types[e.active] = e.node

	start := &e.types[rangeStart]
	end := &e.types[rangeEnd]
	if *start == e.node {
		*start = e.nodeL
	}
	if *end == e.node {
		*end = e.nodeR
	}
	if *start == Tail {
		*start = TailL
	}
	if *end == Tail {
		*end = TailR
	}
	for i := rangeStart + 1; i < rangeEnd; i++ {
		switch e.types[i] {
		case NotActive:
			e.types[i] = Cross
		case Empty:
			e.types[i] = CrossEmpty
		}
	}
}

// setMerge must run after setFork.
func (e *Engine) setMerge(parents []string) {
	if e.boundary {
		return
	}
	t := e.types[e.active]
	wasFork := t == e.node
	wasForkL := t == e.nodeL
	wasForkR := t == e.nodeR
	startJoinWasCross, endJoinWasCross := false, false

	e.types[e.active] = e.node

	rangeStart, rangeEnd := e.active, e.active
	for _, parent := range parents[1:] {
		idx := e.findNext(parent, 0)
		if idx == -1 {
			rangeEnd = e.add(Head, parent, rangeEnd+1)
			continue
		}
		if idx > rangeEnd {
			rangeEnd = idx
			endJoinWasCross = e.types[idx] == Cross
		}
		if idx < rangeStart {
			rangeStart = idx
			startJoinWasCross = e.types[idx] == Cross
		}
		e.types[idx] = Join
	}

	start := &e.types[rangeStart]
	end := &e.types[rangeEnd]
	if *start == e.node && !wasFork && !wasForkR {
		*start = e.nodeL
	}
	if *end == e.node && !wasFork && !wasForkL {
		*end = e.nodeR
	}
	if *start == Join && !startJoinWasCross {
		*start = JoinL
	}
	if *end == Join && !endJoinWasCross {
		*end = JoinR
	}
	if *start == Head {
		*start = HeadL
	}
	if *end == Head {
		*end = HeadR
	}
	for i := rangeStart + 1; i < rangeEnd; i++ {
		switch t := e.types[i]; {
		case t == NotActive:
			e.types[i] = Cross
		case t == Empty:
			e.types[i] = CrossEmpty
		case t == TailR || t == TailL:
			e.types[i] = Tail
		}
	}
}

func (e *Engine) setInitial() {
	t := e.types[e.active]
	if e.isNode(t) || t == Applied {
		return
	}
	if e.boundary {
		e.types[e.active] = Boundary
	} else {
		e.types[e.active] = Initial
	}
}

func (e *Engine) nextParent(id string) {
	if e.boundary {
		id = ""
	}
	e.next[e.active] = id
}

func (e *Engine) afterMerge() {
	if e.boundary {
		// reset by the next changeActiveLane
		return
	}
	for i, t := range e.types {
		switch {
		case t.IsHead() || t.IsJoin() || t == Cross:
			e.types[i] = NotActive
		case t == CrossEmpty:
			e.types[i] = Empty
		case e.isNode(t):
			e.types[i] = Active
		}
	}
}

func (e *Engine) afterFork() {
	for i, t := range e.types {
		switch {
		case t == Cross:
			e.types[i] = NotActive
		case t.IsTail() || t == CrossEmpty:
			e.types[i] = Empty
		}
		if !e.boundary && e.isNode(e.types[i]) {
			e.types[i] = Active
		}
	}
	for n := len(e.types); n > 0 && n-1 > e.active && e.types[n-1] == Empty; n-- {
		e.types = e.types[:n-1]
		e.next = e.next[:n-1]
	}
}

func (e *Engine) isBranch() bool {
	return e.active < len(e.types) && e.types[e.active] == Branch
}

func (e *Engine) afterBranch() {
	e.types[e.active] = Active
}

func (e *Engine) findNext(id string, pos int) int {
	for i := pos; i < len(e.next); i++ {
		if e.next[i] == id {
			return i
		}
	}
	return -1
}

func (e *Engine) findType(t Type, pos int) int {
	for i := pos; i < len(e.types); i++ {
		if e.types[i] == t {
			return i
		}
	}
	return -1
}

// add places a lane in the first empty slot at or after pos, appending
// a new slot when none is free.
func (e *Engine) add(t Type, next string, pos int) int {
	if pos < len(e.types) {
		if free := e.findType(Empty, pos); free != -1 {
			e.types[free] = t
			e.next[free] = next
			return free
		}
	}
	e.types = append(e.types, t)
	e.next = append(e.next, next)
	return len(e.types) - 1
}
