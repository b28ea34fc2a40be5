package async

import (
	"container/heap"
	"time"

	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// timerEntry is one pending setTimeout/setInterval callback, ordered by
// due time in the loop's macrotask heap.
type timerEntry struct {
	id       int
	due      time.Time
	interval time.Duration // zero for a one-shot timeout
	fn       func()
	canceled bool
	index    int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].id < h[j].id
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Loop is the single-threaded event loop driving microtasks (Promise
// reactions) and macrotasks (timers), matching spec §4.5/§5: every
// microtask queued during a macrotask drains fully before the next
// macrotask runs.
type Loop struct {
	PromiseProto *runtime.Object

	microtasks []func()
	timers     timerHeap
	nextID     int
	byID       map[int]*timerEntry

	unhandled map[*runtime.Object]*promiseState

	// RejectionHandler, if set, is invoked (after a full idle drain) for
	// every promise that settled rejected and never had a rejection
	// handler attached — the engine's equivalent of Node's
	// unhandledRejection event.
	RejectionHandler func(reason runtime.Value)
}

// NewLoop creates an empty event loop. promiseProto backs Promise.resolve
// when wrapping a plain value (ResolveValue) and is installed by
// internal/builtins alongside the rest of the prototype chain.
func NewLoop(promiseProto *runtime.Object) *Loop {
	return &Loop{
		PromiseProto: promiseProto,
		byID:         make(map[int]*timerEntry),
		unhandled:    make(map[*runtime.Object]*promiseState),
	}
}

// EnqueueMicrotask appends fn to the microtask queue. This is the method
// value wired into evaluator.Evaluator.Scheduler (an interface satisfied
// structurally, so internal/evaluator never imports internal/async).
func (lo *Loop) EnqueueMicrotask(fn func()) {
	lo.microtasks = append(lo.microtasks, fn)
}

// drainMicrotasks runs every queued microtask to completion, including
// ones newly enqueued by a microtask that already ran (spec §4.5: "all
// queued microtasks run, including ones they enqueue, before the next
// macrotask").
func (lo *Loop) drainMicrotasks() {
	for len(lo.microtasks) > 0 {
		fn := lo.microtasks[0]
		lo.microtasks = lo.microtasks[1:]
		fn()
	}
}

// SetTimeout schedules fn to run once after delay, returning a timer id
// for ClearTimer.
func (lo *Loop) SetTimeout(delay time.Duration, fn func()) int {
	return lo.schedule(delay, 0, fn)
}

// SetInterval schedules fn to run repeatedly every interval, returning a
// timer id for ClearTimer.
func (lo *Loop) SetInterval(interval time.Duration, fn func()) int {
	return lo.schedule(interval, interval, fn)
}

func (lo *Loop) schedule(delay, interval time.Duration, fn func()) int {
	lo.nextID++
	e := &timerEntry{
		id:       lo.nextID,
		due:      timeNow().Add(delay),
		interval: interval,
		fn:       fn,
	}
	lo.byID[e.id] = e
	heap.Push(&lo.timers, e)
	return e.id
}

// ClearTimer cancels a pending timeout or interval by id. Canceling an
// already-fired one-shot timer or an unknown id is a silent no-op,
// matching clearTimeout/clearInterval's documented tolerance.
func (lo *Loop) ClearTimer(id int) {
	if e, ok := lo.byID[id]; ok {
		e.canceled = true
		delete(lo.byID, id)
	}
}

// trackUnhandled records a just-rejected promise as a rejection-tracking
// candidate; untrackUnhandled removes it once a handler is attached.
// RunUntilIdle reports whatever remains once both queues are empty.
func (lo *Loop) trackUnhandled(p *runtime.Object, st *promiseState) {
	lo.unhandled[p] = st
}

func (lo *Loop) untrackUnhandled(p *runtime.Object) {
	delete(lo.unhandled, p)
}

// RunUntilIdle drains microtasks, then repeatedly pops and fires due
// timers (sleeping in real wall-clock time until the next one is due),
// draining microtasks after each, until no timers remain. Returns once
// the loop is fully idle: no pending microtasks, no pending timers.
func (lo *Loop) RunUntilIdle() {
	lo.drainMicrotasks()
	for len(lo.timers) > 0 {
		next := lo.timers[0]
		if wait := time.Until(next.due); wait > 0 {
			time.Sleep(wait)
		}
		heap.Pop(&lo.timers)
		if next.interval == 0 {
			delete(lo.byID, next.id)
		}
		if !next.canceled {
			next.fn()
			if next.interval > 0 && !next.canceled {
				next.due = timeNow().Add(next.interval)
				heap.Push(&lo.timers, next)
			}
		}
		lo.drainMicrotasks()
	}
	lo.reportUnhandled()
}

func (lo *Loop) reportUnhandled() {
	if lo.RejectionHandler == nil {
		return
	}
	for p, st := range lo.unhandled {
		if st.handled {
			delete(lo.unhandled, p)
			continue
		}
		lo.RejectionHandler(st.value)
		delete(lo.unhandled, p)
	}
}

// timeNow is a seam over time.Now so a future virtual-clock Host
// implementation (spec §9) can still drive real timer ordering in tests
// without this package importing internal/host.
var timeNow = time.Now
