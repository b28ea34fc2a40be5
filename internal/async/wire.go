package async

import (
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// Wire installs lo as ev's scheduler and Promise seam, so `async
// function`/`await` (internal/evaluator/generator.go) and any Promise
// built-in (internal/builtins) share one event loop. Called once during
// engine construction, after internal/builtins has populated
// ev.PromiseProto.
func Wire(ev *evaluator.Evaluator, lo *Loop) {
	lo.PromiseProto = ev.PromiseProto
	ev.Scheduler = lo
	ev.Promises = &evaluator.PromiseHooks{
		New: func() *runtime.Object {
			return NewPromise(ev.PromiseProto)
		},
		Resolve: lo.Resolve,
		Reject:  lo.Reject,
		ResolveValue: lo.ResolveValue,
		Then: lo.Then,
	}
}
