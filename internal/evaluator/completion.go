package evaluator

import "github.com/cwbudde/go-jsvm/internal/runtime"

// CompletionKind is the tag of a Completion record (ECMA-262 §6.2.4),
// generalizing the teacher's ControlFlowKind enum with the two cases
// DWScript's Exit-only control flow never needed: Throw (carrying a thrown
// value instead of a Go error, so `throw 42` doesn't need to be boxed into
// an error type) and labeled Break/Continue (Target holds the label).
type CompletionKind int

const (
	CompletionNormal CompletionKind = iota
	CompletionReturn
	CompletionThrow
	CompletionBreak
	CompletionContinue
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionNormal:
		return "normal"
	case CompletionReturn:
		return "return"
	case CompletionThrow:
		return "throw"
	case CompletionBreak:
		return "break"
	case CompletionContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// Completion is the result of evaluating a statement: either normal
// completion (continue to the next statement) or an abrupt completion that
// unwinds enclosing statements until something handles it (a loop catches
// Break/Continue, a function call catches Return, try/catch catches Throw).
type Completion struct {
	Kind   CompletionKind
	Value  runtime.Value // Return value, or the thrown value for Throw
	Target string        // label name for a labeled Break/Continue, else ""
}

func normal() Completion { return Completion{Kind: CompletionNormal} }

func isAbrupt(c Completion) bool { return c.Kind != CompletionNormal }
