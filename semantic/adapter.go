package semantic

import (
	"context"

	"github.com/ezrec/lpu/isa"
)

// Strategy selects how a backend response becomes a Value.
type Strategy int

//go:generate go tool stringer -linecomment -type=Strategy
const (
	STRATEGY_GENERATE = Strategy(0) // generate
	STRATEGY_JUDGE    = Strategy(1) // judge
	STRATEGY_EMBED    = Strategy(2) // embed
)

// Request is a single semantic evaluation.
type Request struct {
	Operation isa.Opcode    // Semantic opcode.
	Prompt    string        // Rendered micro-prompt.
	Messages  []isa.Message // Context stack, bottom first.
	Operands  []string      // Operand texts.
	Strategy  Strategy      // Response strategy.
	Labels    []string      // Upper case answers judged true, for STRATEGY_JUDGE.
}

// Adapter evaluates semantic requests.
//
// STRATEGY_GENERATE yields a Text; STRATEGY_JUDGE and STRATEGY_EMBED
// yield a Number in [0, 100].
type Adapter interface {
	Evaluate(ctx context.Context, req Request) (value isa.Value, err error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context, req Request) (isa.Value, error)

func (fn AdapterFunc) Evaluate(ctx context.Context, req Request) (isa.Value, error) {
	return fn(ctx, req)
}
