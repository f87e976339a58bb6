package agent

// StrategyKind selects how a step's tool calls are executed.
type StrategyKind string

const (
	// StrategySequential runs tool calls one at a time, in order. Default.
	StrategySequential StrategyKind = "sequential"
	// StrategyParallel runs every tool call in the step concurrently.
	StrategyParallel StrategyKind = "parallel"
	// StrategyParallelLimited runs tool calls concurrently, at most Limit
	// at a time.
	StrategyParallelLimited StrategyKind = "parallel_limited"
)

// Strategy configures how a step's tool calls are executed. Whichever
// StrategyKind is chosen, the resulting Tool messages are always appended
// to the conversation in toolCalls order, not completion order — parallel
// execution changes only when a call runs, never where its result lands.
type Strategy struct {
	Kind  StrategyKind
	Limit int // only meaningful when Kind == StrategyParallelLimited
}

// Sequential builds the default strategy: tool calls run one at a time.
func Sequential() Strategy { return Strategy{Kind: StrategySequential} }

// Parallel builds a strategy that runs every tool call in a step
// concurrently, with no concurrency cap.
func Parallel() Strategy { return Strategy{Kind: StrategyParallel} }

// ParallelWithLimit builds a strategy that runs tool calls concurrently,
// bounded to n in flight at a time. n must be > 0; a non-positive n falls
// back to Sequential.
func ParallelWithLimit(n int) Strategy {
	if n <= 0 {
		return Sequential()
	}
	return Strategy{Kind: StrategyParallelLimited, Limit: n}
}

// concurrency returns the strategy's effective number of in-flight tool
// executions: 1 for Sequential, len(calls) for Parallel, Limit for
// ParallelWithLimit.
func (s Strategy) concurrency(numCalls int) int {
	switch s.Kind {
	case StrategyParallel:
		return numCalls
	case StrategyParallelLimited:
		if s.Limit < numCalls {
			return s.Limit
		}
		return numCalls
	default:
		return 1
	}
}
