package dag

import (
	"context"
	"sync"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// RunError reports a Plan.Run failure. It carries FailedNode and the
// outputs already produced by nodes that completed before the failure, per
// spec §4.8: "a node that fails aborts the plan with the first error;
// already-completed nodes' outputs are returned in the error context."
// This is returned as a plain value rather than folded into
// aierrors.Result[T]'s *aierrors.Error, since Error.Context is a flat
// map[string]string that cannot carry the heterogeneous, typed-per-node
// Completed map — see DESIGN.md.
type RunError struct {
	Err        *aierrors.Error
	FailedNode NodeID
	Completed  map[NodeID]any
}

func (e *RunError) Error() string { return e.Err.Error() }

// Run executes the Plan to completion: nodes are grouped into topological
// batches (Batches), and every node within a batch runs concurrently. A
// node with no incoming edges takes its input from initialInputs keyed by
// its own id; otherwise it takes the first available output among its
// upstream nodes (tolerant fan-in: an edge from a node that, for whatever
// reason, produced no output is simply skipped in favor of the next one).
// The first node error aborts the run; outputs already produced by other
// nodes — including other nodes in the same batch that happened to finish
// first — are returned via RunError.Completed.
func (p *Plan) Run(ctx context.Context, initialInputs map[NodeID]any) (map[NodeID]any, *RunError) {
	batches, res := p.Batches().Unwrap()
	if res != nil {
		return nil, &RunError{Err: res}
	}

	in := p.incoming()
	outputs := make(map[NodeID]any, len(p.nodes))
	var mu sync.Mutex

	for _, batch := range batches {
		type outcome struct {
			id  NodeID
			out any
			err error
		}
		results := make(chan outcome, len(batch))

		for _, id := range batch {
			go func(id NodeID) {
				select {
				case <-ctx.Done():
					results <- outcome{id: id, err: ctx.Err()}
					return
				default:
				}
				input, ok := resolveInput(id, in[id], initialInputs, &mu, outputs)
				if !ok {
					results <- outcome{id: id, err: errMissingInput(id)}
					return
				}
				out, err := p.nodes[id].run(ctx, input)
				results <- outcome{id: id, out: out, err: err}
			}(id)
		}

		var failed *RunError
		for range batch {
			r := <-results
			if r.err != nil {
				if failed == nil {
					failed = &RunError{
						Err:        aierrors.NewUnknown(r.err.Error(), r.err).WithContext("node", string(r.id)),
						FailedNode: r.id,
					}
				}
				continue
			}
			mu.Lock()
			outputs[r.id] = r.out
			mu.Unlock()
		}
		if failed != nil {
			failed.Completed = snapshot(outputs, &mu)
			return nil, failed
		}
	}

	return outputs, nil
}

// resolveInput implements spec §4.8's input-resolution rule.
func resolveInput(id NodeID, upstream []NodeID, initialInputs map[NodeID]any, mu *sync.Mutex, outputs map[NodeID]any) (any, bool) {
	if len(upstream) == 0 {
		v, ok := initialInputs[id]
		return v, ok
	}
	mu.Lock()
	defer mu.Unlock()
	for _, up := range upstream {
		if v, ok := outputs[up]; ok {
			return v, true
		}
	}
	return nil, false
}

func snapshot(outputs map[NodeID]any, mu *sync.Mutex) map[NodeID]any {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[NodeID]any, len(outputs))
	for k, v := range outputs {
		out[k] = v
	}
	return out
}

func errMissingInput(id NodeID) error {
	return &missingInputError{id: id}
}

type missingInputError struct{ id NodeID }

func (e *missingInputError) Error() string {
	return "dag: node " + string(e.id) + " has no resolvable input"
}
