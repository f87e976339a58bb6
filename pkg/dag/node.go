// Package dag implements the C11 orchestration DAG runner: typed Agent[I,O]
// nodes and Edge[T] links, a Plan validated for acyclicity by DFS, and
// execution by Kahn's-algorithm topological batching so same-level nodes
// run concurrently. Grounded on taipm-go-deep-agent's
// agent/planner_executor.go (topologicalSort/groupByDependencyLevel/
// executeBatchParallel), generalized from its string-keyed Task/
// Dependencies model to arena-indexed NodeID/EdgeID storage per spec §9's
// "cyclic references... represented with arena-indexed node/edge ids
// rather than pointer graphs."
package dag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NodeID identifies a node within a Plan's arena. NewNodeID mints one from
// google/uuid; callers may also assign stable ids of their own (e.g. a
// human-readable name) since NodeID is a plain string.
type NodeID string

// NewNodeID mints a fresh random NodeID.
func NewNodeID() NodeID { return NodeID(uuid.NewString()) }

// EdgeID identifies an edge within a Plan's arena.
type EdgeID string

// NewEdgeID mints a fresh random EdgeID.
func NewEdgeID() EdgeID { return EdgeID(uuid.NewString()) }

// Agent is a typed node's handler: a pure transform from input to output.
type Agent[I, O any] func(ctx context.Context, input I) (O, error)

// Node is the type-erased runtime contract every typed Agent[I,O] node
// satisfies, so a Plan's arena can hold heterogeneous node types in one
// map<NodeID,Node> rather than a generic graph type.
type Node interface {
	ID() NodeID
	run(ctx context.Context, input any) (any, error)
}

type agentNode[I, O any] struct {
	id NodeID
	fn Agent[I, O]
}

// NewNode wraps a typed Agent[I,O] function into a type-erased Node for a
// Plan's arena.
func NewNode[I, O any](id NodeID, fn Agent[I, O]) Node {
	return agentNode[I, O]{id: id, fn: fn}
}

func (n agentNode[I, O]) ID() NodeID { return n.id }

func (n agentNode[I, O]) run(ctx context.Context, input any) (any, error) {
	typed, ok := input.(I)
	if !ok {
		var zero I
		return nil, fmt.Errorf("dag: node %s expects input type %T, got %T", n.id, zero, input)
	}
	return n.fn(ctx, typed)
}

// Edge links From's output to To's input. NewEdge's type parameter T names
// the value type the edge carries but is not checked against either node:
// NodeIDs carry no type, so a mismatch between From's output and To's input
// is not caught at compile time or by AddEdge; it surfaces during Run as
// the target node's input-type error.
type Edge struct {
	ID   EdgeID
	From NodeID
	To   NodeID
}

// NewEdge builds an Edge from a source node producing T to a target node
// consuming T.
func NewEdge[T any](id EdgeID, from NodeID, to NodeID) Edge {
	return Edge{ID: id, From: from, To: to}
}
