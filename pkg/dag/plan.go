package dag

import (
	"sort"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// Plan owns a DAG's arena: nodes keyed by NodeID, edges as a flat slice,
// per spec §9 ("Plan owns nodes: map<NodeId, Node> and edges: vec<Edge>").
type Plan struct {
	nodes map[NodeID]Node
	edges []Edge
	order []NodeID // insertion order, used to break ties deterministically
}

// NewPlan builds an empty Plan.
func NewPlan() *Plan {
	return &Plan{nodes: make(map[NodeID]Node)}
}

// AddNode registers n. Re-registering an id already present is an error.
func (p *Plan) AddNode(n Node) aierrors.Result[struct{}] {
	if _, exists := p.nodes[n.ID()]; exists {
		return aierrors.Err[struct{}](aierrors.NewValidation("node", "duplicate node id").WithContext("id", string(n.ID())))
	}
	p.nodes[n.ID()] = n
	p.order = append(p.order, n.ID())
	return aierrors.Ok(struct{}{})
}

// AddEdge registers e, rejecting edges referencing an unknown node.
func (p *Plan) AddEdge(e Edge) aierrors.Result[struct{}] {
	if _, ok := p.nodes[e.From]; !ok {
		return aierrors.Err[struct{}](aierrors.NewValidation("edge", "unknown source node").WithContext("id", string(e.From)))
	}
	if _, ok := p.nodes[e.To]; !ok {
		return aierrors.Err[struct{}](aierrors.NewValidation("edge", "unknown target node").WithContext("id", string(e.To)))
	}
	p.edges = append(p.edges, e)
	return aierrors.Ok(struct{}{})
}

func (p *Plan) adjacency() map[NodeID][]NodeID {
	adj := make(map[NodeID][]NodeID, len(p.nodes))
	for _, e := range p.edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

func (p *Plan) incoming() map[NodeID][]NodeID {
	in := make(map[NodeID][]NodeID, len(p.nodes))
	for _, e := range p.edges {
		in[e.To] = append(in[e.To], e.From)
	}
	return in
}

// dfsColor tags a node's DFS visitation state for cycle detection.
type dfsColor int

const (
	white dfsColor = iota
	gray
	black
)

// Validate checks the Plan is acyclic via DFS (white/gray/black coloring:
// reaching a gray node means a back-edge, i.e. a cycle).
func (p *Plan) Validate() aierrors.Result[struct{}] {
	adj := p.adjacency()
	color := make(map[NodeID]dfsColor, len(p.nodes))

	var visit func(id NodeID) *aierrors.Error
	visit = func(id NodeID) *aierrors.Error {
		color[id] = gray
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				return aierrors.NewValidation("plan", "cycle detected in orchestration DAG").WithContext("node", string(next))
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range p.order {
		if color[id] == white {
			if err := visit(id); err != nil {
				return aierrors.Err[struct{}](err)
			}
		}
	}
	return aierrors.Ok(struct{}{})
}

// Batches validates the Plan and groups its nodes into topological batches
// via Kahn's algorithm: every node in batch i depends only on nodes in
// batches < i, so all nodes within one batch may run concurrently.
func (p *Plan) Batches() aierrors.Result[[][]NodeID] {
	if res := p.Validate(); res.IsErr() {
		return aierrors.Err[[][]NodeID](res.Error())
	}

	adj := p.adjacency()
	indegree := make(map[NodeID]int, len(p.nodes))
	for _, id := range p.order {
		indegree[id] = 0
	}
	for _, e := range p.edges {
		indegree[e.To]++
	}

	posOf := make(map[NodeID]int, len(p.order))
	for i, id := range p.order {
		posOf[id] = i
	}

	var current []NodeID
	for _, id := range p.order {
		if indegree[id] == 0 {
			current = append(current, id)
		}
	}

	var batches [][]NodeID
	processed := 0
	for len(current) > 0 {
		sort.Slice(current, func(i, j int) bool { return posOf[current[i]] < posOf[current[j]] })
		batches = append(batches, current)
		processed += len(current)

		var next []NodeID
		for _, id := range current {
			for _, nb := range adj[id] {
				indegree[nb]--
				if indegree[nb] == 0 {
					next = append(next, nb)
				}
			}
		}
		current = next
	}

	if processed != len(p.nodes) {
		return aierrors.Err[[][]NodeID](aierrors.NewValidation("plan", "cycle detected in orchestration DAG"))
	}
	return aierrors.Ok(batches)
}
