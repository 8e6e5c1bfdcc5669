package domain

import (
	"fmt"
	"strings"
)

// PositionGraph maps each position to its ordered list of options.
// It is built once from static tables and is read-only afterwards, so it is
// safe for concurrent readers.
type PositionGraph struct {
	order     []string
	positions map[string]Position
	options   map[string][]Option
	orphans   []PositionOption
}

// BuildGraph builds the graph from raw position and option tables.
// Declaration order is preserved for positions and for each position's
// options. Duplicate position ids keep their first declaration. Options whose
// source position is undefined are kept aside and reported by Validate.
func BuildGraph(positions []Position, options []PositionOption) *PositionGraph {
	g := &PositionGraph{
		order:     make([]string, 0, len(positions)),
		positions: make(map[string]Position, len(positions)),
		options:   make(map[string][]Option, len(positions)),
	}

	for _, p := range positions {
		if _, dup := g.positions[p.ID]; dup {
			continue
		}
		g.order = append(g.order, p.ID)
		g.positions[p.ID] = p
	}

	for _, po := range options {
		if _, ok := g.positions[po.From]; !ok {
			g.orphans = append(g.orphans, po)
			continue
		}
		g.options[po.From] = append(g.options[po.From], po.Option)
	}

	return g
}

// Len returns the number of positions
func (g *PositionGraph) Len() int {
	return len(g.order)
}

// Has reports whether id is a defined position
func (g *PositionGraph) Has(id string) bool {
	_, ok := g.positions[id]
	return ok
}

// Position looks up a single position
func (g *PositionGraph) Position(id string) (Position, error) {
	p, ok := g.positions[id]
	if !ok {
		return Position{}, &PositionNotFoundError{ID: id}
	}
	return p, nil
}

// Label returns the display label for id, or id itself when undefined
func (g *PositionGraph) Label(id string) string {
	if p, ok := g.positions[id]; ok {
		return p.Label
	}
	return id
}

// Positions returns every position in declaration order
func (g *PositionGraph) Positions() []Position {
	out := make([]Position, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.positions[id])
	}
	return out
}

// OptionsFor returns the ordered options leaving a position.
// An unknown id yields a *PositionNotFoundError; callers render a
// "Position not found" fallback rather than failing.
func (g *PositionGraph) OptionsFor(id string) ([]Option, error) {
	if _, ok := g.positions[id]; !ok {
		return nil, &PositionNotFoundError{ID: id}
	}
	opts := g.options[id]
	out := make([]Option, len(opts))
	copy(out, opts)
	return out, nil
}

// Validate runs the integrity pass: every transition target must be a
// defined position and every option must leave from one.
func (g *PositionGraph) Validate() []DanglingReferenceError {
	var problems []DanglingReferenceError

	for _, po := range g.orphans {
		problems = append(problems, DanglingReferenceError{
			From:    po.From,
			Option:  po.Label,
			Missing: po.From,
			Role:    RoleSource,
		})
	}

	for _, id := range g.order {
		for _, opt := range g.options[id] {
			target, ok := ResolveTransition(opt)
			if !ok {
				if opt.Kind == KindTransition {
					problems = append(problems, DanglingReferenceError{
						From: id, Option: opt.Label, Missing: "", Role: RoleTarget,
					})
				}
				continue
			}
			if !g.Has(target) {
				problems = append(problems, DanglingReferenceError{
					From: id, Option: opt.Label, Missing: target, Role: RoleTarget,
				})
			}
		}
	}

	return problems
}

// NodeKind classifies a node in a rendered subgraph
type NodeKind string

const (
	NodePosition   NodeKind = "position"
	NodeSubmission NodeKind = "submission"
	NodeTakedown   NodeKind = "takedown"
)

// SubgraphNode is a node of a rendered view
type SubgraphNode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"kind"`
	Depth int      `json:"depth"`
}

// SubgraphEdge is an edge of a rendered view
type SubgraphEdge struct {
	ID       string     `json:"id"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	Label    string     `json:"label,omitempty"`
	Kind     OptionKind `json:"kind"`
	Terminal bool       `json:"terminal"`
}

// Subgraph is the node/edge set handed to the layout layer
type Subgraph struct {
	Root  string         `json:"root,omitempty"`
	Depth int            `json:"depth"`
	Nodes []SubgraphNode `json:"nodes"`
	Edges []SubgraphEdge `json:"edges"`
}

type subgraphBuilder struct {
	g    *PositionGraph
	sg   *Subgraph
	seen map[string]bool
}

func newSubgraphBuilder(g *PositionGraph, root string, depth int) *subgraphBuilder {
	return &subgraphBuilder{
		g:    g,
		sg:   &Subgraph{Root: root, Depth: depth, Nodes: []SubgraphNode{}, Edges: []SubgraphEdge{}},
		seen: make(map[string]bool),
	}
}

// addNode adds a node once and reports whether it was new
func (b *subgraphBuilder) addNode(n SubgraphNode) bool {
	if b.seen[n.ID] {
		return false
	}
	b.seen[n.ID] = true
	b.sg.Nodes = append(b.sg.Nodes, n)
	return true
}

// addOption adds the edge for opt and its destination node. It returns the
// destination position id when the option is a transition to a new node.
func (b *subgraphBuilder) addOption(from string, opt Option, depth int) (string, bool) {
	edge := SubgraphEdge{
		ID:    fmt.Sprintf("e%d", len(b.sg.Edges)+1),
		From:  from,
		Label: opt.EdgeLabel,
		Kind:  opt.Kind,
	}

	var next string
	var expand bool

	switch opt.Kind {
	case KindTransition:
		edge.To = opt.Target
		expand = b.addNode(SubgraphNode{
			ID:    opt.Target,
			Label: b.transitionLabel(opt),
			Kind:  NodePosition,
			Depth: depth,
		})
		next = opt.Target
	case KindSubmission, KindTakedown:
		edge.Terminal = true
		edge.To = MoveNodeID(opt.Label)
		kind := NodeSubmission
		if opt.Kind == KindTakedown {
			kind = NodeTakedown
		}
		b.addNode(SubgraphNode{ID: edge.To, Label: opt.Label, Kind: kind, Depth: depth})
	default:
		return "", false
	}

	b.sg.Edges = append(b.sg.Edges, edge)
	return next, expand
}

func (b *subgraphBuilder) transitionLabel(opt Option) string {
	if p, ok := b.g.positions[opt.Target]; ok {
		return p.Label
	}
	return opt.Label
}

// SubgraphView returns the nodes and edges reachable from root within depth
// levels. Depth 1 lists the root's own options, which is all navigation needs
// to decide what is clickable; depth 2 adds the preview of every first-level
// transition target. Depths below 1 are treated as 1. Positions reached
// through a cycle appear once, but every edge is kept.
func (g *PositionGraph) SubgraphView(root string, depth int) (*Subgraph, error) {
	p, ok := g.positions[root]
	if !ok {
		return nil, &PositionNotFoundError{ID: root}
	}
	if depth < 1 {
		depth = 1
	}

	b := newSubgraphBuilder(g, root, depth)
	b.addNode(SubgraphNode{ID: p.ID, Label: p.Label, Kind: NodePosition, Depth: 0})

	frontier := []string{root}
	for level := 1; level <= depth && len(frontier) > 0; level++ {
		var next []string
		for _, id := range frontier {
			for _, opt := range g.options[id] {
				if target, isNew := b.addOption(id, opt, level); isNew {
					next = append(next, target)
				}
			}
		}
		frontier = next
	}

	return b.sg, nil
}

// Flow returns the whole graph as one view: every position in declaration
// order, terminal moves deduplicated by label, and every edge.
func (g *PositionGraph) Flow() *Subgraph {
	b := newSubgraphBuilder(g, "", 0)
	for _, id := range g.order {
		p := g.positions[id]
		b.addNode(SubgraphNode{ID: p.ID, Label: p.Label, Kind: NodePosition})
	}
	for _, id := range g.order {
		for _, opt := range g.options[id] {
			b.addOption(id, opt, 0)
		}
	}
	return b.sg
}

// MoveNodeID derives the view node id for a terminal move label, so the same
// submission reached from several positions shares one node.
func MoveNodeID(label string) string {
	var sb strings.Builder
	sb.WriteString("move-")
	dash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		default:
			if !dash && sb.Len() > len("move-") {
				sb.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
