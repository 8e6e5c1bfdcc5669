package domain

import "fmt"

// SubmissionEdge is one catalog row: a submission reachable from a position
// at a given belt tier
type SubmissionEdge struct {
	From       string `json:"from"`
	Submission string `json:"submission"`
	Belt       Belt   `json:"belt"`
	Setup      string `json:"setup,omitempty"`
}

// Catalog is the belt-annotated position → submission multigraph.
// The same submission name may be reached from several positions.
type Catalog struct {
	edges        []SubmissionEdge
	byPosition   map[string][]int
	bySubmission map[string][]int
	byBelt       map[Belt][]int
}

// BuildCatalog groups the edge list into its indices. The input order is
// kept and is the tie-break for every ordered enumeration.
func BuildCatalog(edges []SubmissionEdge) *Catalog {
	c := &Catalog{
		edges:        append([]SubmissionEdge(nil), edges...),
		byPosition:   make(map[string][]int),
		bySubmission: make(map[string][]int),
		byBelt:       make(map[Belt][]int),
	}
	for i, e := range c.edges {
		c.byPosition[e.From] = append(c.byPosition[e.From], i)
		c.bySubmission[e.Submission] = append(c.bySubmission[e.Submission], i)
		c.byBelt[e.Belt] = append(c.byBelt[e.Belt], i)
	}
	return c
}

// Len returns the number of edges
func (c *Catalog) Len() int {
	return len(c.edges)
}

// Edges returns every edge in declaration order
func (c *Catalog) Edges() []SubmissionEdge {
	return append([]SubmissionEdge{}, c.edges...)
}

// EdgesFrom returns the edges leaving a position
func (c *Catalog) EdgesFrom(position string) []SubmissionEdge {
	return c.pick(c.byPosition[position])
}

// EdgesFor returns every edge naming a submission
func (c *Catalog) EdgesFor(submission string) []SubmissionEdge {
	return c.pick(c.bySubmission[submission])
}

// EdgesAt returns the edges of exactly one belt
func (c *Catalog) EdgesAt(b Belt) []SubmissionEdge {
	return c.pick(c.byBelt[b])
}

func (c *Catalog) pick(idx []int) []SubmissionEdge {
	out := make([]SubmissionEdge, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.edges[i])
	}
	return out
}

// FilterByTier returns every edge at or below the filter's belt.
// BeltAll returns all edges unchanged.
func (c *Catalog) FilterByTier(f BeltFilter) []SubmissionEdge {
	if f == BeltAll {
		return c.Edges()
	}
	out := make([]SubmissionEdge, 0, len(c.edges))
	for _, e := range c.edges {
		if f.Admits(e.Belt) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByPosition returns the distinct submission names reachable from a
// position within the tier-filtered catalog, in canonical order.
func (c *Catalog) FilterByPosition(f BeltFilter, position string) []string {
	return FilterByPosition(c.FilterByTier(f), position)
}

// SubmissionNames returns the distinct names of the tier-filtered catalog in
// canonical order
func (c *Catalog) SubmissionNames(f BeltFilter) []string {
	return SubmissionNames(c.FilterByTier(f))
}

// Positions returns the positions with at least one edge in the filtered
// catalog, in first-seen order
func (c *Catalog) Positions(f BeltFilter) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.FilterByTier(f) {
		if !seen[e.From] {
			seen[e.From] = true
			out = append(out, e.From)
		}
	}
	return out
}

// FilterByPosition returns the distinct submission names s such that some
// edge (position, s) is in edges, in canonical order.
func FilterByPosition(edges []SubmissionEdge, position string) []string {
	var from []SubmissionEdge
	for _, e := range edges {
		if e.From == position {
			from = append(from, e)
		}
	}
	return SubmissionNames(from)
}

// SubmissionNames enumerates distinct submission names grouped by belt from
// white to black; within a belt names keep the order of the first edge that
// names them. A name is listed under the lowest belt it appears at.
func SubmissionNames(edges []SubmissionEdge) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range beltOrder {
		for _, e := range edges {
			if e.Belt == b && !seen[e.Submission] {
				seen[e.Submission] = true
				out = append(out, e.Submission)
			}
		}
	}
	return out
}

// lowestBelts maps each submission to the lowest belt it appears at
func lowestBelts(edges []SubmissionEdge) map[string]Belt {
	out := make(map[string]Belt)
	for _, b := range beltOrder {
		for _, e := range edges {
			if _, ok := out[e.Submission]; !ok && e.Belt == b {
				out[e.Submission] = b
			}
		}
	}
	return out
}

// MapNode is a node of the submission map view
type MapNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     NodeKind `json:"kind"`
	Belt     Belt     `json:"belt,omitempty"`
	Selected bool     `json:"selected,omitempty"`
	Dimmed   bool     `json:"dimmed"`
}

// MapEdge is an edge of the submission map view
type MapEdge struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Label       string `json:"label,omitempty"`
	Belt        Belt   `json:"belt"`
	Highlighted bool   `json:"highlighted"`
	Dimmed      bool   `json:"dimmed"`
}

// SubmissionMap is the aggregate position → submission view with its
// highlight state
type SubmissionMap struct {
	Filter    BeltFilter `json:"filter"`
	Selected  string     `json:"selected,omitempty"`
	Highlight []string   `json:"highlight,omitempty"`
	Nodes     []MapNode  `json:"nodes"`
	Edges     []MapEdge  `json:"edges"`
}

// SubmissionNodeID is the map node id of a submission
func SubmissionNodeID(name string) string {
	return "sub-" + name
}

// Map builds the submission map for a filter. When selected is non-empty,
// every submission reachable from it is active and every other submission
// node and edge is dimmed. label resolves position display labels.
func (c *Catalog) Map(f BeltFilter, selected string, label func(string) string) *SubmissionMap {
	filtered := c.FilterByTier(f)
	m := &SubmissionMap{
		Filter:   f,
		Selected: selected,
		Nodes:    []MapNode{},
		Edges:    []MapEdge{},
	}

	var active map[string]bool
	if selected != "" {
		m.Highlight = FilterByPosition(filtered, selected)
		active = make(map[string]bool, len(m.Highlight))
		for _, s := range m.Highlight {
			active[s] = true
		}
	}

	for _, id := range c.Positions(f) {
		m.Nodes = append(m.Nodes, MapNode{
			ID:       id,
			Label:    label(id),
			Kind:     NodePosition,
			Selected: id == selected,
		})
	}

	belts := lowestBelts(filtered)
	for _, name := range SubmissionNames(filtered) {
		m.Nodes = append(m.Nodes, MapNode{
			ID:     SubmissionNodeID(name),
			Label:  name,
			Kind:   NodeSubmission,
			Belt:   belts[name],
			Dimmed: active != nil && !active[name],
		})
	}

	for i, e := range filtered {
		m.Edges = append(m.Edges, MapEdge{
			ID:          fmt.Sprintf("edge-%s-%s-%d", e.From, e.Submission, i),
			From:        e.From,
			To:          SubmissionNodeID(e.Submission),
			Label:       e.Setup,
			Belt:        e.Belt,
			Highlighted: active != nil && active[e.Submission] && e.From == selected,
			Dimmed:      active != nil && !active[e.Submission],
		})
	}

	return m
}
