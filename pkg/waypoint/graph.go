// Package waypoint holds the color-partitioned map from marker payloads to
// waypoint metadata, and resolves scanned codes against the selected color.
//
// A Graph is built once at start-up and is read-only afterwards, so it can be
// shared without locking.
package waypoint

import (
	"github.com/teslashibe/go-wayfinder/pkg/band"
)

// Node is the metadata attached to one marker code.
type Node struct {
	Code     string    `json:"code" yaml:"code"`
	Text     string    `json:"text" yaml:"text"`
	Voice    string    `json:"voice,omitempty" yaml:"voice,omitempty"`
	Category string    `json:"category,omitempty" yaml:"category,omitempty"`
	Next     string    `json:"next,omitempty" yaml:"next,omitempty"`
	Color    band.Band `json:"color" yaml:"-"`
}

// Spoken returns the voice text, falling back to the display text.
func (n Node) Spoken() string {
	if n.Voice != "" {
		return n.Voice
	}
	return n.Text
}

// Resolution is the outcome of resolving a code against a selected color.
type Resolution struct {
	Code       string
	Node       *Node
	Found      bool
	Mismatched bool
	Expected   band.Band // Partition the code was found in when Mismatched
}

// Unknown reports whether the code is not in the graph at all.
func (r Resolution) Unknown() bool {
	return !r.Found
}

type duplicate struct {
	code  string
	color band.Band
	first band.Band
}

// Graph maps each band to its code -> node partition.
type Graph struct {
	partitions map[band.Band]map[string]*Node
	order      map[band.Band][]string
	dups       []duplicate
	size       int
}

// New builds a graph without validating it. Duplicate codes keep their first
// occurrence in enumeration order; call Validate to reject them.
func New(parts map[band.Band][]Node) *Graph {
	g := &Graph{
		partitions: make(map[band.Band]map[string]*Node, len(band.All())),
		order:      make(map[band.Band][]string, len(band.All())),
	}
	seen := make(map[string]band.Band)

	for _, b := range band.All() {
		p := make(map[string]*Node, len(parts[b]))
		for _, n := range parts[b] {
			if first, ok := seen[n.Code]; ok {
				g.dups = append(g.dups, duplicate{code: n.Code, color: b, first: first})
				if _, inPartition := p[n.Code]; inPartition {
					continue
				}
			} else {
				seen[n.Code] = b
			}
			node := n
			node.Color = b
			p[n.Code] = &node
			g.order[b] = append(g.order[b], n.Code)
			g.size++
		}
		g.partitions[b] = p
	}
	return g
}

// Resolve looks code up in the selected partition first, then in every
// other partition in enumeration order to detect a color mismatch.
func (g *Graph) Resolve(code string, selected band.Band) Resolution {
	res := Resolution{Code: code}

	if n, ok := g.partitions[selected][code]; ok {
		res.Node = n
		res.Found = true
		return res
	}

	for _, b := range band.All() {
		if b == selected {
			continue
		}
		if n, ok := g.partitions[b][code]; ok {
			res.Node = n
			res.Found = true
			res.Mismatched = true
			res.Expected = b
			return res
		}
	}
	return res
}

// Lookup finds code in any partition; the first match in enumeration order wins.
func (g *Graph) Lookup(code string) (*Node, bool) {
	for _, b := range band.All() {
		if n, ok := g.partitions[b][code]; ok {
			return n, true
		}
	}
	return nil, false
}

// Partition returns copies of the nodes in b in load order.
func (g *Graph) Partition(b band.Band) []Node {
	codes := g.order[b]
	nodes := make([]Node, 0, len(codes))
	for _, c := range codes {
		nodes = append(nodes, *g.partitions[b][c])
	}
	return nodes
}

// Codes returns the codes in b in load order.
func (g *Graph) Codes(b band.Band) []string {
	return append([]string(nil), g.order[b]...)
}

// Len returns the number of nodes across all partitions.
func (g *Graph) Len() int {
	return g.size
}

// Route follows Next links from code and returns the nodes visited, starting
// with code itself. It stops at a missing successor or a repeated code.
func (g *Graph) Route(code string) []Node {
	var route []Node
	visited := make(map[string]bool)

	for code != "" && !visited[code] {
		n, ok := g.Lookup(code)
		if !ok {
			break
		}
		visited[code] = true
		route = append(route, *n)
		code = n.Next
	}
	return route
}
