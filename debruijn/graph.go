// Package debruijn builds de Bruijn graphs from nucleotide sequences:
// directed graphs whose nodes are the (k-1)-length substrings of the
// input and whose edges are the k-length substrings, each edge
// carrying the number of times its k-mer was observed.
package debruijn

import (
	"errors"
	"sort"
)

// ErrInvalidK is returned when a window length smaller than 2 is
// requested. A k-mer must keep a non-empty prefix and suffix after
// trimming one symbol from each end.
var ErrInvalidK = errors.New("debruijn: k must be at least 2")

// ErrInvalidSampleSize is returned by Sample for a negative node
// count.
var ErrInvalidSampleSize = errors.New("debruijn: invalid sample size")

// Edge is one distinct k-mer of the input: a directed connection
// between two (k-1)-mer nodes. Count is the edge's multiplicity, the
// number of times the k-mer occurred across all ingested sequences.
type Edge struct {
	From  string
	To    string
	Count uint32
}

type edgeKey struct {
	from, to int32
}

// Graph is a de Bruijn graph with window length k. Nodes and edges
// are only ever added, never removed; a graph in any intermediate
// state of construction is structurally valid. Iteration order is
// insertion order (Decode inserts in the file's canonical sorted
// order). Graph has no internal locking: callers that parallelize
// ingestion must serialize all mutations themselves.
type Graph struct {
	k     int
	index map[string]int32 // node id -> position in nodes
	nodes []string         // insertion order
	mult  map[edgeKey]uint32
	edges []edgeKey // insertion order
}

// New returns an empty graph for k-length windows.
func New(k int) (*Graph, error) {
	if k < 2 {
		return nil, ErrInvalidK
	}
	return &Graph{
		k:     k,
		index: map[string]int32{},
		mult:  map[edgeKey]uint32{},
	}, nil
}

// K returns the window length the graph was created with. Every node
// produced by Ingest has length K()-1.
func (g *Graph) K() int { return g.k }

// AddNode ensures a node exists. Adding a node that is already
// present does nothing.
func (g *Graph) AddNode(id string) {
	g.node(id)
}

// AddEdge records one observation of the edge from→to, creating
// either endpoint node first if absent. Repeated calls for the same
// pair never create a parallel edge; they increment its multiplicity.
func (g *Graph) AddEdge(from, to string) {
	g.AddEdgeCount(from, to, 1)
}

// AddEdgeCount records n observations of the edge from→to at once.
// AddEdgeCount(from, to, 1) is equivalent to AddEdge(from, to);
// n == 0 is a no-op and does not create nodes or edges.
func (g *Graph) AddEdgeCount(from, to string, n uint32) {
	if n == 0 {
		return
	}
	g.addEdge(g.node(from), g.node(to), n)
}

// HasNode reports whether a node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to string) bool {
	return g.Multiplicity(from, to) > 0
}

// Multiplicity returns the number of recorded observations of the
// edge from→to, 0 if there is no such edge.
func (g *Graph) Multiplicity(from, to string) uint32 {
	fi, ok := g.index[from]
	if !ok {
		return 0
	}
	ti, ok := g.index[to]
	if !ok {
		return 0
	}
	return g.mult[edgeKey{fi, ti}]
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges, not counting
// multiplicity.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Observations returns the sum of all edge multiplicities, i.e. the
// total number of k-mers ingested.
func (g *Graph) Observations() uint64 {
	var total uint64
	for _, n := range g.mult {
		total += uint64(n)
	}
	return total
}

// Nodes returns the nodes in iteration order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// NodesSorted returns the nodes in lexicographic order, the canonical
// order of the file format.
func (g *Graph) NodesSorted() []string {
	nodes := g.Nodes()
	sort.Strings(nodes)
	return nodes
}

// Edges returns the distinct edges in iteration order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, key := range g.edges {
		edges = append(edges, Edge{
			From:  g.nodes[key.from],
			To:    g.nodes[key.to],
			Count: g.mult[key],
		})
	}
	return edges
}

// EdgesSorted returns the distinct edges ordered by source node, then
// target node, the canonical order of the file format.
func (g *Graph) EdgesSorted() []Edge {
	edges := g.Edges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Sample returns the subgraph induced by the first n nodes in
// iteration order: those nodes plus exactly the edges whose endpoints
// are both among them, multiplicities preserved. n ≥ NodeCount()
// copies the whole graph, Sample(0) is an empty graph, and n < 0 is
// ErrInvalidSampleSize. The result shares no state with g.
func (g *Graph) Sample(n int) (*Graph, error) {
	if n < 0 {
		return nil, ErrInvalidSampleSize
	}
	if n > len(g.nodes) {
		n = len(g.nodes)
	}
	sub, _ := New(g.k)
	for _, id := range g.nodes[:n] {
		sub.AddNode(id)
	}
	for _, key := range g.edges {
		// A node's index is its position in iteration order, so
		// "among the first n nodes" is an index comparison.
		if int(key.from) < n && int(key.to) < n {
			sub.addEdge(sub.node(g.nodes[key.from]), sub.node(g.nodes[key.to]), g.mult[key])
		}
	}
	return sub, nil
}

func (g *Graph) node(id string) int32 {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := int32(len(g.nodes))
	g.index[id] = i
	g.nodes = append(g.nodes, id)
	return i
}

// nodeBytes is node() for a []byte id, avoiding the string allocation
// when the node already exists.
func (g *Graph) nodeBytes(id []byte) int32 {
	if i, ok := g.index[string(id)]; ok {
		return i
	}
	return g.node(string(id))
}

func (g *Graph) addEdge(from, to int32, n uint32) {
	key := edgeKey{from, to}
	if _, ok := g.mult[key]; !ok {
		g.edges = append(g.edges, key)
	}
	g.mult[key] += n
}
