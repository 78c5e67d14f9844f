package debruijn

// Ingest feeds one sequence record into the graph: every k-length
// window of seq becomes an observation of the edge from the window's
// (k-1)-length prefix to its (k-1)-length suffix, creating endpoint
// nodes as needed. A record shorter than k contributes nothing; that
// is normal, not an error. Observations accumulate across calls and
// cannot be subtracted. Symbols are opaque: ambiguity codes and any
// other non-nucleotide bytes pass through unchanged, and no case
// folding is applied.
func (g *Graph) Ingest(seq []byte) {
	k := g.k
	kmers(seq, k, func(kmer []byte) {
		from := g.nodeBytes(kmer[:k-1])
		to := g.nodeBytes(kmer[1:])
		g.addEdge(from, to, 1)
	})
}
