package debruijn

import (
	"strings"

	"gopkg.in/check.v1"
)

type ingestSuite struct{}

var _ = check.Suite(&ingestSuite{})

func (s *ingestSuite) TestIngest(c *check.C) {
	g, err := New(3)
	c.Assert(err, check.IsNil)
	g.Ingest([]byte("ACGTACGT"))
	c.Check(g.NodeCount(), check.Equals, 4)
	c.Check(g.EdgeCount(), check.Equals, 4)
	c.Check(g.Observations(), check.Equals, uint64(6))
	c.Check(g.EdgesSorted(), check.DeepEquals, []Edge{
		{From: "AC", To: "CG", Count: 2},
		{From: "CG", To: "GT", Count: 2},
		{From: "GT", To: "TA", Count: 1},
		{From: "TA", To: "AC", Count: 1},
	})
}

func (s *ingestSuite) TestIngestRepeat(c *check.C) {
	g, err := New(2)
	c.Assert(err, check.IsNil)
	g.Ingest([]byte("AAAA"))
	g.Ingest([]byte("AAAA"))
	c.Check(g.Nodes(), check.DeepEquals, []string{"A"})
	c.Check(g.EdgeCount(), check.Equals, 1)
	c.Check(g.Multiplicity("A", "A"), check.Equals, uint32(6))
}

func (s *ingestSuite) TestIngestDoublesMultiplicities(c *check.C) {
	seqs := [][]byte{[]byte("ACGTACGTGACG"), []byte("TTTCTTT")}
	once, err := New(4)
	c.Assert(err, check.IsNil)
	twice, err := New(4)
	c.Assert(err, check.IsNil)
	for _, seq := range seqs {
		once.Ingest(seq)
		twice.Ingest(seq)
		twice.Ingest(seq)
	}
	c.Check(twice.NodesSorted(), check.DeepEquals, once.NodesSorted())
	c.Check(twice.EdgeCount(), check.Equals, once.EdgeCount())
	for _, e := range once.EdgesSorted() {
		c.Check(twice.Multiplicity(e.From, e.To), check.Equals, 2*e.Count)
	}
	c.Check(twice.Observations(), check.Equals, 2*once.Observations())
}

func (s *ingestSuite) TestIngestEdgeEndpoints(c *check.C) {
	for _, trial := range []struct {
		seq string
		k   int
	}{
		{"ACGTACGT", 3},
		{"GATTACA", 2},
		{"TTNNACGTNN", 4},
	} {
		c.Log(trial)
		g, err := New(trial.k)
		c.Assert(err, check.IsNil)
		g.Ingest([]byte(trial.seq))
		var total uint64
		for _, e := range g.Edges() {
			c.Check(e.From, check.HasLen, trial.k-1)
			c.Check(e.To, check.HasLen, trial.k-1)
			// from and to overlap in all but their outer symbols, and
			// together they spell a window that occurs in the input
			c.Check(e.From[1:], check.Equals, e.To[:len(e.To)-1])
			c.Check(strings.Contains(trial.seq, e.From+e.To[len(e.To)-1:]), check.Equals, true)
			total += uint64(e.Count)
		}
		c.Check(total, check.Equals, uint64(len(trial.seq)-trial.k+1))
		c.Check(g.NodeCount() <= len(trial.seq)-(trial.k-2), check.Equals, true)
	}
}

func (s *ingestSuite) TestIngestShortSequence(c *check.C) {
	g, err := New(5)
	c.Assert(err, check.IsNil)
	g.Ingest([]byte("ACGT"))
	g.Ingest(nil)
	c.Check(g.NodeCount(), check.Equals, 0)
	c.Check(g.EdgeCount(), check.Equals, 0)
}

func (s *ingestSuite) TestIngestSharedNodes(c *check.C) {
	g, err := New(3)
	c.Assert(err, check.IsNil)
	g.Ingest([]byte("ACGT"))
	g.Ingest([]byte("CGTT"))
	c.Check(g.NodesSorted(), check.DeepEquals, []string{"AC", "CG", "GT", "TT"})
	c.Check(g.Multiplicity("CG", "GT"), check.Equals, uint32(2))
	c.Check(g.Multiplicity("GT", "TT"), check.Equals, uint32(1))
}
