package debruijn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/check.v1"
)

type codecSuite struct{}

var _ = check.Suite(&codecSuite{})

func (s *codecSuite) TestRoundTrip(c *check.C) {
	g, err := New(3)
	c.Assert(err, check.IsNil)
	g.Ingest([]byte("ACGTACGT"))
	g.Ingest([]byte("GGCA"))

	var buf bytes.Buffer
	c.Assert(g.Encode(&buf), check.IsNil)

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	c.Assert(err, check.IsNil)
	c.Check(got.K(), check.Equals, 3)
	c.Check(got.NodeCount(), check.Equals, g.NodeCount())
	c.Check(got.EdgeCount(), check.Equals, g.EdgeCount())
	c.Check(got.NodesSorted(), check.DeepEquals, g.NodesSorted())
	c.Check(got.EdgesSorted(), check.DeepEquals, g.EdgesSorted())
	// a decoded graph iterates in the file's canonical order
	c.Check(got.Nodes(), check.DeepEquals, g.NodesSorted())
	c.Check(got.Edges(), check.DeepEquals, g.EdgesSorted())
}

func (s *codecSuite) TestRoundTripEmpty(c *check.C) {
	g, err := New(7)
	c.Assert(err, check.IsNil)
	var buf bytes.Buffer
	c.Assert(g.Encode(&buf), check.IsNil)
	got, err := Decode(&buf)
	c.Assert(err, check.IsNil)
	c.Check(got.K(), check.Equals, 7)
	c.Check(got.NodeCount(), check.Equals, 0)
	c.Check(got.EdgeCount(), check.Equals, 0)
}

func (s *codecSuite) TestEncodeCanonical(c *check.C) {
	a, err := New(3)
	c.Assert(err, check.IsNil)
	a.Ingest([]byte("ACGTACGT"))

	b, err := New(3)
	c.Assert(err, check.IsNil)
	edges := a.Edges()
	for i := len(edges) - 1; i >= 0; i-- {
		b.AddEdgeCount(edges[i].From, edges[i].To, edges[i].Count)
	}

	var abuf, bbuf bytes.Buffer
	c.Assert(a.Encode(&abuf), check.IsNil)
	c.Assert(b.Encode(&bbuf), check.IsNil)
	c.Check(abuf.Bytes(), check.DeepEquals, bbuf.Bytes())
}

func (s *codecSuite) TestFormat(c *check.C) {
	g, err := New(3)
	c.Assert(err, check.IsNil)
	g.AddEdgeCount("GT", "TA", 1)
	g.AddEdgeCount("AC", "CG", 2)
	var buf bytes.Buffer
	c.Assert(g.Encode(&buf), check.IsNil)
	c.Check(buf.Bytes(), check.DeepEquals, rawEncode(c, 3,
		[]string{"AC", "CG", "GT", "TA"},
		[][3]uint64{{0, 1, 2}, {2, 3, 1}}))
}

func (s *codecSuite) TestDecodeRaw(c *check.C) {
	g, err := Decode(bytes.NewReader(rawEncode(c, 2, []string{"a", "b"}, [][3]uint64{{0, 1, 3}})))
	c.Assert(err, check.IsNil)
	c.Check(g.K(), check.Equals, 2)
	c.Check(g.Multiplicity("a", "b"), check.Equals, uint32(3))
}

func (s *codecSuite) TestDecodeCorrupt(c *check.C) {
	valid := rawEncode(c, 2, []string{"a", "b"}, [][3]uint64{{0, 1, 3}})
	badVersion := rawEncode(c, 2, nil, nil)
	badVersion[4] = 99
	flippedBody := append([]byte(nil), valid...)
	flippedBody[10] ^= 0xff
	flippedSum := append([]byte(nil), valid...)
	flippedSum[len(flippedSum)-1] ^= 0xff
	for _, trial := range []struct {
		label string
		data  []byte
	}{
		{"empty", nil},
		{"bad magic", []byte("dBgX")},
		{"unsupported version", badVersion},
		{"unreasonable k", rawEncode(c, 1, nil, nil)},
		{"node table out of order", rawEncode(c, 2, []string{"b", "a"}, nil)},
		{"duplicate node", rawEncode(c, 2, []string{"a", "a"}, nil)},
		{"edge endpoint out of bounds", rawEncode(c, 2, []string{"a"}, [][3]uint64{{0, 1, 1}})},
		{"zero multiplicity", rawEncode(c, 2, []string{"a"}, [][3]uint64{{0, 0, 0}})},
		{"multiplicity overflow", rawEncode(c, 2, []string{"a"}, [][3]uint64{{0, 0, 1 << 33}})},
		{"edge table out of order", rawEncode(c, 2, []string{"a", "b"}, [][3]uint64{{0, 1, 1}, {0, 0, 1}})},
		{"duplicate edge", rawEncode(c, 2, []string{"a", "b"}, [][3]uint64{{0, 0, 1}, {0, 0, 1}})},
		{"trailing data", append(append([]byte(nil), valid...), 0)},
		{"flipped body byte", flippedBody},
		{"flipped checksum byte", flippedSum},
	} {
		c.Log(trial.label)
		g, err := Decode(bytes.NewReader(trial.data))
		c.Check(g, check.IsNil)
		c.Check(errors.Is(err, ErrCorruptData), check.Equals, true)
	}
}

func (s *codecSuite) TestDecodeTruncated(c *check.C) {
	g, err := New(3)
	c.Assert(err, check.IsNil)
	g.Ingest([]byte("ACGTACGT"))
	var buf bytes.Buffer
	c.Assert(g.Encode(&buf), check.IsNil)
	data := buf.Bytes()
	for n := len(data) - 1; n >= 0; n-- {
		got, err := Decode(bytes.NewReader(data[:n]))
		c.Check(got, check.IsNil)
		c.Check(errors.Is(err, ErrCorruptData), check.Equals, true)
	}
}

// rawEncode builds an encoded stream straight from the given tables,
// so tests can construct streams Encode itself would never produce.
func rawEncode(c *check.C, k int, nodes []string, edges [][3]uint64) []byte {
	h, err := blake2b.New256(nil)
	c.Assert(err, check.IsNil)
	var buf bytes.Buffer
	w := io.MultiWriter(&buf, h)
	writeUvarint := func(v uint64) {
		var tmp [binary.MaxVarintLen64]byte
		w.Write(tmp[:binary.PutUvarint(tmp[:], v)])
	}
	io.WriteString(w, "dBgF")
	writeUvarint(1)
	writeUvarint(uint64(k))
	writeUvarint(uint64(len(nodes)))
	writeUvarint(uint64(len(edges)))
	for _, id := range nodes {
		writeUvarint(uint64(len(id)))
		io.WriteString(w, id)
	}
	for _, e := range edges {
		writeUvarint(e[0])
		writeUvarint(e[1])
		writeUvarint(e[2])
	}
	buf.Write(h.Sum(nil))
	return buf.Bytes()
}
