package debruijn

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"math"

	"golang.org/x/crypto/blake2b"
)

// ErrCorruptData classifies every Decode failure: malformed header,
// declared counts not matched by the records present, edge indices
// outside the node table, truncation, checksum mismatch. Match with
// errors.Is.
var ErrCorruptData = errors.New("debruijn: corrupt graph data")

// File format, all integers unsigned varints:
//
//	magic      "dBgF"
//	version    1
//	k          window length the graph was built with
//	node count
//	edge count distinct edges, not counting multiplicity
//	node table node count × (length, raw bytes), lexicographic order
//	edge table edge count × (from, to, multiplicity), ordered by
//	           (from, to); from and to index into the node table
//	checksum   32 bytes, BLAKE2b-256 of every preceding byte
const (
	codecMagic   = "dBgF"
	codecVersion = 1

	// Caps on decoded sizes, so a damaged varint cannot demand an
	// absurd allocation before the checksum is ever reached.
	maxCodecK       = 1 << 24
	maxCodecNodeLen = 1 << 24
)

// Encode writes the graph to w in the format above. Node and edge
// tables are written in canonical sorted order, so equal graphs
// produce identical bytes regardless of construction order.
func (g *Graph) Encode(w io.Writer) error {
	h, err := blake2b.New256(nil)
	if err != nil {
		return err
	}
	bufw := bufio.NewWriter(io.MultiWriter(w, h))
	writeUvarint := func(v uint64) {
		var buf [binary.MaxVarintLen64]byte
		bufw.Write(buf[:binary.PutUvarint(buf[:], v)])
	}

	nodes := g.NodesSorted()
	rank := make(map[string]int, len(nodes))
	for i, id := range nodes {
		rank[id] = i
	}

	bufw.WriteString(codecMagic)
	writeUvarint(codecVersion)
	writeUvarint(uint64(g.k))
	writeUvarint(uint64(len(nodes)))
	writeUvarint(uint64(len(g.edges)))
	for _, id := range nodes {
		writeUvarint(uint64(len(id)))
		bufw.WriteString(id)
	}
	for _, e := range g.EdgesSorted() {
		writeUvarint(uint64(rank[e.From]))
		writeUvarint(uint64(rank[e.To]))
		writeUvarint(uint64(e.Count))
	}
	if err := bufw.Flush(); err != nil {
		return err
	}
	_, err = w.Write(h.Sum(nil))
	return err
}

// Decode reads one encoded graph from r and requires the stream to
// end after its checksum. It is all or nothing: on any error no graph
// is returned. The decoded graph's iteration order is the file's
// canonical sorted order.
func Decode(r io.Reader) (*Graph, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	hr := &hashedReader{r: bufio.NewReader(r), h: h}

	magic := make([]byte, len(codecMagic))
	if _, err := io.ReadFull(hr, magic); err != nil {
		return nil, decodeErr(err)
	}
	if string(magic) != codecMagic {
		return nil, corrupt("bad magic %q", magic)
	}
	version, err := binary.ReadUvarint(hr)
	if err != nil {
		return nil, decodeErr(err)
	}
	if version != codecVersion {
		return nil, corrupt("unsupported format version %d", version)
	}
	k, err := binary.ReadUvarint(hr)
	if err != nil {
		return nil, decodeErr(err)
	}
	if k < 2 || k > maxCodecK {
		return nil, corrupt("unreasonable k %d", k)
	}
	nnodes, err := binary.ReadUvarint(hr)
	if err != nil {
		return nil, decodeErr(err)
	}
	nedges, err := binary.ReadUvarint(hr)
	if err != nil {
		return nil, decodeErr(err)
	}
	if nnodes > math.MaxInt32 {
		return nil, corrupt("node count %d too large", nnodes)
	}

	g, err := New(int(k))
	if err != nil {
		return nil, err
	}
	var prev string
	for i := uint64(0); i < nnodes; i++ {
		l, err := binary.ReadUvarint(hr)
		if err != nil {
			return nil, decodeErr(err)
		}
		if l > maxCodecNodeLen {
			return nil, corrupt("node %d length %d too large", i, l)
		}
		buf := make([]byte, l)
		if _, err := io.ReadFull(hr, buf); err != nil {
			return nil, decodeErr(err)
		}
		id := string(buf)
		if i > 0 && id <= prev {
			return nil, corrupt("node table out of order at entry %d", i)
		}
		prev = id
		g.AddNode(id)
	}
	var prevFrom, prevTo uint64
	for i := uint64(0); i < nedges; i++ {
		from, err := binary.ReadUvarint(hr)
		if err != nil {
			return nil, decodeErr(err)
		}
		to, err := binary.ReadUvarint(hr)
		if err != nil {
			return nil, decodeErr(err)
		}
		n, err := binary.ReadUvarint(hr)
		if err != nil {
			return nil, decodeErr(err)
		}
		if from >= nnodes || to >= nnodes {
			return nil, corrupt("edge %d references a node outside the node table", i)
		}
		if n == 0 || n > math.MaxUint32 {
			return nil, corrupt("edge %d multiplicity %d out of range", i, n)
		}
		if i > 0 && (from < prevFrom || (from == prevFrom && to <= prevTo)) {
			return nil, corrupt("edge table out of order at entry %d", i)
		}
		prevFrom, prevTo = from, to
		g.addEdge(int32(from), int32(to), uint32(n))
	}

	// The checksum itself is read from the underlying reader so it
	// does not feed the running hash.
	want := h.Sum(nil)
	got := make([]byte, len(want))
	if _, err := io.ReadFull(hr.r, got); err != nil {
		return nil, decodeErr(err)
	}
	if !bytes.Equal(want, got) {
		return nil, corrupt("checksum mismatch")
	}
	if _, err := hr.r.ReadByte(); err == nil {
		return nil, corrupt("trailing data after checksum")
	} else if err != io.EOF {
		return nil, decodeErr(err)
	}
	return g, nil
}

// hashedReader feeds everything read through it into a running hash,
// so the checksum trailer can be verified against the bytes actually
// parsed.
type hashedReader struct {
	r   *bufio.Reader
	h   hash.Hash
	one [1]byte
}

func (hr *hashedReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	hr.h.Write(p[:n])
	return n, err
}

func (hr *hashedReader) ReadByte() (byte, error) {
	b, err := hr.r.ReadByte()
	if err != nil {
		return 0, err
	}
	hr.one[0] = b
	hr.h.Write(hr.one[:])
	return b, nil
}

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrCorruptData}, args...)...)
}

// decodeErr classifies a read failure during Decode. Deserialization
// is fatal as a whole, so even an underlying I/O error means the load
// yields no graph; io.EOF in the middle of a record means the
// declared counts promised more data than the stream holds.
func decodeErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return corrupt("truncated stream")
	}
	return fmt.Errorf("%w: %s", ErrCorruptData, err)
}
