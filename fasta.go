package main

import (
	"bufio"
	"bytes"
	"io"
)

// scanFasta reads FASTA data from rdr and calls flush once per
// non-empty sequence record. Header lines ('>') delimit records; body
// lines are trimmed of surrounding whitespace and concatenated.
// Sequence bytes pass through verbatim: no case folding, no alphabet
// check, so ambiguity codes and other annotations reach the graph
// unchanged. The seq slice is reused between calls.
func scanFasta(rdr io.Reader, flush func(seq []byte) error) error {
	var fasta []byte
	scanner := bufio.NewScanner(rdr)
	scanner.Buffer(nil, 640*1024*1024)
	for scanner.Scan() {
		buf := scanner.Bytes()
		if len(buf) == 0 {
			continue
		}
		if buf[0] == '>' {
			if len(fasta) > 0 {
				if err := flush(fasta); err != nil {
					return err
				}
			}
			fasta = fasta[:0]
		} else {
			fasta = append(fasta, bytes.TrimSpace(buf)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(fasta) > 0 {
		return flush(fasta)
	}
	return nil
}
