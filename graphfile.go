package main

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"git.arvados.org/kmergraph.git/debruijn"
)

// loadGraph reads one encoded graph from the named file, or from
// stdin when fnm is "-".
func loadGraph(fnm string, stdin io.Reader) (*debruijn.Graph, error) {
	var rdr io.ReadCloser
	if fnm == "-" {
		rdr = ioutil.NopCloser(stdin)
	} else {
		f, err := os.Open(fnm)
		if err != nil {
			return nil, err
		}
		rdr = f
	}
	defer rdr.Close()
	graph, err := debruijn.Decode(rdr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fnm, err)
	}
	return graph, nil
}

// writeGraph encodes the graph to the named file, or to stdout when
// fnm is "-".
func writeGraph(graph *debruijn.Graph, fnm string, stdout io.Writer) error {
	var output io.WriteCloser
	if fnm == "-" {
		output = nopCloser{stdout}
	} else {
		f, err := os.OpenFile(fnm, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
		if err != nil {
			return err
		}
		output = f
	}
	bufw := bufio.NewWriter(output)
	err := graph.Encode(bufw)
	if err == nil {
		err = bufw.Flush()
	}
	if err != nil {
		output.Close()
		return fmt.Errorf("%s: %s", fnm, err)
	}
	return output.Close()
}
