package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"strings"

	"git.arvados.org/kmergraph.git/debruijn"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// differ compares two graph files line-wise over their canonical text
// dumps. Exit status is 0 when the graphs are identical, 1 when they
// differ, 2 on trouble.
type differ struct{}

func (cmd *differ) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if flags.NArg() != 2 {
		err = fmt.Errorf("usage: %s a.dbg b.dbg", prog)
		return 2
	}
	var dumps [2]string
	for i, fnm := range flags.Args() {
		var graph *debruijn.Graph
		graph, err = loadGraph(fnm, stdin)
		if err != nil {
			return 2
		}
		dumps[i] = dumpGraph(graph)
	}
	if dumps[0] == dumps[1] {
		return 0
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(dumps[0], dumps[1])
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	out := bufio.NewWriter(stdout)
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			fmt.Fprintf(out, "%s%s\n", prefix, line)
		}
	}
	err = out.Flush()
	if err != nil {
		return 2
	}
	return 1
}

// dumpGraph renders a graph in its canonical line form: the k line,
// then one line per node in lexicographic order, then one line per
// edge in (from, to) order with its multiplicity.
func dumpGraph(graph *debruijn.Graph) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "k %d\n", graph.K())
	for _, id := range graph.NodesSorted() {
		fmt.Fprintf(&buf, "node %s\n", id)
	}
	for _, e := range graph.EdgesSorted() {
		fmt.Fprintf(&buf, "edge %s %s %d\n", e.From, e.To, e.Count)
	}
	return buf.String()
}
