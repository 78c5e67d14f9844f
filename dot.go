package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"git.arvados.org/kmergraph.git/debruijn"
)

type dotter struct {
	sampleSize int
	title      string
	outputFile string
}

func (cmd *dotter) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.IntVar(&cmd.sampleSize, "n", 100, "number of nodes to keep, from the start of iteration order")
	flags.StringVar(&cmd.title, "title", "", "graph `label`")
	flags.StringVar(&cmd.outputFile, "o", "-", "output `file`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if cmd.sampleSize < 1 {
		err = debruijn.ErrInvalidSampleSize
		return 2
	}
	if flags.NArg() != 1 {
		err = fmt.Errorf("usage: %s [options] graph-file", prog)
		return 2
	}
	graph, err := loadGraph(flags.Arg(0), stdin)
	if err != nil {
		return 1
	}
	sub, err := graph.Sample(cmd.sampleSize)
	if err != nil {
		return 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if cmd.title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", cmd.title)
	}
	for _, id := range sub.Nodes() {
		fmt.Fprintf(&buf, "  %q;\n", id)
	}
	for _, e := range sub.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\"];\n", e.From, e.To, e.Count)
	}
	buf.WriteString("}\n")

	var output io.WriteCloser
	if cmd.outputFile == "-" {
		output = nopCloser{stdout}
	} else {
		output, err = os.OpenFile(cmd.outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
		if err != nil {
			return 1
		}
	}
	_, err = output.Write(buf.Bytes())
	if err != nil {
		output.Close()
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}
