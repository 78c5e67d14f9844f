package main

import (
	"flag"
	"fmt"
	"io"
)

type statter struct{}

func (cmd *statter) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	if flags.NArg() != 1 {
		err = fmt.Errorf("usage: %s graph-file", prog)
		return 2
	}
	graph, err := loadGraph(flags.Arg(0), stdin)
	if err != nil {
		return 1
	}
	fmt.Fprintf(stdout, "k\t%d\n", graph.K())
	fmt.Fprintf(stdout, "nodes\t%d\n", graph.NodeCount())
	fmt.Fprintf(stdout, "edges\t%d\n", graph.EdgeCount())
	fmt.Fprintf(stdout, "kmers\t%d\n", graph.Observations())
	return 0
}
