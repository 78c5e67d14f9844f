package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"

	"git.arvados.org/arvados.git/sdk/go/arvados"
	"git.arvados.org/kmergraph.git/debruijn"
	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
)

// exportNumpy writes the edge multiplicity matrix of one or more
// graph files: one row per distinct edge seen in any input, one
// column per input, zero where a graph lacks the edge.
type exportNumpy struct {
	output io.Writer
}

func (cmd *exportNumpy) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	pprof := flags.String("pprof", "", "serve Go profile data at http://`[addr]:port`")
	runlocal := flags.Bool("local", false, "run on local host (default: run in an arvados container)")
	projectUUID := flags.String("project", "", "project `UUID` for output data")
	priority := flags.Int("priority", 500, "container request priority")
	outputFilename := flags.String("o", "", "output `file` (default: stdout)")
	labelsFilename := flags.String("labels", "", "also write one \"from to\" row label per line to `file`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}
	cmd.output = stdout

	if *pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprof, nil))
		}()
	}

	if !*runlocal {
		if *outputFilename != "" || *labelsFilename != "" {
			err = errors.New("cannot specify output file in container mode: not implemented")
			return 1
		}
		runner := arvadosContainerRunner{
			Name:        "kmergraph export-numpy",
			Client:      arvados.NewClientFromEnv(),
			ProjectUUID: *projectUUID,
			RAM:         32000000000,
			VCPUs:       2,
			Priority:    *priority,
		}
		inputs := flags.Args()
		for i := range inputs {
			err = runner.TranslatePaths(&inputs[i])
			if err != nil {
				return 1
			}
		}
		runner.Args = append([]string{"export-numpy", "-local=true",
			"-o", "/mnt/output/matrix.npy",
			"-labels", "/mnt/output/labels.txt"}, inputs...)
		var output string
		output, err = runner.Run()
		if err != nil {
			return 1
		}
		fmt.Fprintln(stdout, output+"/matrix.npy")
		return 0
	}

	graphs := make([]*debruijn.Graph, flags.NArg())
	for i, fnm := range flags.Args() {
		log.Printf("%s loading", fnm)
		graphs[i], err = loadGraph(fnm, stdin)
		if err != nil {
			return 1
		}
	}

	type edgeID struct{ from, to string }
	rowOf := map[edgeID]int{}
	var rows []edgeID
	for _, graph := range graphs {
		for _, e := range graph.EdgesSorted() {
			id := edgeID{e.From, e.To}
			if _, ok := rowOf[id]; !ok {
				rowOf[id] = len(rows)
				rows = append(rows, id)
			}
		}
	}
	cols := len(graphs)
	out := make([]uint32, len(rows)*cols)
	for col, graph := range graphs {
		for _, e := range graph.EdgesSorted() {
			out[rowOf[edgeID{e.From, e.To}]*cols+col] = e.Count
		}
	}
	log.Printf("matrix %d rows x %d cols", len(rows), cols)

	if *labelsFilename != "" {
		var lf *os.File
		lf, err = os.OpenFile(*labelsFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
		if err != nil {
			return 1
		}
		bufl := bufio.NewWriter(lf)
		for _, id := range rows {
			fmt.Fprintf(bufl, "%s %s\n", id.from, id.to)
		}
		err = bufl.Flush()
		if err == nil {
			err = lf.Close()
		}
		if err != nil {
			return 1
		}
	}

	var output io.WriteCloser
	if *outputFilename == "" {
		output = nopCloser{cmd.output}
	} else {
		output, err = os.OpenFile(*outputFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
		if err != nil {
			return 1
		}
		defer output.Close()
	}
	bufw := bufio.NewWriter(output)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return 1
	}
	npw.Shape = []int{len(rows), cols}
	err = npw.WriteUint32(out)
	if err != nil {
		return 1
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
