package main

import (
	"compress/gzip"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"git.arvados.org/arvados.git/sdk/go/arvados"
	"git.arvados.org/kmergraph.git/debruijn"
	log "github.com/sirupsen/logrus"
)

type builder struct {
	k           int
	outputFile  string
	projectUUID string
	runLocal    bool
	seqCount    int64
}

func (cmd *builder) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.IntVar(&cmd.k, "k", 0, "k-mer window `length`, at least 2")
	flags.StringVar(&cmd.outputFile, "o", "-", "output `file`")
	flags.StringVar(&cmd.projectUUID, "project", "", "project `UUID` for output data")
	flags.BoolVar(&cmd.runLocal, "local", false, "run on local host (default: run in an arvados container)")
	priority := flags.Int("priority", 500, "container request priority")
	pprof := flags.String("pprof", "", "serve Go profile data at http://`[addr]:port`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if cmd.k < 2 {
		err = debruijn.ErrInvalidK
		return 2
	} else if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	if *pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprof, nil))
		}()
	}

	if !cmd.runLocal {
		if cmd.outputFile != "-" {
			err = errors.New("cannot specify output file in container mode: not implemented")
			return 1
		}
		runner := arvadosContainerRunner{
			Name:        "kmergraph build",
			Client:      arvados.NewClientFromEnv(),
			ProjectUUID: cmd.projectUUID,
			RAM:         16000000000,
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
		cmd.outputFile = "/mnt/output/graph.dbg"
		runner.Args = append([]string{"build", "-local=true", "-k", fmt.Sprint(cmd.k), "-o", cmd.outputFile}, inputs...)
		var output string
		output, err = runner.Run()
		if err != nil {
			return 1
		}
		fmt.Fprintln(stdout, output+"/graph.dbg")
		return 0
	}

	infiles, err := listFastaFiles(flags.Args())
	if err != nil {
		return 1
	}

	graph, err := debruijn.New(cmd.k)
	if err != nil {
		return 1
	}
	go func() {
		for range time.Tick(10 * time.Minute) {
			log.Printf("%d sequences ingested", atomic.LoadInt64(&cmd.seqCount))
		}
	}()
	starttime := time.Now()
	for _, infile := range infiles {
		log.Printf("%s starting", infile)
		err = cmd.ingestFasta(graph, infile, stdin)
		if err != nil {
			return 1
		}
		log.Printf("%s done, %d nodes, %d edges so far", infile, graph.NodeCount(), graph.EdgeCount())
	}
	log.Printf("ingest done in %v: %d sequences, %d nodes, %d distinct edges, %d k-mer observations",
		time.Since(starttime), atomic.LoadInt64(&cmd.seqCount), graph.NodeCount(), graph.EdgeCount(), graph.Observations())

	err = writeGraph(graph, cmd.outputFile, stdout)
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *builder) ingestFasta(graph *debruijn.Graph, infile string, stdin io.Reader) error {
	var input io.ReadCloser
	if infile == "-" {
		input = ioutil.NopCloser(stdin)
	} else {
		f, err := os.Open(infile)
		if err != nil {
			return err
		}
		input = f
	}
	defer input.Close()
	if strings.HasSuffix(infile, ".gz") {
		gz, err := gzip.NewReader(input)
		if err != nil {
			return fmt.Errorf("%s: gzip: %s", infile, err)
		}
		defer gz.Close()
		input = gz
	}
	err := scanFasta(input, func(seq []byte) error {
		graph.Ingest(seq)
		atomic.AddInt64(&cmd.seqCount, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %s", infile, err)
	}
	return nil
}

// listFastaFiles expands directory arguments into their FASTA
// members, sorted by name; explicit file arguments and "-" (stdin)
// are taken as given.
func listFastaFiles(paths []string) (files []string, err error) {
	for _, path := range paths {
		if path == "-" {
			files = append(files, path)
			continue
		}
		if fi, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: stat failed: %s", path, err)
		} else if !fi.IsDir() {
			files = append(files, path)
			continue
		}
		d, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: open failed: %s", path, err)
		}
		names, err := d.Readdirnames(0)
		d.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: readdir failed: %s", path, err)
		}
		sort.Strings(names)
		for _, name := range names {
			if isFasta(name) {
				files = append(files, filepath.Join(path, name))
			}
		}
	}
	return
}

func isFasta(name string) bool {
	for _, suffix := range []string{".fasta", ".fasta.gz", ".fa", ".fa.gz"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
