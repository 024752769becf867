// Package main provides the gnn command line tool: it builds synthetic graph
// batches and runs them through GCN, DiffPool and SegmentPool.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

type options struct {
	batch    int
	nodes    int
	features int
	clusters int
	hidden   int
	cheb     bool
	mode     string
	seed     int64
	iters    int
}

func (o *options) register(fs *flag.FlagSet, withIters bool) {
	fs.IntVar(&o.batch, "batch", 4, "Number of graphs per batch.")
	fs.IntVar(&o.nodes, "nodes", 8, "Nodes per graph.")
	fs.IntVar(&o.features, "features", 3, "Input features per node.")
	fs.IntVar(&o.clusters, "clusters", 2, "DiffPool clusters per graph (0: hidden size).")
	fs.IntVar(&o.hidden, "hidden", 16, "GCN output features.")
	fs.BoolVar(&o.cheb, "cheb", false, "Use a two-hop Chebyshev GCN.")
	fs.StringVar(&o.mode, "mode", "max", "Readout pooling mode: max or mean.")
	fs.Int64Var(&o.seed, "seed", 42, "Random seed for features and weights.")
	if withIters {
		fs.IntVar(&o.iters, "iters", 100, "Number of forward passes.")
	}
}

func usage() {
	fmt.Printf("gnn %s - graph convolution, DiffPool and segment pooling\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Run one forward pass and print the shapes of every stage")
	fmt.Println("  bench      Time repeated forward passes")
	fmt.Println()
	fmt.Println("Run 'gnn <command> -h' for the flags of a command.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cmd := os.Args[1]
	var run func(options) error
	switch cmd {
	case "version":
		fmt.Printf("gnn %s\n", version)
		return
	case "demo":
		run = runDemo
	case "bench":
		run = runBench
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	var opts options
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	klog.InitFlags(fs)
	opts.register(fs, cmd == "bench")
	must.M(fs.Parse(os.Args[2:]))
	defer klog.Flush()

	klog.V(1).Infof("%s: batch=%d nodes=%d features=%d hidden=%d clusters=%d cheb=%v mode=%s seed=%d",
		cmd, opts.batch, opts.nodes, opts.features, opts.hidden, opts.clusters, opts.cheb, opts.mode, opts.seed)
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "gnn %s: %+v\n", cmd, err)
		os.Exit(1)
	}
}
