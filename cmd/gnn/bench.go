package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

func runBench(opts options) error {
	if opts.iters <= 0 {
		return errors.Errorf("-iters must be positive, got %d", opts.iters)
	}
	p, err := newPipeline(opts)
	if err != nil {
		return err
	}

	// Warm up: builds every layer.
	if err := exceptions.TryCatch[error](func() { p.forward() }); err != nil {
		return err
	}

	bar := progressbar.NewOptions(opts.iters,
		progressbar.OptionSetDescription("forward"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("passes"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
	)
	start := time.Now()
	err = exceptions.TryCatch[error](func() {
		for i := 0; i < opts.iters; i++ {
			p.forward()
			_ = bar.Add(1)
		}
	})
	elapsed := time.Since(start)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	perPass := elapsed / time.Duration(opts.iters)
	graphs := float64(opts.batch*opts.iters) / elapsed.Seconds()
	nodes := uint64(opts.batch * opts.nodes * opts.iters)
	klog.V(1).Infof("bench: %d passes in %s", opts.iters, elapsed)
	fmt.Printf("%s passes in %s (%s per pass)\n", humanize.Comma(int64(opts.iters)), elapsed.Round(time.Millisecond), perPass)
	fmt.Printf("throughput: %s graphs/s, %s nodes processed\n",
		humanize.FormatFloat("#,###.#", graphs), humanize.Comma(int64(nodes)))
	return nil
}
