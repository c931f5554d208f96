// Copyright 2024 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Command stackbench times push, pop and mixed workloads on the linked
// stack and reports the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"contrib.go.opencensus.io/exporter/jaeger"
	"github.com/golang/glog"
	"github.com/linkstack/linkstack/internal/bench"
	"github.com/linkstack/linkstack/internal/buildinfo"
	"github.com/linkstack/linkstack/internal/exporter"
	"github.com/linkstack/linkstack/internal/metrics"
	"github.com/linkstack/linkstack/internal/stack"
	"github.com/spf13/afero"
	"go.opencensus.io/trace"
)

var (
	huge           = flag.String("huge", "ask", "Whether to run the 1,000,000 element pass: ask, yes or no.")
	useArena       = flag.Bool("arena", false, "Allocate stack nodes from a free-list arena instead of the heap.")
	arenaChunkSize = flag.Int("arena_chunk_size", 256, "Nodes per arena chunk when --arena is set.")
	noColor        = flag.Bool("no_color", false, "Disable coloured PASS/FAIL output.")
	runID          = flag.String("run_id", "", "Label for this run's metrics.  A random ksuid if empty.")

	report       = flag.String("report", "", "If set, write the benchmark metrics to this file, or to stdout if \"-\".")
	reportFormat = flag.String("report_format", "prometheus", "Format of --report: prometheus or json.")
	omitRunLabel = flag.Bool("omit_run_label", false, "Do not put the run id label on reported metrics.")

	version = flag.Bool("version", false, "Print stackbench version information.")

	// Tracing.
	jaegerEndpoint    = flag.String("jaeger_endpoint", "", "If set, collector endpoint URL of jaeger thrift service")
	traceSamplePeriod = flag.Int("trace_sample_period", 0, "Sample period for traces.  If non-zero, every nth trace will be sampled.")
)

var (
	// Branch as well as Version and Revision identifies where in the git
	// history the build came from, as supplied by the linker.
	Branch   = "unknown"
	Version  = "unknown"
	Revision = "unknown"
)

func main() {
	buildInfo := buildinfo.BuildInfo{
		Program:  "stackbench",
		Branch:   Branch,
		Version:  Version,
		Revision: Revision,
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", buildInfo.String())
		fmt.Fprintf(os.Stderr, "\nUsage:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Println(buildInfo.String())
		os.Exit(0)
	}
	glog.Info(buildInfo.String())
	glog.Infof("Commandline: %q", os.Args)
	if len(flag.Args()) > 0 {
		glog.Exitf("Too many extra arguments specified: %q", flag.Args())
	}
	hugeMode, err := bench.ParseHugeMode(*huge)
	if err != nil {
		glog.Exit(err)
	}

	if *traceSamplePeriod > 0 {
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.ProbabilitySampler(1 / float64(*traceSamplePeriod))})
	}
	var flushTraces func()
	if *jaegerEndpoint != "" {
		je, err := jaeger.NewExporter(jaeger.Options{
			CollectorEndpoint: *jaegerEndpoint,
			Process: jaeger.Process{
				ServiceName: "stackbench",
			},
		})
		if err != nil {
			glog.Exitf("Couldn't create jaeger exporter: %s", err)
		}
		trace.RegisterExporter(je)
		flushTraces = je.Flush
	}
	exit := func(code int) {
		if flushTraces != nil {
			flushTraces()
		}
		glog.Flush()
		os.Exit(code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigint
		glog.Infof("Received %+v, stopping after the current benchmark...", sig)
		cancel()
		sig = <-sigint
		glog.Infof("Received %+v, exiting...", sig)
		exit(1)
	}()

	store := metrics.NewStore()
	opts := []bench.Option{
		bench.Store(store),
		bench.Huge(hugeMode),
		bench.RunID(*runID),
	}
	if *useArena {
		chunk := *arenaChunkSize
		opts = append(opts, bench.Allocator(func() stack.Allocator {
			return stack.NewArena(stack.ArenaChunkSize(chunk))
		}))
	}
	if *noColor {
		opts = append(opts, bench.NoColor())
	}
	r, err := bench.NewRunner(opts...)
	if err != nil {
		glog.Exit(err)
	}
	runErr := r.Run(ctx)

	if *report != "" {
		eOpts := []exporter.Option{exporter.StackCounters()}
		if *omitRunLabel {
			eOpts = append(eOpts, exporter.OmitRunLabel())
		}
		e, err := exporter.New(store, eOpts...)
		if err != nil {
			glog.Exit(err)
		}
		if *report == "-" {
			err = e.Write(os.Stdout, *reportFormat)
		} else {
			err = e.WriteFile(afero.NewOsFs(), *report, *reportFormat)
		}
		if err != nil {
			glog.Error(err)
			exit(1)
		}
	}
	if runErr != nil {
		glog.Error(runErr)
		exit(1)
	}
	exit(0)
}
