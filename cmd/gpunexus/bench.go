package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gpunexus/internal/compute"
)

func newBenchCommand(root *rootOptions) *cobra.Command {
	w := compute.DefaultWorkload()
	var workers int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "run a real CPU workload serially and across goroutines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, root, w, workers)
		},
	}
	cmd.Flags().IntVar(&w.Tasks, "tasks", w.Tasks, "number of tasks")
	cmd.Flags().IntVar(&w.Size, "size", w.Size, "matrix size per task")
	cmd.Flags().IntVar(&w.Rounds, "rounds", w.Rounds, "products per task")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = one per CPU)")
	return cmd
}

func runBench(cmd *cobra.Command, root *rootOptions, w compute.Workload, workers int) error {
	ctx := cmd.Context()
	backends := []compute.Backend{compute.NewSerialBackend(), compute.NewCPUBackend(workers)}

	results := make([]compute.Result, 0, len(backends))
	for _, b := range backends {
		root.logger.Debugf("running %s backend", b.Name())
		res, err := b.Run(ctx, w)
		if err != nil {
			return fmt.Errorf("%s backend: %w", b.Name(), err)
		}
		results = append(results, res)
	}

	out := root.stdout
	fmt.Fprintf(out, "benchmarking %d tasks of size %d\n\n", w.Tasks, w.Size)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tWORKERS\tTIME\tTASKS/SEC\tCHECKSUM")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%v\t%.1f\t%.6f\n",
			r.Backend, r.Workers, r.Elapsed.Round(time.Microsecond), r.Throughput(), r.Checksum)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	serial, par := results[0], results[1]
	if par.Elapsed > 0 {
		fmt.Fprintf(out, "\nspeedup: %.2fx\n", serial.Elapsed.Seconds()/par.Elapsed.Seconds())
	}

	span := max(serial.Elapsed, par.Elapsed)
	graph := asciigraph.PlotMany([][]float64{serial.Timeline(span, 80), par.Timeline(span, 80)},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption("tasks completed % over time (red serial, green parallel)"),
	)
	_, err := fmt.Fprintf(out, "\n%s\n", graph)
	return err
}
