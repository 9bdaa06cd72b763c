package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gpunexus/internal/parallel"
	"github.com/san-kum/gpunexus/internal/tui"
)

type raceOptions struct {
	preset   string
	seed     int64
	deadline time.Duration
	csv      bool
	live     bool
}

func newRaceCommand(root *rootOptions) *cobra.Command {
	opts := &raceOptions{}
	cmd := &cobra.Command{
		Use:   "race",
		Short: "run the serial vs parallel simulation headless",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRace(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.preset, "preset", "", "simulation preset")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "lane jitter seed (0 = time based)")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", parallel.DefaultDeadline, "run deadline")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "print the timeline as csv")
	cmd.Flags().BoolVar(&opts.live, "live", false, "draw progress while running")
	return cmd
}

// timeline records overall completion after every tick.
type timeline struct {
	mu       sync.Mutex
	elapsed  []time.Duration
	serial   []float64
	parallel []float64
}

func (t *timeline) OnTick(s parallel.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed = append(t.elapsed, s.Elapsed)
	t.serial = append(t.serial, 100*s.Serial.Fraction())
	t.parallel = append(t.parallel, 100*s.Lanes.Fraction())
}

func runRace(cmd *cobra.Command, root *rootOptions, opts *raceOptions) error {
	cfg := *root.cfg
	if opts.preset != "" {
		if err := cfg.ApplyPreset(opts.preset); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = opts.seed
	}
	if cmd.Flags().Changed("deadline") {
		cfg.Simulation.Deadline = opts.deadline
	}

	sim, err := parallel.New(cfg.Parallel(), parallel.WithLogger(root.logger))
	if err != nil {
		return err
	}

	tl := &timeline{}
	sim.AddObserver(tl)
	if opts.live && !opts.csv {
		r := tui.NewLiveRenderer(root.stdout, 30)
		r.Start()
		defer r.Stop()
		sim.AddObserver(r)
	}

	snap, err := race(cmd.Context(), sim)
	if err != nil {
		return err
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if opts.csv {
		return writeTimelineCSV(root.stdout, tl)
	}
	return printRace(root.stdout, sim.Config(), snap, tl)
}

// race runs one simulation to its end.
func race(ctx context.Context, sim *parallel.Simulator) (parallel.Snapshot, error) {
	sim.Start(ctx)
	select {
	case <-sim.Done():
	case <-ctx.Done():
		sim.Stop()
		return sim.Snapshot(), ctx.Err()
	}
	return sim.Snapshot(), nil
}

func writeTimelineCSV(out io.Writer, tl *timeline) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"elapsed_ms", "serial", "parallel"}); err != nil {
		return err
	}
	for i := range tl.elapsed {
		row := []string{
			strconv.FormatInt(tl.elapsed[i].Milliseconds(), 10),
			strconv.FormatFloat(tl.serial[i], 'f', 2, 64),
			strconv.FormatFloat(tl.parallel[i], 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func printRace(out io.Writer, cfg parallel.Config, snap parallel.Snapshot, tl *timeline) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	fmt.Fprintf(w, "run\t%s\n", snap.RunID)
	fmt.Fprintf(w, "outcome\t%s\n", snap.Outcome)
	fmt.Fprintf(w, "elapsed\t%s\n", snap.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "deadline\t%s\n", cfg.Deadline)
	fmt.Fprintf(w, "serial rate\t%.1f tasks/s\n", cfg.SerialRate())
	fmt.Fprintf(w, "serial tasks\t%d/%d\n", snap.Serial.Completed, snap.Serial.Quota)
	fmt.Fprintf(w, "serial done at\t%s\n", doneAt(snap.SerialDoneAt))
	fmt.Fprintf(w, "parallel lanes\t%d/%d\n", snap.Lanes.Finished(), len(snap.Lanes))
	fmt.Fprintf(w, "parallel done at\t%s\n", doneAt(snap.ParallelDoneAt))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(tl.serial) < 2 {
		return nil
	}
	graph := asciigraph.PlotMany([][]float64{tl.serial, tl.parallel},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption("completion % over time (red serial, green parallel)"),
	)
	_, err := fmt.Fprintf(out, "\n%s\n", graph)
	return err
}

func doneAt(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
