// Package parallel simulates one serial processor against a bank of parallel
// lanes so the two throughputs can be compared side by side.
//
// A run is driven by three timers owned by a single goroutine:
//
//   - the serial ticker advances one task at a time until the quota is met
//   - the parallel ticker advances every lane with a bounded random jitter
//   - the deadline timer forces both trackers to 100 and ends the run
//
// A run also ends as soon as both tickers have finished on their own, so the
// deadline only bounds how long a run can last.
//
// # Example
//
//	s, _ := parallel.New(parallel.DefaultConfig())
//	s.Start(ctx)
//	<-s.Done()
//	snap := s.Snapshot()
//
// Only one run may be active at a time; Start returns false while running.
package parallel
