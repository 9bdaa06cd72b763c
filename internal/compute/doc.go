// Package compute runs a real CPU workload serially and across goroutines.
//
// It is the measured counterpart of the parallel simulator: the same batch of
// independent tasks is executed one after another on a single goroutine and
// split into contiguous chunks across several workers.
//
//	w := compute.DefaultWorkload()
//	serial, _ := compute.NewSerialBackend().Run(ctx, w)
//	par, _ := compute.NewCPUBackend(0).Run(ctx, w)
//	fmt.Println(serial.Elapsed, par.Elapsed)
//
// Both backends produce the same Checksum for the same workload.
package compute
