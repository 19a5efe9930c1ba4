package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"lsmkv/pkg/db"

	"github.com/spf13/cobra"
)

var (
	benchOps         int
	benchConcurrency int
)

func init() {
	benchCmd.Flags().IntVar(&benchOps, "ops", 10_000, "operations per phase")
	benchCmd.Flags().IntVar(&benchConcurrency, "concurrency", 4, "number of goroutines")
	rootCmd.AddCommand(benchCmd)
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "measure write, read and scan throughput",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchOps <= 0 || benchConcurrency <= 0 {
			return fmt.Errorf("ops and concurrency must be positive")
		}
		return withDAO(func(dao db.DAO) error {
			runBench(cmd.OutOrStdout(), dao, benchOps, benchConcurrency)
			return nil
		})
	},
}

type benchResult struct {
	TotalOps      int
	SuccessfulOps int
	FailedOps     int
	Duration      time.Duration
	OpsPerSec     float64
	AvgLatency    time.Duration
	MinLatency    time.Duration
	MaxLatency    time.Duration
}

func runBench(w io.Writer, dao db.DAO, ops, concurrency int) {
	key := func(g, j int) []byte { return []byte(fmt.Sprintf("bench_key_%d_%d", g, j)) }

	fmt.Fprintf(w, "Writes (%d operations, %d goroutines)\n", ops, concurrency)
	printBenchResult(w, runPhase(ops, concurrency, func(g, j int) error {
		return dao.Upsert(key(g, j), []byte(fmt.Sprintf("bench_value_%d_%d", g, j)))
	}))

	fmt.Fprintf(w, "\nReads (%d operations, %d goroutines)\n", ops, concurrency)
	printBenchResult(w, runPhase(ops, concurrency, func(g, j int) error {
		_, found, err := db.Get(dao, key(g, j))
		if err == nil && !found {
			err = fmt.Errorf("key %s not found", key(g, j))
		}
		return err
	}))

	scans := ops / 100
	if scans == 0 {
		scans = 1
	}
	fmt.Fprintf(w, "\nScans of 100 records (%d operations, %d goroutines)\n", scans, concurrency)
	printBenchResult(w, runPhase(scans, concurrency, func(g, j int) error {
		return db.SearchRange(dao, key(g, j), 100, func(db.Record) error { return nil })
	}))
}

// runPhase spreads total calls of op over concurrency goroutines. op gets the
// goroutine id and the per-goroutine sequence number.
func runPhase(total, concurrency int, op func(g, j int) error) benchResult {
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successful int
		failed     int
		latencies  = make([]time.Duration, 0, total)
	)

	perGoroutine := total / concurrency
	remainder := total % concurrency

	start := time.Now()
	for g := 0; g < concurrency; g++ {
		n := perGoroutine
		if g < remainder {
			n++
		}
		wg.Add(1)
		go func(g, n int) {
			defer wg.Done()
			for j := 0; j < n; j++ {
				opStart := time.Now()
				err := op(g, j)
				latency := time.Since(opStart)

				mu.Lock()
				if err == nil {
					successful++
				} else {
					failed++
				}
				latencies = append(latencies, latency)
				mu.Unlock()
			}
		}(g, n)
	}
	wg.Wait()
	duration := time.Since(start)

	res := benchResult{
		TotalOps:      total,
		SuccessfulOps: successful,
		FailedOps:     failed,
		Duration:      duration,
	}
	if duration > 0 {
		res.OpsPerSec = float64(successful) / duration.Seconds()
	}
	if len(latencies) == 0 {
		return res
	}

	var sum time.Duration
	res.MinLatency, res.MaxLatency = latencies[0], latencies[0]
	for _, lat := range latencies {
		res.MinLatency = min(res.MinLatency, lat)
		res.MaxLatency = max(res.MaxLatency, lat)
		sum += lat
	}
	res.AvgLatency = sum / time.Duration(len(latencies))
	return res
}

func printBenchResult(w io.Writer, r benchResult) {
	fmt.Fprintf(w, "  Total Operations: %d\n", r.TotalOps)
	fmt.Fprintf(w, "  Successful: %d\n", r.SuccessfulOps)
	fmt.Fprintf(w, "  Failed: %d\n", r.FailedOps)
	fmt.Fprintf(w, "  Duration: %v\n", r.Duration)
	fmt.Fprintf(w, "  Operations/sec: %.2f\n", r.OpsPerSec)
	fmt.Fprintf(w, "  Avg Latency: %v\n", r.AvgLatency)
	fmt.Fprintf(w, "  Min Latency: %v\n", r.MinLatency)
	fmt.Fprintf(w, "  Max Latency: %v\n", r.MaxLatency)
}
