package perf

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/basset-hound/houndctl/cmd/util"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/commands"
	"github.com/rcrowley/go-metrics"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Benchmark is one command sent over and over again
type Benchmark struct {
	Name    string
	Command string
	Params  map[string]any
}

// Benchmarks run by the perf command, in this order
var Benchmarks = []Benchmark{
	{Name: "ping", Command: "ping"},
	{Name: "echo", Command: "echo", Params: map[string]any{"payload": strings.Repeat("x", 1024)}},
	{Name: "echo-large", Command: "echo", Params: map[string]any{"payload": strings.Repeat("x", 256*1024)}},
	{Name: "sleep", Command: "sleep", Params: map[string]any{"ms": 5}},
	{Name: "get_url", Command: "get_url"},
}

// Result summarizes one benchmark run
type Result struct {
	Name     string
	Requests int
	Errors   int64
	Elapsed  time.Duration
	Timer    metrics.Timer
}

// OpsPerSec is the throughput over the whole run
func (r Result) OpsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Timer.Count()) / r.Elapsed.Seconds()
}

// RunBenchmark sends requests commands with up to concurrency of them in
// flight. Latencies of successful commands go into a timer registered under
// the benchmark's name, failures are counted separately.
func RunBenchmark(ctx context.Context, inv commands.Invoker, bench Benchmark, requests, concurrency int, registry metrics.Registry) Result {
	timer := metrics.GetOrRegisterTimer(bench.Name+".latency", registry)
	errs := metrics.GetOrRegisterCounter(bench.Name+".errors", registry)

	jobs := make(chan struct{}, requests)
	for i := 0; i < requests; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if ctx.Err() != nil {
					return
				}
				t := time.Now()
				if _, err := inv.Invoke(ctx, bench.Command, bench.Params); err != nil {
					errs.Inc(1)
					if common.KindOf(err) == common.KindConnection {
						return
					}
					continue
				}
				timer.UpdateSince(t)
			}
		}()
	}
	wg.Wait()

	return Result{
		Name:     bench.Name,
		Requests: requests,
		Errors:   errs.Count(),
		Elapsed:  time.Since(start),
		Timer:    timer,
	}
}

var percentiles = []float64{0.5, 0.9, 0.99}

func printResult(result Result) {
	snap := result.Timer.Snapshot()
	if snap.Count() == 0 {
		fmt.Printf("%-20sno successful commands (%d errors)\n", result.Name, result.Errors)
		return
	}

	ps := snap.Percentiles(percentiles)
	fmt.Printf("%-20s%8.0f ops/sec\tmean %s\tp50 %s\tp90 %s\tp99 %s\tmax %s\terrors %d\n",
		result.Name,
		result.OpsPerSec(),
		util.FormatDuration(time.Duration(snap.Mean())),
		util.FormatDuration(time.Duration(ps[0])),
		util.FormatDuration(time.Duration(ps[1])),
		util.FormatDuration(time.Duration(ps[2])),
		util.FormatDuration(time.Duration(snap.Max())),
		result.Errors,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []Result, config common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Write header
	header := []string{
		"Test", "Requests", "Errors", "OpsPerSec",
		"MeanNs", "P50Ns", "P90Ns", "P99Ns", "MaxNs",
		"Endpoint", "Concurrency", "RateLimit",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, result := range results {
		snap := result.Timer.Snapshot()
		ps := snap.Percentiles(percentiles)

		row := []string{
			result.Name,
			strconv.Itoa(result.Requests),
			strconv.FormatInt(result.Errors, 10),
			fmt.Sprintf("%.0f", result.OpsPerSec()),
			fmt.Sprintf("%.0f", snap.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			strconv.FormatInt(snap.Max(), 10),
			config.Endpoint.URL(),
			strconv.Itoa(perfConcurrency),
			strconv.FormatFloat(config.RateLimit, 'f', -1, 64),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", result.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
