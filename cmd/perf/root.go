package perf

import (
	"fmt"
	"github.com/basset-hound/houndctl/cmd/util"
	"github.com/basset-hound/houndctl/rpc/server"
	"github.com/basset-hound/houndctl/rpc/transport/ws"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"net"
	"net/http"
	"strings"
	"time"
)

var (
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for browser engines",
		Long:    `Sends many small commands concurrently over one connection and reports latency percentiles and throughput. Use --local to benchmark against an in-process mock engine.`,
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfRequests    = 1000
	perfConcurrency = 10
	perfSkip        = make([]string, 0)
	perfLocal       = false
)

func init() {
	// add flags
	util.SetupRPCClientFlags(PerfCmd)

	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. echo,sleep)"))
	key = "requests"
	PerfCmd.Flags().Int(key, 1000, util.WrapString("Number of commands to send per benchmark"))
	key = "concurrency"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of commands in flight at the same time"))
	key = "local"
	PerfCmd.Flags().Bool(key, false, util.WrapString("Start a mock engine on a random local port and benchmark against it"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfRequests = viper.GetInt("requests")
	perfConcurrency = viper.GetInt("concurrency")
	perfLocal = viper.GetBool("local")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfRequests < 1 || perfConcurrency < 1 {
		return fmt.Errorf("requests and concurrency must be at least 1")
	}
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	if perfLocal {
		addr, stop, err := startLocalEngine()
		if err != nil {
			return err
		}
		defer stop()
		viper.Set("host", addr.IP.String())
		viper.Set("port", addr.Port)
		viper.Set("path", "")
	}

	c, err := util.NewClient(cmd)
	if err != nil {
		return err
	}

	fmt.Println("Performance testing tool for browser engines")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	config := c.Config()
	fmt.Println(config.String())
	fmt.Printf("Requests: %d\n", perfRequests)
	fmt.Printf("Concurrency: %d\n", perfConcurrency)
	fmt.Println()

	if err := c.Connect(cmd.Context()); err != nil {
		return err
	}
	defer c.Disconnect()

	fmt.Println("starting tests...")

	registry := metrics.NewRegistry()
	var results []Result
	for _, bench := range Benchmarks {
		if shouldSkip(bench.Name) {
			fmt.Printf("%-20sskipped\n", bench.Name)
			continue
		}
		result := RunBenchmark(cmd.Context(), c, bench, perfRequests, perfConcurrency, registry)
		results = append(results, result)
		printResult(result)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return err
		}
		fmt.Printf("\nresults written to %s\n", csvPath)
	}
	return nil
}

func shouldSkip(bench string) bool {
	for _, skip := range perfSkip {
		if strings.TrimSpace(skip) == bench {
			return true
		}
	}
	return false
}

// startLocalEngine serves a mock engine on a random loopback port
func startLocalEngine() (*net.TCPAddr, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start local engine: %w", err)
	}

	t := ws.NewServerTransport()
	server.NewMockEngine().Bind(t)
	srv := &http.Server{Handler: t, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		_ = srv.Serve(listener)
	}()

	stop := func() {
		t.CloseConnections()
		_ = srv.Close()
	}
	return listener.Addr().(*net.TCPAddr), stop, nil
}
