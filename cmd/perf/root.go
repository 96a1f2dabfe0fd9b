package perf

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/cmd/util"
	"github.com/ValentinKolb/rexkv/lib/workload"
	"github.com/ValentinKolb/rexkv/rpc/client"
	"github.com/ValentinKolb/rexkv/rpc/transport/tcp"
	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"net/http"
	"time"
)

var (
	perfDB     workload.DB
	perfConfig workload.Config

	// PerfCommands represents the benchmark command group
	PerfCommands = &cobra.Command{
		Use:   "perf",
		Short: "YCSB style benchmark for Rex clusters",
		Long: `YCSB style benchmark for Rex clusters.

The load phase inserts the records, the run phase executes the operations of
one of the YCSB core workloads (a-f). The same workload can be run against a
redis server or cluster for comparison (--db redis).`,
		PersistentPreRunE:  setupPerf,
		PersistentPostRunE: cleanupPerf,
	}
)

func init() {
	// Add common RPC flags to the perf command
	util.SetupRPCClientFlags(PerfCommands)

	key := "db"
	PerfCommands.PersistentFlags().String(key, "rex", util.WrapString("The database to benchmark (rex, redis)"))
	key = "redis-addrs"
	PerfCommands.PersistentFlags().String(key, "127.0.0.1:6379", util.WrapString("Comma separated redis addresses, more than one address selects cluster mode (only for --db redis)"))

	key = "workload"
	PerfCommands.PersistentFlags().String(key, "a", util.WrapString("The YCSB core workload (a-f) defining the operation proportions"))
	key = "records"
	PerfCommands.PersistentFlags().Int(key, 1000, util.WrapString("Number of records inserted in the load phase"))
	key = "operations"
	PerfCommands.PersistentFlags().Int(key, 1000, util.WrapString("Number of operations executed in the run phase"))
	key = "threads"
	PerfCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "field-count"
	PerfCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of fields per record"))
	key = "field-length"
	PerfCommands.PersistentFlags().Int(key, 100, util.WrapString("Size of a field value in bytes"))
	key = "key-prefix"
	PerfCommands.PersistentFlags().String(key, "user", util.WrapString("Prefix of all generated keys"))

	key = "csv"
	PerfCommands.PersistentFlags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics-endpoint"
	PerfCommands.PersistentFlags().String(key, "", util.WrapString("Optional address (e.g. :9090) to expose the client metrics in Prometheus format under /metrics"))

	// Add subcommands
	PerfCommands.AddCommand(loadCmd)
	PerfCommands.AddCommand(runCmd)
}

// setupPerf reads the workload configuration and creates the benchmarked DB
func setupPerf(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	if perfConfig, err = workloadConfig(); err != nil {
		return err
	}

	if endpoint := viper.GetString("metrics-endpoint"); endpoint != "" {
		serveMetrics(endpoint)
	}

	switch viper.GetString("db") {
	case "rex":
		config := util.GetClientConfig()
		s, err := util.GetSerializer()
		if err != nil {
			return err
		}
		rpcStore, err := client.NewRPCStore(config, nil, tcp.NewTCPClientTransport(config), s)
		if err != nil {
			return err
		}
		fmt.Println(config.String())
		fmt.Printf("Members: %v\n", rpcStore.Members())
		perfDB = workload.NewStoreDB(rpcStore)
	case "redis":
		timeout := time.Duration(viper.GetInt("timeout")) * time.Second
		addrs := util.SplitList(viper.GetString("redis-addrs"))
		perfDB = workload.NewRedisDB(workload.NewRedisClient(addrs, timeout), timeout)
		fmt.Printf("\nRedis: %v\n", addrs)
	default:
		return fmt.Errorf("invalid db %s (expected rex or redis)", viper.GetString("db"))
	}

	fmt.Println(perfConfig.String())
	return nil
}

func cleanupPerf(_ *cobra.Command, _ []string) error {
	if perfDB == nil {
		return nil
	}
	return perfDB.Cleanup()
}

// workloadConfig builds the workload configuration from the flags
func workloadConfig() (workload.Config, error) {
	c, err := workload.NamedConfig(viper.GetString("workload"))
	if err != nil {
		return c, err
	}
	c.RecordCount = viper.GetInt("records")
	c.OperationCount = viper.GetInt("operations")
	c.Threads = viper.GetInt("threads")
	c.FieldCount = viper.GetInt("field-count")
	c.FieldLength = viper.GetInt("field-length")
	c.KeyPrefix = viper.GetString("key-prefix")
	return c, c.Validate()
}

// serveMetrics exposes all VictoriaMetrics counters and histograms in the background
func serveMetrics(endpoint string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	go func() {
		fmt.Printf("Serving metrics on %s/metrics\n", endpoint)
		if err := http.ListenAndServe(endpoint, mux); err != nil {
			fmt.Printf("Metrics endpoint stopped: %v\n", err)
		}
	}()
}
