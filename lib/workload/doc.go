// Package workload implements a YCSB style benchmark for key-value stores.
//
// A benchmark has two phases:
//   - Load: inserts RecordCount records with hashed keys (see BuildKey)
//   - Run: executes OperationCount operations chosen by the configured proportions
//     (read, update, insert, scan and read-modify-write)
//
// Key Components:
//
//   - DB: The binding of the logical operations onto a concrete store. Every
//     operation returns a Status (OK, NOT_FOUND, ERROR, NOT_IMPLEMENTED).
//     NewStoreDB binds any store.IStore (e.g. the RPC store), NewRedisDB binds
//     a redis server or cluster for comparison runs.
//
//   - Runner: Executes the phases with Config.Threads concurrent workers.
//
//   - Measurements: Latency histograms and status counters per operation,
//     backed by a go-metrics registry.
//
//   - Reports: WriteReport prints the result in the line format of YCSB,
//     WriteCSV writes one row per phase and operation.
//
// Usage Example:
//
//	config, _ := workload.NamedConfig("a")
//	runner, err := workload.NewRunner(workload.NewStoreDB(rpcStore), config)
//	if err != nil {
//		return err
//	}
//	load := runner.Load()
//	run := runner.Run()
//	_ = workload.WriteReport(os.Stdout, run)
//
// The key-value stores only hold a single value per key, so records written
// through NewStoreDB keep the value of the field with the smallest name.
package workload
